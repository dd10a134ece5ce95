package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"blotter/internal/domain/entity"
	"blotter/internal/infra/adapter/persistence/postgres"
)

func TestJobRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO refresh_jobs`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

	repo := postgres.NewJobRepo(db)
	job, err := repo.Create(context.Background(), "R")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if job.Status != entity.JobPending {
		t.Errorf("Status = %q, want pending", job.Status)
	}
	if job.JobID == "" {
		t.Error("expected non-empty JobID")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestJobRepo_MarkRunning(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE refresh_jobs SET status`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewJobRepo(db)
	if err := repo.MarkRunning(context.Background(), "job-1"); err != nil {
		t.Fatalf("MarkRunning() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestJobRepo_MarkRunning_NoMatchingRow(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE refresh_jobs SET status`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewJobRepo(db)
	if err := repo.MarkRunning(context.Background(), "job-missing"); err == nil {
		t.Fatal("expected error when no matching pending job exists")
	}
}

func TestJobRepo_MarkSucceeded(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE refresh_jobs`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewJobRepo(db)
	if err := repo.MarkSucceeded(context.Background(), "job-1", 2, 2); err != nil {
		t.Fatalf("MarkSucceeded() error = %v", err)
	}
}

func TestJobRepo_MarkFailed(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE refresh_jobs`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewJobRepo(db)
	if err := repo.MarkFailed(context.Background(), "job-1", "listing fetch failed"); err != nil {
		t.Fatalf("MarkFailed() error = %v", err)
	}
}

func TestJobRepo_Get_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, job_id, region`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "job_id", "region", "status", "new_articles", "total_incidents",
			"error_message", "created_at", "started_at", "completed_at",
		}))

	repo := postgres.NewJobRepo(db)
	if _, err := repo.Get(context.Background(), "missing"); err != entity.ErrNotFound {
		t.Errorf("Get() error = %v, want entity.ErrNotFound", err)
	}
}
