package worker

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	"blotter/internal/domain/entity"
	"blotter/internal/repository"
	"blotter/internal/usecase/refresh"
)

// Scheduler runs one refresh per distinct region on a cron tick. The
// pipeline's refresh operation is scoped per-region (spec ties a
// refresh to one region's active sources), so a global "refresh
// everything" tick fans out across the region labels currently present
// in the source catalog rather than calling a single all-sources
// operation.
type Scheduler struct {
	Sources repository.SourceRepository
	Refresh *refresh.Service
	Logger  *slog.Logger
	Config  Config
}

// Start runs the cron scheduler with s.Config's schedule and timezone
// until ctx is cancelled. It blocks. Loading the config and running the
// health server are left to the caller.
func (s *Scheduler) Start(ctx context.Context) {
	loc, err := time.LoadLocation(s.Config.Timezone)
	if err != nil {
		s.Logger.Error("invalid timezone, using UTC", slog.String("timezone", s.Config.Timezone), slog.Any("error", err))
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(s.Config.CronSchedule, func() {
		s.runTick(ctx)
	})
	if err != nil {
		s.Logger.Error("failed to register cron schedule", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	s.Logger.Info("scheduler started",
		slog.String("schedule", s.Config.CronSchedule),
		slog.String("timezone", s.Config.Timezone))

	<-ctx.Done()
	s.Logger.Info("scheduler stopping")
}

// runTick discovers the distinct region labels currently in the source
// catalog and starts one async refresh job per region.
func (s *Scheduler) runTick(ctx context.Context) {
	tickCtx, cancel := context.WithTimeout(ctx, s.Config.RefreshTimeout)
	defer cancel()

	sources, err := s.Sources.List(tickCtx)
	if err != nil {
		s.Logger.Error("scheduler: failed to list sources", slog.Any("error", err))
		return
	}

	regions := activeRegions(sources)
	s.Logger.Info("scheduler tick", slog.Int("regions", len(regions)))
	for _, region := range regions {
		jobID, err := s.Refresh.StartAsync(tickCtx, region)
		if err != nil {
			s.Logger.Error("scheduler: failed to start refresh",
				slog.String("region", region), slog.Any("error", err))
			continue
		}
		s.Logger.Info("scheduler: refresh started",
			slog.String("region", region), slog.String("job_id", jobID))
	}
}

// activeRegions returns the sorted, deduplicated region labels among
// sources with Active set.
func activeRegions(sources []*entity.Source) []string {
	seen := make(map[string]struct{})
	for _, src := range sources {
		if !src.Active {
			continue
		}
		seen[src.RegionLabel] = struct{}{}
	}
	regions := make([]string, 0, len(seen))
	for region := range seen {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions
}
