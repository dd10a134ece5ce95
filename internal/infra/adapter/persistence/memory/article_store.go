package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"blotter/internal/domain/entity"
	"blotter/internal/repository"
)

type articleKey struct {
	sourceID   int64
	externalID string
}

// ArticleStore is an in-memory repository.ArticleRepository enforcing
// the same (source_id, external_id) and 1:1 article-incident
// uniqueness constraints the postgres schema carries.
type ArticleStore struct {
	mu        sync.Mutex
	nextID    int64
	byID      map[int64]*entity.RawArticle
	byKey     map[articleKey]int64
	incidents map[int64]*entity.EnrichedIncident
	sources   repository.SourceRepository
}

// NewArticleStore constructs an empty ArticleStore. sources is consulted
// by ListIncidents/CountIncidents to resolve region membership, mirroring
// the postgres JOIN against the sources table.
func NewArticleStore(sources repository.SourceRepository) repository.ArticleRepository {
	return &ArticleStore{
		byID:      make(map[int64]*entity.RawArticle),
		byKey:     make(map[articleKey]int64),
		incidents: make(map[int64]*entity.EnrichedIncident),
		sources:   sources,
	}
}

func (s *ArticleStore) UpsertRaw(_ context.Context, article *entity.RawArticle) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := articleKey{sourceID: article.SourceID, externalID: article.ExternalID}
	if id, ok := s.byKey[key]; ok {
		return id, false, nil
	}

	s.nextID++
	article.ID = s.nextID
	stored := *article
	s.byID[s.nextID] = &stored
	s.byKey[key] = s.nextID
	return s.nextID, true, nil
}

func (s *ArticleStore) StoreEnriched(_ context.Context, incident *entity.EnrichedIncident) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.incidents[incident.ID]; ok {
		return fmt.Errorf("StoreEnriched: %w", entity.ErrAlreadyExists)
	}
	stored := *incident
	s.incidents[incident.ID] = &stored
	return nil
}

func (s *ArticleStore) ListIncidents(ctx context.Context, regionLabel string, limit int) ([]repository.IncidentRow, error) {
	s.mu.Lock()
	type row struct {
		article  *entity.RawArticle
		incident *entity.EnrichedIncident
	}
	rows := make([]row, 0, len(s.incidents))
	for id, incident := range s.incidents {
		article, ok := s.byID[id]
		if !ok {
			continue
		}
		rows = append(rows, row{article: article, incident: incident})
	}
	s.mu.Unlock()

	sort.Slice(rows, func(i, j int) bool {
		ai, aj := rows[i].article, rows[j].article
		switch {
		case ai.PublishedAt == nil && aj.PublishedAt == nil:
			return ai.ID > aj.ID
		case ai.PublishedAt == nil:
			return false
		case aj.PublishedAt == nil:
			return true
		case !ai.PublishedAt.Equal(*aj.PublishedAt):
			return ai.PublishedAt.After(*aj.PublishedAt)
		default:
			return ai.ID > aj.ID
		}
	})

	out := make([]repository.IncidentRow, 0, limit)
	for _, r := range rows {
		source, err := s.sources.Get(ctx, r.article.SourceID)
		if err != nil {
			continue
		}
		if source.RegionLabel != regionLabel {
			continue
		}
		out = append(out, repository.IncidentRow{Source: source, Article: r.article, Incident: r.incident})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *ArticleStore) CountIncidents(ctx context.Context, regionLabel string) (int64, error) {
	rows, err := s.ListIncidents(ctx, regionLabel, len(s.incidents)+1)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}
