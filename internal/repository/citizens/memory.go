package citizens

import (
	"context"
	"sort"
	"sync"
	"time"

	"dga_gateway/internal/failure"
	"dga_gateway/internal/models"
)

// MemoryStore is an in-process store for local runs and tests.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]models.CitizenRecord
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]models.CitizenRecord),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) EnsureSchema(context.Context) error { return nil }

func (s *MemoryStore) Upsert(ctx context.Context, rec models.CitizenRecord) (models.CitizenRecord, error) {
	rec.Normalize()
	if err := rec.Validate(); err != nil {
		return models.CitizenRecord{}, failure.Wrap(failure.KindStore, "invalid citizen record", err)
	}
	if err := ctx.Err(); err != nil {
		return models.CitizenRecord{}, failure.Wrap(failure.KindStore, "upsert citizen", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec.UpdatedAt = now
	if prev, ok := s.records[rec.CitizenID]; ok {
		rec.CreatedAt = prev.CreatedAt
	} else {
		rec.CreatedAt = now
	}
	s.records[rec.CitizenID] = rec
	return rec, nil
}

func (s *MemoryStore) List(_ context.Context, limit int64) ([]models.CitizenRecord, error) {
	s.mu.Lock()
	out := make([]models.CitizenRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].CitizenID < out[j].CitizenID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
