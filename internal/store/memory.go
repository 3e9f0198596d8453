package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"serialtag/internal/models"
)

// MemoryStore keeps batches in a mutex-guarded map. It backs tests and
// single-process deployments that do not need durability.
type MemoryStore struct {
	mu      sync.RWMutex
	batches map[string]models.Batch
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		batches: make(map[string]models.Batch),
		now:     time.Now,
	}
}

// NewMemoryStoreWithClock injects the clock used to derive batch ids.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	s := NewMemoryStore()
	if now != nil {
		s.now = now
	}
	return s
}

func (s *MemoryStore) Write(ctx context.Context, batch models.Batch) (string, error) {
	if s == nil {
		return "", errors.New("memory store is nil")
	}
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id := NewBatchID(now)
	if _, exists := s.batches[id]; exists {
		return "", fmt.Errorf("write batch %s: %w", id, ErrBatchExists)
	}

	stored := batch.Clone()
	stored.ID = id
	stored.CreatedAt = now.UTC()
	s.batches[id] = stored

	return id, nil
}

func (s *MemoryStore) ListBatches(ctx context.Context) ([]string, error) {
	if s == nil {
		return nil, errors.New("memory store is nil")
	}
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.batches))
	for id := range s.batches {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids, nil
}

func (s *MemoryStore) Read(ctx context.Context, id string) (models.Batch, error) {
	if s == nil {
		return models.Batch{}, errors.New("memory store is nil")
	}
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	batch, ok := s.batches[id]
	if !ok {
		return models.Batch{}, fmt.Errorf("read batch %s: %w", id, ErrBatchNotFound)
	}

	return batch.Clone(), nil
}
