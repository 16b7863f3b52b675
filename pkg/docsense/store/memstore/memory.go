package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/docsense/pkg/docsense/internalerr"
	"github.com/cognicore/docsense/pkg/docsense/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu     sync.RWMutex
	models map[string]store.Model
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{models: make(map[string]store.Model)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveModel stores a copy of m.
func (s *Store) SaveModel(ctx context.Context, m store.Model) (store.Model, error) {
	if len(m.Snapshot) == 0 {
		return store.Model{}, fmt.Errorf("%w: model has no snapshot", internalerr.ErrInvalidInput)
	}
	m = store.Prepare(m)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.models[m.ID]; ok {
		return store.Model{}, fmt.Errorf("%w: model %q already exists", internalerr.ErrInvalidInput, m.ID)
	}
	s.models[m.ID] = copyModel(m)
	return copyModel(m), nil
}

// GetModel returns a model by ID.
func (s *Store) GetModel(ctx context.Context, id string) (store.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.models[id]
	if !ok {
		return store.Model{}, fmt.Errorf("%w: model %q", internalerr.ErrNotFound, id)
	}
	return copyModel(m), nil
}

// LatestModel returns the model with the greatest ID.
func (s *Store) LatestModel(ctx context.Context) (store.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest string
	for id := range s.models {
		if id > latest {
			latest = id
		}
	}
	if latest == "" {
		return store.Model{}, fmt.Errorf("%w: no models saved", internalerr.ErrNotFound)
	}
	return copyModel(s.models[latest]), nil
}

// ListModels returns model metadata, newest first.
func (s *Store) ListModels(ctx context.Context) ([]store.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Model, 0, len(s.models))
	for _, m := range s.models {
		m = copyModel(m)
		m.Snapshot = nil
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// DeleteModel removes a model by ID.
func (s *Store) DeleteModel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.models[id]; !ok {
		return fmt.Errorf("%w: model %q", internalerr.ErrNotFound, id)
	}
	delete(s.models, id)
	return nil
}

func copyModel(m store.Model) store.Model {
	out := m
	if m.Labels != nil {
		out.Labels = append([]store.LabelCount(nil), m.Labels...)
	}
	if m.Snapshot != nil {
		out.Snapshot = append([]byte(nil), m.Snapshot...)
	}
	return out
}
