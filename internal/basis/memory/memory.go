// Package memory provides an in-process basis.Store for tests and ephemeral
// runs. Records are copied on the way in and out so callers can never mutate
// stored state.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mcintyre94/swapsies/internal/basis"
)

type Store struct {
	mu   sync.RWMutex
	recs map[string]basis.Record
}

func New() *Store {
	return &Store{recs: make(map[string]basis.Record)}
}

func (s *Store) Get(_ context.Context, mint string) (*basis.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.recs[mint]
	if !ok {
		return nil, fmt.Errorf("%w: %s", basis.ErrNotFound, mint)
	}
	cp := rec
	return &cp, nil
}

func (s *Store) Put(_ context.Context, rec *basis.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.Mint] = *rec
	return nil
}

func (s *Store) Delete(_ context.Context, mint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recs[mint]; !ok {
		return fmt.Errorf("%w: %s", basis.ErrNotFound, mint)
	}
	delete(s.recs, mint)
	return nil
}

func (s *Store) List(_ context.Context) ([]*basis.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*basis.Record, 0, len(s.recs))
	for _, rec := range s.recs {
		cp := rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mint < out[j].Mint })
	return out, nil
}

func (s *Store) Close() error { return nil }
