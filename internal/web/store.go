package web

import (
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tordrt/tablediff/internal/diff"
)

// reportStore keeps the most recent reports addressable by ID so clients
// can page and re-sort them without uploading again. Reports are never
// modified once stored.
type reportStore struct {
	cache *lru.Cache[string, *diff.Report]
}

func newReportStore(size int) (*reportStore, error) {
	cache, err := lru.New[string, *diff.Report](size)
	if err != nil {
		return nil, fmt.Errorf("report store: %w", err)
	}
	return &reportStore{cache: cache}, nil
}

// Put stores r under a new random ID
func (s *reportStore) Put(r *diff.Report) string {
	id := uuid.NewString()
	s.cache.Add(id, r)
	return id
}

// Get returns the report for id if it has not been evicted
func (s *reportStore) Get(id string) (*diff.Report, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	return s.cache.Get(id)
}

func (s *reportStore) Len() int {
	return s.cache.Len()
}
