package db

import (
	"sync"
	"time"
)

// QueryStats is one query's execution accounting (spec §4.12, "per-query
// counters (executions, cache hits, elapsed time) are queryable for
// profiling and tests").
type QueryStats struct {
	Executions   int64
	CacheHits    int64
	TotalElapsed time.Duration
}

type statsTable struct {
	mu      sync.Mutex
	byQuery map[string]*QueryStats
}

func newStatsTable() *statsTable {
	return &statsTable{byQuery: make(map[string]*QueryStats)}
}

func (s *statsTable) entry(query string) *QueryStats {
	e, ok := s.byQuery[query]
	if !ok {
		e = &QueryStats{}
		s.byQuery[query] = e
	}
	return e
}

func (s *statsTable) recordExecution(query string, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(query)
	e.Executions++
	e.TotalElapsed += elapsed
}

func (s *statsTable) recordHit(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(query).CacheHits++
}

// Snapshot returns a copy of the accumulated stats for query, or a zero
// value if it has never run.
func (s *statsTable) Snapshot(query string) QueryStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.byQuery[query]; ok {
		return *e
	}
	return QueryStats{}
}
