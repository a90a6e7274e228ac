// Package store maintains the bounded in-memory history of finalized
// hourly buckets and the all-time domain/source rankings.
package store

import (
	"sync"
	"time"

	"hn-pulse/domain"
)

// HistoryStore holds the last N finalized buckets plus cumulative counts.
// One writer (the aggregator) and many concurrent readers (the query API)
// are supported; readers never observe a bucket mid-append.
type HistoryStore struct {
	mu sync.RWMutex

	retention int
	buckets   []*domain.HourBucket // oldest first
	// Cumulative rankings accumulated across every consumed event.
	// Eviction never decrements these.
	domainRank map[string]int
	sourceRank map[string]int
	lastUpdate time.Time
}

// New creates a HistoryStore retaining up to retention finalized buckets.
func New(retention int) *HistoryStore {
	if retention <= 0 {
		retention = 24
	}
	return &HistoryStore{
		retention:  retention,
		buckets:    make([]*domain.HourBucket, 0, retention),
		domainRank: make(map[string]int),
		sourceRank: make(map[string]int),
	}
}

// Retention returns the configured retention count.
func (s *HistoryStore) Retention() int {
	return s.retention
}

// AppendFinalized inserts a finalized bucket at the newest end, evicting
// the oldest when the retention cap is exceeded. The caller must not
// mutate the bucket afterwards.
func (s *HistoryStore) AppendFinalized(b *domain.HourBucket) {
	if b == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.buckets = append(s.buckets, b)
	if len(s.buckets) > s.retention {
		// Drop the oldest; shift rather than reslice so the backing
		// array does not pin evicted buckets.
		copy(s.buckets, s.buckets[1:])
		s.buckets[len(s.buckets)-1] = nil
		s.buckets = s.buckets[:len(s.buckets)-1]
	}
	s.lastUpdate = time.Now().UTC()
}

// MergeIntoCumulative adds occurrence counts into the all-time rankings.
// Entries are never removed.
func (s *HistoryStore) MergeIntoCumulative(domainCounts, authorCounts map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for d, c := range domainCounts {
		s.domainRank[d] += c
	}
	for a, c := range authorCounts {
		s.sourceRank[a] += c
	}
}

// Latest returns the most recently finalized bucket, or false if none
// has finalized yet.
func (s *HistoryStore) Latest() (*domain.HourBucket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.buckets) == 0 {
		return nil, false
	}
	return s.buckets[len(s.buckets)-1], true
}

// Recent returns up to limit finalized buckets, newest first.
func (s *HistoryStore) Recent(limit int) []*domain.HourBucket {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.buckets)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]*domain.HourBucket, 0, n)
	for i := len(s.buckets) - 1; i >= len(s.buckets)-n; i-- {
		out = append(out, s.buckets[i])
	}
	return out
}

// TopDomains returns the top n entries of the all-time domain ranking.
func (s *HistoryStore) TopDomains(n int) []domain.RankEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.RankCounts(s.domainRank, n)
}

// TopSources returns the top n entries of the all-time source ranking.
func (s *HistoryStore) TopSources(n int) []domain.RankEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.RankCounts(s.sourceRank, n)
}

// LastUpdate returns when a bucket was last finalized, or false if none
// has been.
func (s *HistoryStore) LastUpdate() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastUpdate.IsZero() {
		return time.Time{}, false
	}
	return s.lastUpdate, true
}
