// Package aggregator maintains the open hourly bucket and drives its
// finalization into the history store.
package aggregator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"hn-pulse/domain"
	"hn-pulse/metrics"
	"hn-pulse/store"
)

// Config holds aggregator configuration.
type Config struct {
	// StoriesPerBucket caps retained stories per open bucket.
	StoriesPerBucket int
	// SeenIDCapacity bounds the duplicate-ID guard.
	SeenIDCapacity int
	// FinalizeCheckInterval is the cadence of the time-based rollover
	// check.
	FinalizeCheckInterval time.Duration
}

// DefaultConfig returns a default aggregator configuration.
func DefaultConfig() Config {
	return Config{
		StoriesPerBucket:      100,
		SeenIDCapacity:        5000,
		FinalizeCheckInterval: time.Minute,
	}
}

// Aggregator is the pipeline's single writer: every bucket mutation and
// finalization is serialized through its mutex, whether triggered by a
// consumed event or the finalize ticker.
type Aggregator struct {
	config Config
	store  *store.HistoryStore
	logger *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	open *domain.HourBucket
	seen *idSet
}

// New creates an Aggregator flushing finalized buckets into st.
func New(config Config, st *store.HistoryStore, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if config.StoriesPerBucket <= 0 {
		config.StoriesPerBucket = DefaultConfig().StoriesPerBucket
	}
	if config.SeenIDCapacity <= 0 {
		config.SeenIDCapacity = DefaultConfig().SeenIDCapacity
	}
	if config.FinalizeCheckInterval <= 0 {
		config.FinalizeCheckInterval = DefaultConfig().FinalizeCheckInterval
	}
	return &Aggregator{
		config: config,
		store:  st,
		logger: logger,
		now:    time.Now,
		seen:   newIDSet(config.SeenIDCapacity),
	}
}

// Ingest applies one story event to the windowed state. Events for the
// open hour are appended; an event for a later hour finalizes the open
// bucket first; an event for an already-finalized hour feeds only the
// cumulative rankings. Exact duplicates (same story ID delivered again,
// e.g. after a consumer restart) are dropped.
func (a *Aggregator) Ingest(ev domain.StoryEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.seen.Contains(ev.ID) {
		metrics.DuplicatesDropped.Inc()
		a.logger.Debug("duplicate story dropped", "story_id", ev.ID)
		return
	}
	a.seen.Add(ev.ID)

	metrics.StoriesConsumed.Inc()

	target := ev.FetchedAt.UTC().Truncate(time.Hour)

	if a.open == nil {
		a.open = domain.NewHourBucket(target)
	}

	switch {
	case target.Equal(a.open.HourStart):
		a.open.Add(ev, a.config.StoriesPerBucket)
	case target.After(a.open.HourStart):
		a.finalizeLocked()
		a.open = domain.NewHourBucket(target)
		a.open.Add(ev, a.config.StoriesPerBucket)
	default:
		// Late arrival for a finalized hour: cumulative ranks only.
		a.mergeLateLocked(ev)
	}
}

// RunFinalizeTicker runs the time-based rollover check until ctx is
// cancelled. It guarantees a quiet hour still finalizes (possibly empty)
// so the dashboard observes a fresh bucket each hour.
func (a *Aggregator) RunFinalizeTicker(ctx context.Context) error {
	ticker := time.NewTicker(a.config.FinalizeCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("finalize ticker stopping; discarding open partial bucket")
			return nil
		case <-ticker.C:
			a.CheckRollover()
		}
	}
}

// CheckRollover finalizes the open bucket if the wall clock has left its
// hour, then opens the current hour. If nothing is open yet it opens the
// current hour so quiet startup hours are still observed.
func (a *Aggregator) CheckRollover() {
	a.mu.Lock()
	defer a.mu.Unlock()

	currentHour := a.now().UTC().Truncate(time.Hour)

	if a.open == nil {
		a.open = domain.NewHourBucket(currentHour)
		return
	}

	if currentHour.After(a.open.HourStart) {
		a.finalizeLocked()
		a.open = domain.NewHourBucket(currentHour)
	}
}

// OpenBucketHour reports the hour of the currently open bucket, or false
// if none is open yet.
func (a *Aggregator) OpenBucketHour() (time.Time, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.open == nil {
		return time.Time{}, false
	}
	return a.open.HourStart, true
}

// finalizeLocked pushes the open bucket to the store and merges its
// counts into the cumulative rankings. Defensively a no-op when nothing
// is open. Caller holds a.mu.
func (a *Aggregator) finalizeLocked() {
	if a.open == nil {
		return
	}

	bucket := a.open
	a.open = nil

	a.store.AppendFinalized(bucket)
	a.store.MergeIntoCumulative(bucket.DomainCounts, bucket.AuthorCounts)
	metrics.BucketsFinalized.Inc()

	a.logger.Info("hour bucket finalized",
		"hour", bucket.HourStart.Format(time.RFC3339),
		"stories", bucket.StoryCount,
		"avg_score", bucket.AvgScore(),
	)
}

// mergeLateLocked routes a late arrival into the cumulative rankings
// without reopening its finalized hour. Caller holds a.mu.
func (a *Aggregator) mergeLateLocked(ev domain.StoryEvent) {
	domains := map[string]int{}
	authors := map[string]int{}
	if ev.Domain != "" {
		domains[ev.Domain] = 1
	}
	if ev.Author != "" {
		authors[ev.Author] = 1
	}
	a.store.MergeIntoCumulative(domains, authors)

	a.logger.Debug("late story merged into cumulative ranks only",
		"story_id", ev.ID,
		"fetched_at", ev.FetchedAt.Format(time.RFC3339),
	)
}

// idSet is a fixed-capacity FIFO set used as the duplicate-ID guard.
type idSet struct {
	capacity int
	order    []int
	members  map[int]struct{}
}

func newIDSet(capacity int) *idSet {
	return &idSet{
		capacity: capacity,
		order:    make([]int, 0, capacity),
		members:  make(map[int]struct{}, capacity),
	}
}

func (s *idSet) Contains(id int) bool {
	_, ok := s.members[id]
	return ok
}

func (s *idSet) Add(id int) {
	if _, ok := s.members[id]; ok {
		return
	}
	if len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.members, oldest)
	}
	s.order = append(s.order, id)
	s.members[id] = struct{}{}
}
