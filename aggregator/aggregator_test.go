package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hn-pulse/domain"
	"hn-pulse/store"
)

func hourAt(h int) time.Time {
	return time.Date(2026, 5, 1, h, 0, 0, 0, time.UTC)
}

func story(id int, fetchedAt time.Time, score int, author, dom string) domain.StoryEvent {
	return domain.StoryEvent{
		ID:           id,
		Title:        "story",
		Author:       author,
		Score:        score,
		CommentCount: 1,
		Domain:       dom,
		FetchedAt:    fetchedAt,
	}
}

func newTestAggregator(retention int) (*Aggregator, *store.HistoryStore) {
	st := store.New(retention)
	agg := New(Config{
		StoriesPerBucket:      100,
		SeenIDCapacity:        100,
		FinalizeCheckInterval: time.Minute,
	}, st, nil)
	return agg, st
}

func TestAggregator_Ingest(t *testing.T) {
	t.Run("events within one hour accumulate in the open bucket", func(t *testing.T) {
		agg, st := newTestAggregator(24)

		agg.Ingest(story(1, hourAt(10).Add(5*time.Minute), 10, "alice", "a.com"))
		agg.Ingest(story(2, hourAt(10).Add(15*time.Minute), 20, "bob", "a.com"))
		agg.Ingest(story(3, hourAt(10).Add(25*time.Minute), 5, "carol", "b.com"))

		// Nothing finalized yet.
		_, ok := st.Latest()
		assert.False(t, ok)

		open, ok := agg.OpenBucketHour()
		require.True(t, ok)
		assert.Equal(t, hourAt(10), open)
	})

	t.Run("first event of a new hour finalizes the previous bucket", func(t *testing.T) {
		agg, st := newTestAggregator(24)

		agg.Ingest(story(1, hourAt(10).Add(5*time.Minute), 10, "alice", "a.com"))
		agg.Ingest(story(2, hourAt(10).Add(15*time.Minute), 20, "bob", "a.com"))
		agg.Ingest(story(3, hourAt(10).Add(25*time.Minute), 5, "carol", "b.com"))
		agg.Ingest(story(4, hourAt(11).Add(time.Minute), 50, "dave", "c.com"))

		latest, ok := st.Latest()
		require.True(t, ok)
		assert.Equal(t, hourAt(10), latest.HourStart)
		assert.Equal(t, 3, latest.StoryCount)
		assert.Equal(t, 11.67, latest.AvgScore())
		assert.Equal(t, map[string]int{"a.com": 2, "b.com": 1}, latest.DomainCounts)

		// Cumulative ranks got the finalized hour's counts.
		domains := st.TopDomains(10)
		require.Len(t, domains, 2)
		assert.Equal(t, domain.RankEntry{Key: "a.com", Count: 2}, domains[0])

		open, ok := agg.OpenBucketHour()
		require.True(t, ok)
		assert.Equal(t, hourAt(11), open)
	})

	t.Run("late arrival feeds cumulative ranks only", func(t *testing.T) {
		agg, st := newTestAggregator(24)

		agg.Ingest(story(1, hourAt(10).Add(time.Minute), 10, "alice", "a.com"))
		agg.Ingest(story(2, hourAt(11).Add(time.Minute), 20, "bob", "b.com"))

		finalized, ok := st.Latest()
		require.True(t, ok)
		require.Equal(t, hourAt(10), finalized.HourStart)
		require.Equal(t, 1, finalized.StoryCount)

		// Event for the already-finalized hour 10.
		agg.Ingest(story(3, hourAt(10).Add(30*time.Minute), 99, "zed", "z.com"))

		// The stored bucket did not change.
		latest, _ := st.Latest()
		assert.Equal(t, 1, latest.StoryCount)
		assert.NotContains(t, latest.DomainCounts, "z.com")

		// But the cumulative ranks did.
		domains := st.TopDomains(10)
		keys := make([]string, 0, len(domains))
		for _, d := range domains {
			keys = append(keys, d.Key)
		}
		assert.Contains(t, keys, "z.com")

		sources := st.TopSources(10)
		skeys := make([]string, 0, len(sources))
		for _, s := range sources {
			skeys = append(skeys, s.Key)
		}
		assert.Contains(t, skeys, "zed")
	})

	t.Run("duplicate story IDs are dropped entirely", func(t *testing.T) {
		agg, st := newTestAggregator(24)

		ev := story(1, hourAt(10).Add(time.Minute), 10, "alice", "a.com")
		agg.Ingest(ev)
		agg.Ingest(ev)
		agg.Ingest(story(2, hourAt(11).Add(time.Minute), 20, "bob", "b.com"))

		latest, ok := st.Latest()
		require.True(t, ok)
		assert.Equal(t, 1, latest.StoryCount)
		assert.Equal(t, map[string]int{"a.com": 1}, latest.DomainCounts)
	})
}

func TestAggregator_CheckRollover(t *testing.T) {
	t.Run("quiet hour still finalizes an empty bucket", func(t *testing.T) {
		agg, st := newTestAggregator(24)

		clock := hourAt(10).Add(30 * time.Minute)
		agg.now = func() time.Time { return clock }

		// Opens hour 10 with no events.
		agg.CheckRollover()

		clock = hourAt(11).Add(time.Minute)
		agg.CheckRollover()

		latest, ok := st.Latest()
		require.True(t, ok)
		assert.Equal(t, hourAt(10), latest.HourStart)
		assert.Equal(t, 0, latest.StoryCount)
		assert.Equal(t, 0.0, latest.AvgScore())
		assert.Empty(t, latest.Stories)

		open, ok := agg.OpenBucketHour()
		require.True(t, ok)
		assert.Equal(t, hourAt(11), open)
	})

	t.Run("no-op within the open hour", func(t *testing.T) {
		agg, st := newTestAggregator(24)

		clock := hourAt(10).Add(10 * time.Minute)
		agg.now = func() time.Time { return clock }

		agg.CheckRollover()
		clock = hourAt(10).Add(45 * time.Minute)
		agg.CheckRollover()

		_, ok := st.Latest()
		assert.False(t, ok)
	})

	t.Run("25 hourly rollovers keep only the retention window", func(t *testing.T) {
		agg, st := newTestAggregator(24)

		clock := hourAt(0)
		agg.now = func() time.Time { return clock }
		agg.CheckRollover()

		for h := 1; h <= 25; h++ {
			clock = hourAt(0).Add(time.Duration(h) * time.Hour).Add(time.Minute)
			agg.CheckRollover()
		}

		recent := st.Recent(0)
		require.Len(t, recent, 24)
		// The very first hour fell out of retention.
		for _, b := range recent {
			assert.NotEqual(t, hourAt(0), b.HourStart)
		}
	})
}

func TestIDSet(t *testing.T) {
	t.Run("evicts oldest at capacity", func(t *testing.T) {
		s := newIDSet(3)
		s.Add(1)
		s.Add(2)
		s.Add(3)
		s.Add(4)

		assert.False(t, s.Contains(1))
		assert.True(t, s.Contains(2))
		assert.True(t, s.Contains(4))
	})

	t.Run("re-adding an existing id is a no-op", func(t *testing.T) {
		s := newIDSet(2)
		s.Add(1)
		s.Add(1)
		s.Add(2)

		assert.True(t, s.Contains(1))
		assert.True(t, s.Contains(2))
	})
}
