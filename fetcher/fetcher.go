package fetcher

import (
	"context"
	"log/slog"
	"time"

	"hn-pulse/domain"
	"hn-pulse/metrics"
	"hn-pulse/port"
)

// Config holds fetcher configuration.
type Config struct {
	// PollInterval is the cadence of story listing polls.
	PollInterval time.Duration
	// TopStoriesLimit caps how many listing IDs are examined per cycle.
	TopStoriesLimit int
	// SeenCacheSize bounds the recent-IDs cache; it should cover several
	// poll cycles worth of listings.
	SeenCacheSize int
}

// DefaultConfig returns a default fetcher configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval:    60 * time.Second,
		TopStoriesLimit: 100,
		SeenCacheSize:   500,
	}
}

// Fetcher polls the HN listing, resolves unseen story IDs to detail
// records, normalizes them, and hands them to the publisher.
type Fetcher struct {
	config    Config
	client    *Client
	publisher port.StoryPublisher
	logger    *slog.Logger
	seen      *seenCache
	now       func() time.Time
}

// New creates a Fetcher.
func New(config Config, client *Client, publisher port.StoryPublisher, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultConfig().PollInterval
	}
	if config.SeenCacheSize <= 0 {
		config.SeenCacheSize = DefaultConfig().SeenCacheSize
	}
	return &Fetcher{
		config:    config,
		client:    client,
		publisher: publisher,
		logger:    logger,
		seen:      newSeenCache(config.SeenCacheSize),
		now:       time.Now,
	}
}

// Run polls until ctx is cancelled. A failed cycle is logged and retried
// at the next tick; it never terminates the loop.
func (f *Fetcher) Run(ctx context.Context) error {
	f.logger.Info("fetcher starting",
		"poll_interval", f.config.PollInterval,
		"top_stories_limit", f.config.TopStoriesLimit,
	)

	ticker := time.NewTicker(f.config.PollInterval)
	defer ticker.Stop()

	// First cycle immediately rather than waiting one interval.
	f.PollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("fetcher stopping")
			return nil
		case <-ticker.C:
			f.PollOnce(ctx)
		}
	}
}

// PollOnce runs a single poll cycle: list top stories, resolve unseen
// IDs, publish normalized events. Individual bad items are skipped;
// only a listing failure aborts the cycle.
func (f *Fetcher) PollOnce(ctx context.Context) {
	start := time.Now()
	defer func() {
		metrics.FetchCycleDuration.Observe(time.Since(start).Seconds())
	}()

	ids, err := f.client.TopStories(ctx, f.config.TopStoriesLimit)
	if err != nil {
		metrics.RecordFetchError("listing")
		f.logger.Error("top stories listing failed, retrying next tick", "error", err)
		return
	}

	published := 0
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if f.seen.Contains(id) {
			continue
		}

		story, ok := f.resolve(ctx, id)
		// Mark even failed IDs as seen; a story that 404s now will
		// still be in the listing next cycle and permanently broken
		// items should not be refetched forever.
		f.seen.Add(id)
		if !ok {
			continue
		}

		if err := f.publisher.PublishStory(ctx, story); err != nil {
			// Already logged and counted by the publisher.
			continue
		}
		metrics.StoriesFetched.Inc()
		published++
	}

	f.logger.Info("poll cycle completed",
		"listed", len(ids),
		"published", published,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// resolve fetches one item and normalizes it into a StoryEvent. Returns
// ok=false for fetch failures, non-stories, and malformed records.
func (f *Fetcher) resolve(ctx context.Context, id int) (domain.StoryEvent, bool) {
	item, err := f.client.GetItem(ctx, id)
	if err != nil {
		metrics.RecordFetchError("item")
		f.logger.Warn("item fetch failed, skipping", "story_id", id, "error", err)
		return domain.StoryEvent{}, false
	}

	if item.Type != "story" || item.Deleted || item.Dead {
		return domain.StoryEvent{}, false
	}
	if item.Title == "" {
		metrics.RecordFetchError("item")
		f.logger.Warn("item missing title, skipping", "story_id", id)
		return domain.StoryEvent{}, false
	}

	return domain.StoryEvent{
		ID:           item.ID,
		Title:        item.Title,
		URL:          item.URL,
		Author:       item.By,
		Score:        item.Score,
		CommentCount: item.Descendants,
		Domain:       domain.ExtractDomain(item.URL),
		FetchedAt:    f.now().UTC(),
	}, true
}

// seenCache is a fixed-capacity FIFO set of recently handled story IDs.
type seenCache struct {
	capacity int
	order    []int
	members  map[int]struct{}
}

func newSeenCache(capacity int) *seenCache {
	return &seenCache{
		capacity: capacity,
		order:    make([]int, 0, capacity),
		members:  make(map[int]struct{}, capacity),
	}
}

func (c *seenCache) Contains(id int) bool {
	_, ok := c.members[id]
	return ok
}

func (c *seenCache) Add(id int) {
	if _, ok := c.members[id]; ok {
		return
	}
	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.members, oldest)
	}
	c.order = append(c.order, id)
	c.members[id] = struct{}{}
}
