package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hn-pulse/domain"
)

type capturingPublisher struct {
	mu      sync.Mutex
	stories []domain.StoryEvent
	err     error
}

func (p *capturingPublisher) PublishStory(_ context.Context, story domain.StoryEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.stories = append(p.stories, story)
	return nil
}

func (p *capturingPublisher) published() []domain.StoryEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.StoryEvent, len(p.stories))
	copy(out, p.stories)
	return out
}

// fakeHN serves a topstories listing and per-ID item bodies.
func fakeHN(t *testing.T, ids []int, items map[int]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v0/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(intsJSON(ids)))
	})
	mux.HandleFunc("/v0/item/", func(w http.ResponseWriter, r *http.Request) {
		var id int
		fmt.Sscanf(r.URL.Path, "/v0/item/%d.json", &id)
		body, ok := items[id]
		if !ok {
			w.Write([]byte(`null`))
			return
		}
		w.Write([]byte(body))
	})
	return httptest.NewServer(mux)
}

func intsJSON(ids []int) string {
	out := "["
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%d", id)
	}
	return out + "]"
}

func storyBody(id int, title, url, by string, score, comments int) string {
	return fmt.Sprintf(`{"id":%d,"type":"story","title":%q,"url":%q,"by":%q,"score":%d,"descendants":%d}`,
		id, title, url, by, score, comments)
}

func TestFetcher_PollOnce_PublishesNewStories(t *testing.T) {
	server := fakeHN(t, []int{1, 2}, map[int]string{
		1: storyBody(1, "First", "https://www.example.com/a", "alice", 50, 10),
		2: storyBody(2, "Second", "", "bob", 5, 0),
	})
	defer server.Close()

	publisher := &capturingPublisher{}
	fixed := time.Date(2026, 9, 1, 12, 30, 0, 0, time.UTC)

	f := New(DefaultConfig(), NewClient(server.URL, 5*time.Second), publisher, nil)
	f.now = func() time.Time { return fixed }

	f.PollOnce(context.Background())

	stories := publisher.published()
	require.Len(t, stories, 2)
	assert.Equal(t, 1, stories[0].ID)
	assert.Equal(t, "First", stories[0].Title)
	assert.Equal(t, "alice", stories[0].Author)
	assert.Equal(t, 50, stories[0].Score)
	assert.Equal(t, 10, stories[0].CommentCount)
	assert.Equal(t, "example.com", stories[0].Domain)
	assert.Equal(t, fixed, stories[0].FetchedAt)

	// Ask HN style posts have no URL and no domain.
	assert.Equal(t, "", stories[1].URL)
	assert.Equal(t, "", stories[1].Domain)
}

func TestFetcher_PollOnce_SkipsSeenIDs(t *testing.T) {
	server := fakeHN(t, []int{1}, map[int]string{
		1: storyBody(1, "Only once", "https://example.com", "alice", 1, 0),
	})
	defer server.Close()

	publisher := &capturingPublisher{}
	f := New(DefaultConfig(), NewClient(server.URL, 5*time.Second), publisher, nil)

	f.PollOnce(context.Background())
	f.PollOnce(context.Background())

	assert.Len(t, publisher.published(), 1)
}

func TestFetcher_PollOnce_SkipsNonStoriesAndBadItems(t *testing.T) {
	server := fakeHN(t, []int{1, 2, 3, 4, 5}, map[int]string{
		1: storyBody(1, "Good", "https://example.com", "alice", 1, 0),
		2: `{"id":2,"type":"job","title":"Hiring"}`,
		3: `{"id":3,"type":"story","title":"Gone","deleted":true}`,
		4: `{"id":4,"type":"story","title":"Flagged","dead":true}`,
		// 5 resolves to null, the unknown-ID response.
	})
	defer server.Close()

	publisher := &capturingPublisher{}
	f := New(DefaultConfig(), NewClient(server.URL, 5*time.Second), publisher, nil)

	f.PollOnce(context.Background())

	stories := publisher.published()
	require.Len(t, stories, 1)
	assert.Equal(t, "Good", stories[0].Title)
}

func TestFetcher_PollOnce_ListingFailureAbortsCycle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	publisher := &capturingPublisher{}
	f := New(DefaultConfig(), NewClient(server.URL, 5*time.Second), publisher, nil)

	f.PollOnce(context.Background())

	assert.Empty(t, publisher.published())
}

func TestFetcher_PollOnce_PublishErrorDoesNotStopCycle(t *testing.T) {
	server := fakeHN(t, []int{1, 2}, map[int]string{
		1: storyBody(1, "A", "https://a.example.com", "alice", 1, 0),
		2: storyBody(2, "B", "https://b.example.com", "bob", 2, 0),
	})
	defer server.Close()

	publisher := &capturingPublisher{err: errors.New("broker down")}
	f := New(DefaultConfig(), NewClient(server.URL, 5*time.Second), publisher, nil)

	// Must not panic or abort; both IDs end up in the seen cache.
	f.PollOnce(context.Background())
	assert.True(t, f.seen.Contains(1))
	assert.True(t, f.seen.Contains(2))
}

func TestFetcher_Run_StopsOnContextCancel(t *testing.T) {
	server := fakeHN(t, []int{}, nil)
	defer server.Close()

	cfg := DefaultConfig()
	cfg.PollInterval = 10 * time.Millisecond

	f := New(cfg, NewClient(server.URL, 5*time.Second), &capturingPublisher{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("fetcher did not stop after cancel")
	}
}

func TestSeenCache_EvictsOldestBeyondCapacity(t *testing.T) {
	cache := newSeenCache(3)
	cache.Add(1)
	cache.Add(2)
	cache.Add(3)
	cache.Add(4)

	assert.False(t, cache.Contains(1))
	assert.True(t, cache.Contains(2))
	assert.True(t, cache.Contains(3))
	assert.True(t, cache.Contains(4))
}

func TestSeenCache_AddIsIdempotent(t *testing.T) {
	cache := newSeenCache(2)
	cache.Add(1)
	cache.Add(1)
	cache.Add(2)

	assert.True(t, cache.Contains(1))
	assert.True(t, cache.Contains(2))
}
