package domain

import (
	"math"
	"sort"
	"time"
)

// HourBucket accumulates every StoryEvent attributed to one calendar hour.
// It is mutable only while it is the aggregator's open bucket; once
// finalized it must not be modified.
type HourBucket struct {
	// HourStart is the bucket identity: the hour's inclusive lower bound,
	// truncated to the hour in UTC.
	HourStart time.Time
	// Stories holds events in arrival order, capped at the configured
	// stories-per-bucket limit.
	Stories []StoryEvent
	// StoryCount counts every attributed event, including those past the
	// Stories cap, so averages stay exact.
	StoryCount int
	// TotalScore is the running score sum across all attributed events.
	TotalScore int
	// TotalComments is the running comment sum across all attributed events.
	TotalComments int
	// AuthorCounts maps author -> occurrence count within the hour.
	AuthorCounts map[string]int
	// DomainCounts maps domain -> occurrence count within the hour.
	DomainCounts map[string]int
}

// NewHourBucket creates an empty bucket for the hour containing t.
func NewHourBucket(t time.Time) *HourBucket {
	return &HourBucket{
		HourStart:    t.UTC().Truncate(time.Hour),
		Stories:      []StoryEvent{},
		AuthorCounts: make(map[string]int),
		DomainCounts: make(map[string]int),
	}
}

// Add attributes a StoryEvent to the bucket. The stories slice stops
// growing at maxStories; sums and counters always advance.
func (b *HourBucket) Add(ev StoryEvent, maxStories int) {
	if maxStories <= 0 || len(b.Stories) < maxStories {
		b.Stories = append(b.Stories, ev)
	}
	b.StoryCount++
	b.TotalScore += ev.Score
	b.TotalComments += ev.CommentCount
	if ev.Author != "" {
		b.AuthorCounts[ev.Author]++
	}
	if ev.Domain != "" {
		b.DomainCounts[ev.Domain]++
	}
}

// AvgScore returns the arithmetic mean score, rounded to two decimals.
// Zero events yields 0.
func (b *HourBucket) AvgScore() float64 {
	if b.StoryCount == 0 {
		return 0
	}
	avg := float64(b.TotalScore) / float64(b.StoryCount)
	return math.Round(avg*100) / 100
}

// RankEntry is one (key, count) pair of a ranking.
type RankEntry struct {
	Key   string
	Count int
}

// RankCounts orders a count map by count descending, breaking ties by key
// ascending so rankings are deterministic. n <= 0 returns all entries.
func RankCounts(counts map[string]int, n int) []RankEntry {
	entries := make([]RankEntry, 0, len(counts))
	for k, c := range counts {
		entries = append(entries, RankEntry{Key: k, Count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

// StoryInfo is the per-story projection served to clients.
type StoryInfo struct {
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	Author   string `json:"author"`
	Score    int    `json:"score"`
	Comments int    `json:"comments"`
	Domain   string `json:"domain,omitempty"`
}

// HourlyDigest is the read-only summarized projection of a finalized
// bucket.
type HourlyDigest struct {
	Hour          time.Time   `json:"hour"`
	Stories       []StoryInfo `json:"stories"`
	AvgScore      float64     `json:"avg_score"`
	TotalComments int         `json:"total_comments"`
	TopAuthors    [][2]any    `json:"top_authors"`
	Domains       [][2]any    `json:"domains"`
}

// Digest projects the bucket into its client-facing form. topN caps the
// author and domain rankings; storyLimit caps the story list (<= 0 means
// no cap beyond what the bucket retained).
func (b *HourBucket) Digest(topN, storyLimit int) HourlyDigest {
	stories := b.Stories
	if storyLimit > 0 && storyLimit < len(stories) {
		stories = stories[:storyLimit]
	}
	infos := make([]StoryInfo, 0, len(stories))
	for _, s := range stories {
		infos = append(infos, StoryInfo{
			Title:    s.Title,
			URL:      s.URL,
			Author:   s.Author,
			Score:    s.Score,
			Comments: s.CommentCount,
			Domain:   s.Domain,
		})
	}

	return HourlyDigest{
		Hour:          b.HourStart,
		Stories:       infos,
		AvgScore:      b.AvgScore(),
		TotalComments: b.TotalComments,
		TopAuthors:    pairRanking(b.AuthorCounts, topN),
		Domains:       pairRanking(b.DomainCounts, topN),
	}
}

// pairRanking renders a ranking as [[key, count], ...] pairs, the shape
// the dashboard consumes.
func pairRanking(counts map[string]int, n int) [][2]any {
	ranked := RankCounts(counts, n)
	pairs := make([][2]any, 0, len(ranked))
	for _, e := range ranked {
		pairs = append(pairs, [2]any{e.Key, e.Count})
	}
	return pairs
}
