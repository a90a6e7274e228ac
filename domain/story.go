package domain

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// StoryEvent is the normalized form of a Hacker News story as sampled at
// fetch time. It is immutable once emitted; identity is ID.
type StoryEvent struct {
	// ID is the source-assigned item ID, unique per story.
	ID int `json:"id"`
	// Title is the story title.
	Title string `json:"title"`
	// URL is the linked article URL. Empty for text-only posts.
	URL string `json:"url,omitempty"`
	// Author is the submitting username.
	Author string `json:"author"`
	// Score is the story score at fetch time.
	Score int `json:"score"`
	// CommentCount is the total comment count at fetch time.
	CommentCount int `json:"comment_count"`
	// Domain is derived from URL's host, lower-cased, www. stripped.
	// Empty when URL is empty.
	Domain string `json:"domain,omitempty"`
	// FetchedAt is when the fetcher sampled this story.
	FetchedAt time.Time `json:"fetched_at"`
}

// Validate checks that the event carries the required fields.
func (s *StoryEvent) Validate() error {
	if s.ID <= 0 {
		return errors.New("story id is required")
	}
	if s.Title == "" {
		return errors.New("story title is required")
	}
	if s.FetchedAt.IsZero() {
		return errors.New("story fetched_at is required")
	}
	return nil
}

// ExtractDomain derives the ranking domain from a story URL: the host,
// lower-cased, with any www. prefix stripped. Returns "" for unparseable
// or host-less URLs so text posts rank under no domain.
func ExtractDomain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	return host
}
