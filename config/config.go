// Package config provides configuration management for hn-pulse.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for hn-pulse.
type Config struct {
	// RedisURL is the Redis connection URL.
	RedisURL string
	// StreamKey is the Redis Stream the pipeline publishes to and
	// consumes from.
	StreamKey string
	// ConsumerGroup is the aggregator's consumer group name.
	ConsumerGroup string
	// ConsumerName is this consumer's name within the group.
	ConsumerName string
	// HNBaseURL is the Hacker News API base URL.
	HNBaseURL string
	// PollInterval is how often the fetcher polls the story listing.
	PollInterval time.Duration
	// FetchTimeout bounds each outbound HN API call.
	FetchTimeout time.Duration
	// TopStoriesLimit caps how many listing IDs are examined per cycle.
	TopStoriesLimit int
	// SeenCacheSize is the capacity of the fetcher's recent-IDs cache.
	SeenCacheSize int
	// HistoryRetention is how many finalized hourly buckets are kept.
	HistoryRetention int
	// StoriesPerBucket caps retained stories per hour.
	StoriesPerBucket int
	// StoryLimit caps the stories listed per served digest.
	StoryLimit int
	// TopN caps hourly author/domain rankings.
	TopN int
	// SourcesLimit caps the /api/sources ranking.
	SourcesLimit int
	// HTTPPort is the port for the read API server.
	HTTPPort int
	// LogLevel is the logging level.
	LogLevel string
}

// NewConfig creates a new Config from environment variables.
func NewConfig() *Config {
	return &Config{
		RedisURL:         getEnvOrDefault("REDIS_URL", "redis://localhost:6379"),
		StreamKey:        getEnvOrDefault("STREAM_KEY", "hnpulse:events:stories"),
		ConsumerGroup:    getEnvOrDefault("CONSUMER_GROUP", "aggregator-group"),
		ConsumerName:     getEnvOrDefault("CONSUMER_NAME", "aggregator-1"),
		HNBaseURL:        getEnvOrDefault("HN_BASE_URL", "https://hacker-news.firebaseio.com"),
		PollInterval:     getEnvDuration("POLL_INTERVAL", 60*time.Second),
		FetchTimeout:     getEnvDuration("FETCH_TIMEOUT", 10*time.Second),
		TopStoriesLimit:  getEnvInt("TOP_STORIES_LIMIT", 100),
		SeenCacheSize:    getEnvInt("SEEN_CACHE_SIZE", 500),
		HistoryRetention: getEnvInt("HISTORY_RETENTION", 24),
		StoriesPerBucket: getEnvInt("STORIES_PER_BUCKET", 100),
		StoryLimit:       getEnvInt("STORY_LIMIT", 100),
		TopN:             getEnvInt("TOP_N", 10),
		SourcesLimit:     getEnvInt("SOURCES_LIMIT", 100),
		HTTPPort:         getEnvInt("HTTP_PORT", 3000),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
	}
}

// getEnvOrDefault returns the value of an environment variable or a default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
