// Package worker consumes line change events and keeps a recent-activity
// feed for operators.
package worker

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration for the event worker.
type Config struct {
	// ProjectID is the Google Cloud project of the subscription.
	ProjectID string

	// Subscription is the Pub/Sub subscription carrying line events.
	// Default: line-events-worker
	Subscription string

	// FeedCapacity is the number of events kept in the feed.
	// Default: 500
	FeedCapacity int

	// MaxOutstanding caps the messages being processed at once.
	// Default: 10
	MaxOutstanding int

	// MaxExtension is how long a message's ack deadline may be extended.
	// Default: 10 minutes
	MaxExtension time.Duration
}

// DefaultConfig returns the default worker configuration.
func DefaultConfig() Config {
	return Config{
		Subscription:   "line-events-worker",
		FeedCapacity:   500,
		MaxOutstanding: 10,
		MaxExtension:   10 * time.Minute,
	}
}

// ConfigFromEnv reads PUBSUB_PROJECT_ID, PUBSUB_SUBSCRIPTION,
// FEED_CAPACITY and PUBSUB_MAX_OUTSTANDING over the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.ProjectID = os.Getenv("PUBSUB_PROJECT_ID")
	if v := os.Getenv("PUBSUB_SUBSCRIPTION"); v != "" {
		cfg.Subscription = v
	}
	if n, err := strconv.Atoi(os.Getenv("FEED_CAPACITY")); err == nil && n > 0 {
		cfg.FeedCapacity = n
	}
	if n, err := strconv.Atoi(os.Getenv("PUBSUB_MAX_OUTSTANDING")); err == nil && n > 0 {
		cfg.MaxOutstanding = n
	}
	return cfg
}
