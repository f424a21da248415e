// Package models contains shared data models used across the FeedLens codebase.
package models

import "context"

// SentimentProvider is the remote classification tier. Implementations make
// exactly one attempt per call; callers own fallback behaviour.
type SentimentProvider interface {
	// Classify returns the label/score pairs reported for text.
	Classify(ctx context.Context, text string) ([]LabelScore, error)
	// Name returns the provider identifier (e.g., "huggingface").
	Name() string
}

// LabelScore is a single label/score pair returned by a remote classifier.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
