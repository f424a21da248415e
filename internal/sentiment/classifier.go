// Package sentiment classifies feedback text. A remote provider is tried
// first; any failure there falls back to the deterministic lexicon scorer.
package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kiranshivaraju/feedlens/pkg/models"
)

// MaxRemoteChars is the number of characters sent to the remote provider.
const MaxRemoteChars = 500

// Source identifies which tier produced a Result.
type Source string

const (
	SourceRemote  Source = "remote"
	SourceLexicon Source = "lexicon"
)

// Result is the classification of one text.
type Result struct {
	Sentiment models.Sentiment
	Score     float64
	Source    Source
}

// Classifier runs the two-tier classification strategy.
type Classifier struct {
	provider models.SentimentProvider
	timeout  time.Duration
}

// NewClassifier creates a Classifier. A nil provider disables the remote tier.
func NewClassifier(provider models.SentimentProvider, timeout time.Duration) *Classifier {
	return &Classifier{provider: provider, timeout: timeout}
}

// RemoteEnabled reports whether a remote provider is configured.
func (c *Classifier) RemoteEnabled() bool {
	return c.provider != nil
}

// Classify returns a sentiment for text. It never fails: remote errors are
// logged at debug level and answered by the lexicon scorer.
func (c *Classifier) Classify(ctx context.Context, text string) Result {
	res, err := c.Remote(ctx, text)
	if err == nil {
		return res
	}
	if c.provider != nil {
		slog.Debug("remote sentiment failed, using lexicon",
			"provider", c.provider.Name(),
			"error", err,
		)
	}
	return Score(text)
}

// Remote makes exactly one attempt against the remote provider, bounded by
// the classifier timeout.
func (c *Classifier) Remote(ctx context.Context, text string) (Result, error) {
	if c.provider == nil {
		return Result{}, ErrRemoteDisabled
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	pairs, err := c.provider.Classify(ctx, truncateRunes(text, MaxRemoteChars))
	if err != nil {
		return Result{}, err
	}
	return interpret(pairs)
}

// interpret selects the highest-scoring pair. Ties keep the earlier pair.
func interpret(pairs []models.LabelScore) (Result, error) {
	if len(pairs) == 0 {
		return Result{}, fmt.Errorf("%w: no label scores", ErrInvalidResponse)
	}

	top := pairs[0]
	for _, p := range pairs[1:] {
		if p.Score > top.Score {
			top = p
		}
	}

	if math.IsNaN(top.Score) || top.Score < 0 || top.Score > 1 {
		return Result{}, fmt.Errorf("%w: score %v out of range", ErrInvalidResponse, top.Score)
	}

	return Result{Sentiment: labelSentiment(top.Label), Score: top.Score, Source: SourceRemote}, nil
}

func labelSentiment(label string) models.Sentiment {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "pos"):
		return models.SentimentPositive
	case strings.Contains(l, "neg"):
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// truncateRunes keeps at most n runes of s.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
