package sentiment

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/feedlens/internal/cache"
	"github.com/kiranshivaraju/feedlens/pkg/models"
)

// ResultCache is the subset of cache.Cache used to memoize remote answers.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedProvider answers repeated texts from a cache before calling the
// wrapped provider. Only successful responses are stored. Cache failures are
// logged and otherwise ignored.
type CachedProvider struct {
	next  models.SentimentProvider
	cache ResultCache
	model string
	ttl   time.Duration
}

// NewCachedProvider wraps next. model namespaces the cache keys so a model
// change never serves stale labels.
func NewCachedProvider(next models.SentimentProvider, c ResultCache, model string, ttl time.Duration) *CachedProvider {
	return &CachedProvider{next: next, cache: c, model: model, ttl: ttl}
}

func (p *CachedProvider) Name() string { return p.next.Name() }

func (p *CachedProvider) Classify(ctx context.Context, text string) ([]models.LabelScore, error) {
	key := cache.SentimentKey(p.model, text)

	raw, found, err := p.cache.Get(ctx, key)
	if err != nil {
		slog.Debug("sentiment cache read failed", "error", err)
	}
	if found {
		var pairs []models.LabelScore
		if err := json.Unmarshal(raw, &pairs); err == nil && len(pairs) > 0 {
			return pairs, nil
		}
	}

	pairs, err := p.next.Classify(ctx, text)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(pairs); err == nil {
		if err := p.cache.Set(ctx, key, encoded, p.ttl); err != nil {
			slog.Debug("sentiment cache write failed", "error", err)
		}
	}
	return pairs, nil
}

var _ models.SentimentProvider = (*CachedProvider)(nil)
