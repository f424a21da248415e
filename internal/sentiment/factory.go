package sentiment

import (
	"fmt"

	"github.com/kiranshivaraju/feedlens/internal/config"
	"github.com/kiranshivaraju/feedlens/internal/sentiment/huggingface"
	"github.com/kiranshivaraju/feedlens/pkg/models"
)

// NewProvider constructs the remote provider named in config. The "none"
// provider returns nil, which leaves only the lexicon tier.
// Called once at server startup.
func NewProvider(cfg config.SentimentConfig) (models.SentimentProvider, error) {
	switch cfg.Provider {
	case "huggingface":
		return huggingface.NewProvider(cfg.HuggingFace), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown sentiment provider %q: must be one of huggingface, none", cfg.Provider)
	}
}
