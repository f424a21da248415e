package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/kiranshivaraju/feedlens/internal/config"
	"github.com/kiranshivaraju/feedlens/pkg/models"
)

// Sentinel errors for inference API failures.
var (
	ErrProviderUnavailable = errors.New("huggingface provider unavailable")
	ErrInferenceTimeout    = errors.New("huggingface inference timeout")
	ErrInvalidResponse     = errors.New("huggingface returned invalid response")
)

// maxResponseBytes caps how much of a response body is decoded.
const maxResponseBytes = 1 << 20

// Provider implements models.SentimentProvider against the Hugging Face
// inference API.
type Provider struct {
	cfg    config.HuggingFaceConfig
	client *http.Client
}

// NewProvider creates a Provider. The request deadline comes from the caller's
// context; the http.Client itself carries no timeout.
func NewProvider(cfg config.HuggingFaceConfig) *Provider {
	return &Provider{cfg: cfg, client: &http.Client{}}
}

func (p *Provider) Name() string { return "huggingface" }

type inferenceRequest struct {
	Inputs  string           `json:"inputs"`
	Options inferenceOptions `json:"options"`
}

type inferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// Classify posts text to the model endpoint and returns the first result set.
func (p *Provider) Classify(ctx context.Context, text string) ([]models.LabelScore, error) {
	body, err := json.Marshal(inferenceRequest{
		Inputs:  text,
		Options: inferenceOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	u := fmt.Sprintf("%s/models/%s", strings.TrimRight(p.cfg.BaseURL, "/"), p.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIToken)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyError(err)
	}
	return parseResponse(raw)
}

// parseResponse accepts only [[{label, score}, ...], ...] with a non-empty
// first element.
func parseResponse(raw []byte) ([]models.LabelScore, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(outer) == 0 {
		return nil, fmt.Errorf("%w: empty result", ErrInvalidResponse)
	}

	var pairs []labelScore
	if err := json.Unmarshal(outer[0], &pairs); err != nil {
		return nil, fmt.Errorf("%w: first element is not a label list: %v", ErrInvalidResponse, err)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: empty label list", ErrInvalidResponse)
	}

	out := make([]models.LabelScore, 0, len(pairs))
	for _, lp := range pairs {
		if lp.Label == nil || lp.Score == nil {
			return nil, fmt.Errorf("%w: label/score missing", ErrInvalidResponse)
		}
		out = append(out, models.LabelScore{Label: *lp.Label, Score: *lp.Score})
	}
	return out, nil
}

type labelScore struct {
	Label *string  `json:"label"`
	Score *float64 `json:"score"`
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}

var _ models.SentimentProvider = (*Provider)(nil)
