package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/kiranshivaraju/feedlens/pkg/models"
)

// ErrUnavailable is returned by NewFailingProvider when no error is given.
var ErrUnavailable = errors.New("mock provider unavailable")

// MockProvider satisfies models.SentimentProvider for testing.
type MockProvider struct {
	Name_        string
	ClassifyFunc func(ctx context.Context, text string) ([]models.LabelScore, error)

	mu    sync.Mutex
	calls []string
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Classify(ctx context.Context, text string) ([]models.LabelScore, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, text)
	}
	return nil, nil
}

// Calls returns the texts received so far, in order.
func (m *MockProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// NewMockProvider returns a MockProvider that always answers with pairs.
func NewMockProvider(pairs ...models.LabelScore) *MockProvider {
	return &MockProvider{
		Name_: "mock",
		ClassifyFunc: func(_ context.Context, _ string) ([]models.LabelScore, error) {
			return pairs, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	if err == nil {
		err = ErrUnavailable
	}
	return &MockProvider{
		Name_: "mock-failing",
		ClassifyFunc: func(_ context.Context, _ string) ([]models.LabelScore, error) {
			return nil, err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		ClassifyFunc: func(ctx context.Context, _ string) ([]models.LabelScore, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
}

// Compile-time check that MockProvider implements SentimentProvider.
var _ models.SentimentProvider = (*MockProvider)(nil)
