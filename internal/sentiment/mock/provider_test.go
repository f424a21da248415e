package mock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kiranshivaraju/feedlens/internal/sentiment/mock"
	"github.com/kiranshivaraju/feedlens/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- NewMockProvider ---

func TestNewMockProvider_Name(t *testing.T) {
	p := mock.NewMockProvider()
	assert.Equal(t, "mock", p.Name())
}

func TestNewMockProvider_ReturnsPairs(t *testing.T) {
	p := mock.NewMockProvider(models.LabelScore{Label: "positive", Score: 0.9})

	pairs, err := p.Classify(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []models.LabelScore{{Label: "positive", Score: 0.9}}, pairs)
	assert.Equal(t, []string{"hello"}, p.Calls())
}

// --- NewFailingProvider ---

func TestNewFailingProvider_CustomError(t *testing.T) {
	want := errors.New("boom")
	p := mock.NewFailingProvider(want)

	_, err := p.Classify(context.Background(), "x")
	assert.ErrorIs(t, err, want)
	assert.Equal(t, "mock-failing", p.Name())
}

func TestNewFailingProvider_DefaultError(t *testing.T) {
	_, err := mock.NewFailingProvider(nil).Classify(context.Background(), "x")
	assert.ErrorIs(t, err, mock.ErrUnavailable)
}

// --- NewTimeoutProvider ---

func TestNewTimeoutProvider_BlocksUntilCancelled(t *testing.T) {
	p := mock.NewTimeoutProvider()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Classify(ctx, "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// --- zero value ---

func TestMockProvider_NilFunc(t *testing.T) {
	p := &mock.MockProvider{Name_: "bare"}
	pairs, err := p.Classify(context.Background(), "x")
	assert.NoError(t, err)
	assert.Nil(t, pairs)
}
