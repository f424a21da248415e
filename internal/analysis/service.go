// Package analysis turns feedback text into an AnalysisSummary: column
// detection for tabular input, per-item classification, issue ranking and
// suggestions.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/feedlens/internal/metrics"
	"github.com/kiranshivaraju/feedlens/internal/sentiment"
	"github.com/kiranshivaraju/feedlens/pkg/models"
)

// recoveredScore is assigned to an item whose classification panicked.
const recoveredScore = 0.5

// Classifier produces a sentiment for one trimmed, non-empty text.
type Classifier interface {
	Classify(ctx context.Context, text string) sentiment.Result
}

// Service orchestrates analysis runs. It holds no per-run state and is safe
// for concurrent use.
type Service struct {
	classifier Classifier
	pacers     PacerFactory
}

// NewService creates a Service. A nil pacers disables pacing.
func NewService(classifier Classifier, pacers PacerFactory) *Service {
	if pacers == nil {
		pacers = NoPacing
	}
	return &Service{classifier: classifier, pacers: pacers}
}

// Analyze classifies feedbacks one at a time in input order and assembles the
// summary. Items that are empty after trimming are skipped. An input with no
// usable items yields a zero summary, not an error.
func (s *Service) Analyze(ctx context.Context, feedbacks []string) models.AnalysisSummary {
	start := time.Now()
	runID := uuid.New()
	pacer := s.pacers()

	records := make([]models.FeedbackRecord, 0, len(feedbacks))
	for _, raw := range feedbacks {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		records = append(records, s.classifyItem(ctx, pacer, runID, text))
	}

	summary := models.AnalysisSummary{
		Total:     len(records),
		Feedbacks: records,
	}
	for _, rec := range records {
		switch rec.Sentiment {
		case models.SentimentPositive:
			summary.Positive++
		case models.SentimentNegative:
			summary.Negative++
		default:
			summary.Neutral++
		}
	}
	summary.TopIssues = ExtractIssues(records)
	summary.Suggestions = GenerateSuggestions(summary.TopIssues)

	elapsed := time.Since(start)
	metrics.AnalysisDuration.Observe(elapsed.Seconds())
	slog.Info("analysis completed",
		"run_id", runID,
		"total", summary.Total,
		"positive", summary.Positive,
		"neutral", summary.Neutral,
		"negative", summary.Negative,
		"top_issues", len(summary.TopIssues),
		"duration_ms", elapsed.Milliseconds(),
	)

	return summary
}

// classifyItem classifies one text. The pacing gate is honoured before every
// attempt whether or not the remote tier ends up answering. A panic degrades
// only this item to a neutral default.
func (s *Service) classifyItem(ctx context.Context, pacer Pacer, runID uuid.UUID, text string) (rec models.FeedbackRecord) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic classifying feedback item",
				"error", fmt.Sprint(r),
				"run_id", runID,
				"stack", string(debug.Stack()),
			)
			rec = models.FeedbackRecord{Text: text, Sentiment: models.SentimentNeutral, Score: recoveredScore}
			metrics.Classifications.WithLabelValues("recovered").Inc()
			metrics.Sentiments.WithLabelValues(string(rec.Sentiment)).Inc()
		}
	}()

	var res sentiment.Result
	if err := pacer.Wait(ctx); err != nil {
		slog.Debug("pacing interrupted, using lexicon", "run_id", runID, "error", err)
		res = sentiment.Score(text)
	} else {
		res = s.classifier.Classify(ctx, text)
	}

	metrics.Classifications.WithLabelValues(string(res.Source)).Inc()
	metrics.Sentiments.WithLabelValues(string(res.Sentiment)).Inc()

	return models.FeedbackRecord{Text: text, Sentiment: res.Sentiment, Score: res.Score}
}
