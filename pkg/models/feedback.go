package models

// Sentiment is the categorical polarity of a feedback text.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// FeedbackRecord is one classified feedback item. Text is trimmed and non-empty;
// Score lies in [0, 1].
type FeedbackRecord struct {
	Text      string    `json:"text"`
	Sentiment Sentiment `json:"sentiment"`
	Score     float64   `json:"score"`
}

// IssueTally counts negative records that mention an issue category.
type IssueTally struct {
	Issue string `json:"issue"`
	Count int    `json:"count"`
}

// AnalysisSummary is the result of one analysis run.
// Positive+Neutral+Negative == Total == len(Feedbacks).
type AnalysisSummary struct {
	Total       int              `json:"total"`
	Positive    int              `json:"positive"`
	Neutral     int              `json:"neutral"`
	Negative    int              `json:"negative"`
	TopIssues   []IssueTally     `json:"topIssues"`
	Suggestions []string         `json:"suggestions"`
	Feedbacks   []FeedbackRecord `json:"feedbacks"`
}
