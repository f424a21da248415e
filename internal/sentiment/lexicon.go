package sentiment

import (
	"math"
	"strings"

	"github.com/kiranshivaraju/feedlens/pkg/models"
)

// Word lists for the lexicon scorer. All entries are lowercase and contain
// only word characters so they compare directly against stripped tokens.
var (
	positiveWords = wordSet(
		"excellent", "amazing", "wonderful", "fantastic", "great", "good", "best",
		"outstanding", "superb", "brilliant", "awesome", "perfect", "love",
		"incredible", "exceptional", "fabulous", "terrific", "marvelous",
		"satisfied", "happy", "pleased", "delighted", "impressed", "recommended",
		"quality", "efficient", "helpful", "friendly", "fast", "easy", "smooth",
	)

	negativeWords = wordSet(
		"terrible", "horrible", "awful", "bad", "worst", "poor", "disappointing",
		"disappointed", "hate", "useless", "broken", "defective", "failure",
		"pathetic", "disgusting", "frustrating", "annoying", "waste", "never",
		"angry", "upset", "unhappy", "dissatisfied", "uncomfortable", "rude",
		"slow", "expensive", "complicated", "difficult", "confusing", "problem",
	)

	neutralWords = wordSet(
		"okay", "ok", "average", "decent", "fine", "acceptable", "moderate",
	)

	// "don't" never survives stripping, but is kept so the list reads naturally.
	negations = wordSet(
		"not", "no", "never", "neither", "nobody", "nothing", "dont", "don't",
	)

	intensifiers = []string{"very", "extremely", "really", "absolutely", "completely", "totally"}
)

const (
	positiveWeight        = 2.0
	negatedPositiveWeight = 1.5
	negativeWeight        = 2.0
	negatedNegativeWeight = 1.0
	neutralWeight         = 1.0

	intensifierFactor = 1.2
	exclamationStep   = 0.1
	polarityMargin    = 0.15
	polarityBase      = 0.6
	polaritySlope     = 0.4
	maxLexiconScore   = 0.95
	mixedScore        = 0.6
	noSignalScore     = 0.5
)

// Tally holds the three lexicon accumulators for a text after negation,
// intensifier and exclamation adjustments.
type Tally struct {
	Positive float64
	Negative float64
	Neutral  float64
}

// Total returns the sum of all accumulators.
func (t Tally) Total() float64 { return t.Positive + t.Negative + t.Neutral }

// Accumulate runs the lexicon pass over text and returns the raw tally.
func Accumulate(text string) Tally {
	lower := strings.ToLower(text)
	words := strings.Fields(lower)

	var t Tally
	prev := ""
	for _, raw := range words {
		word := stripNonWord(raw)
		negated := negations[prev]

		if positiveWords[word] {
			if negated {
				t.Negative += negatedPositiveWeight
			} else {
				t.Positive += positiveWeight
			}
		}
		if negativeWords[word] {
			if negated {
				t.Positive += negatedNegativeWeight
			} else {
				t.Negative += negativeWeight
			}
		}
		if neutralWords[word] {
			t.Neutral += neutralWeight
		}
		prev = word
	}

	for _, in := range intensifiers {
		if strings.Contains(lower, in) {
			t.Positive *= intensifierFactor
			t.Negative *= intensifierFactor
			break
		}
	}

	if n := strings.Count(text, "!"); n > 0 {
		factor := 1 + float64(n)*exclamationStep
		t.Positive *= factor
		t.Negative *= factor
	}

	return t
}

// Score classifies text with the lexicon alone. It performs no I/O and is
// deterministic: the same text always yields the same Result.
func Score(text string) Result {
	t := Accumulate(text)
	total := t.Total()
	if total == 0 {
		return Result{Sentiment: models.SentimentNeutral, Score: noSignalScore, Source: SourceLexicon}
	}

	posRatio := t.Positive / total
	negRatio := t.Negative / total

	switch {
	case posRatio > negRatio+polarityMargin:
		return Result{
			Sentiment: models.SentimentPositive,
			Score:     math.Min(maxLexiconScore, polarityBase+posRatio*polaritySlope),
			Source:    SourceLexicon,
		}
	case negRatio > posRatio+polarityMargin:
		return Result{
			Sentiment: models.SentimentNegative,
			Score:     math.Min(maxLexiconScore, polarityBase+negRatio*polaritySlope),
			Source:    SourceLexicon,
		}
	default:
		return Result{Sentiment: models.SentimentNeutral, Score: mixedScore, Source: SourceLexicon}
	}
}

// stripNonWord drops every byte outside [A-Za-z0-9_].
func stripNonWord(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
