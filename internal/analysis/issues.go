package analysis

import (
	"sort"
	"strings"

	"github.com/kiranshivaraju/feedlens/pkg/models"
)

// MaxTopIssues bounds the ranked issue list.
const MaxTopIssues = 5

// IssueCategory is a topical bucket for negative feedback.
type IssueCategory struct {
	Name     string
	Keywords []string
}

// IssueCategories in declaration order. The order breaks ranking ties.
var IssueCategories = []IssueCategory{
	{"Customer Service", []string{"service", "staff", "support", "employee", "representative", "help", "rude", "unhelpful", "customer", "agent"}},
	{"Product Quality", []string{"quality", "broken", "defective", "damaged", "poor", "cheap", "faulty", "durability", "materials"}},
	{"Delivery & Shipping", []string{"delivery", "shipping", "late", "delayed", "arrive", "received", "package", "tracking", "carrier"}},
	{"Pricing", []string{"price", "expensive", "cost", "overpriced", "value", "money", "refund", "charge"}},
	{"User Experience", []string{"difficult", "confusing", "complicated", "hard", "interface", "use", "navigate", "unintuitive"}},
	{"Performance", []string{"slow", "crash", "bug", "error", "freeze", "lag", "glitch", "loading", "speed"}},
	{"Features", []string{"missing", "lack", "limited", "feature", "functionality", "options", "capability"}},
}

// ExtractIssues counts, for each category, the negative records whose
// lowercased text contains any of its keywords. A record may count toward
// several categories. Returns at most MaxTopIssues tallies sorted by count
// descending, ties in declaration order; zero counts are omitted.
// Returns empty slice for no matches (never nil).
func ExtractIssues(records []models.FeedbackRecord) []models.IssueTally {
	counts := make([]int, len(IssueCategories))
	for _, rec := range records {
		if rec.Sentiment != models.SentimentNegative {
			continue
		}
		lower := strings.ToLower(rec.Text)
		for i, cat := range IssueCategories {
			if containsAny(lower, cat.Keywords) {
				counts[i]++
			}
		}
	}

	tallies := make([]models.IssueTally, 0, len(IssueCategories))
	for i, cat := range IssueCategories {
		if counts[i] > 0 {
			tallies = append(tallies, models.IssueTally{Issue: cat.Name, Count: counts[i]})
		}
	}

	sort.SliceStable(tallies, func(i, j int) bool {
		return tallies[i].Count > tallies[j].Count
	})

	if len(tallies) > MaxTopIssues {
		tallies = tallies[:MaxTopIssues]
	}
	return tallies
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
