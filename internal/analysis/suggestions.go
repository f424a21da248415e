package analysis

import "github.com/kiranshivaraju/feedlens/pkg/models"

// MaxSuggestions bounds the suggestion list.
const MaxSuggestions = 3

// suggestionTexts maps an issue category to its recommendation.
var suggestionTexts = map[string]string{
	"Customer Service":    "Invest in comprehensive customer service training and expand support team capacity to reduce response times",
	"Product Quality":     "Implement rigorous quality control processes and conduct regular product testing before release",
	"Delivery & Shipping": "Partner with reliable logistics providers and implement real-time tracking systems for transparency",
	"Pricing":             "Review pricing strategy to ensure competitive positioning and communicate value proposition more clearly",
	"User Experience":     "Conduct usability testing with real users and redesign interface based on feedback for intuitive navigation",
	"Performance":         "Optimize code and infrastructure for faster performance and establish regular maintenance schedules",
	"Features":            "Prioritize feature development based on user requests and communicate product roadmap transparently",
}

// GenerateSuggestions returns the recommendations for issues in rank order,
// skipping categories without one, capped at MaxSuggestions.
// Returns empty slice for no issues (never nil).
func GenerateSuggestions(issues []models.IssueTally) []string {
	out := make([]string, 0, MaxSuggestions)
	for _, issue := range issues {
		if len(out) == MaxSuggestions {
			break
		}
		if text, ok := suggestionTexts[issue.Issue]; ok {
			out = append(out, text)
		}
	}
	return out
}
