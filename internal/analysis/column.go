package analysis

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kiranshivaraju/feedlens/pkg/models"
)

// columnKeywords mark a column name as holding free text. A keyword must be a
// whole word of the normalized name (plural allowed), so "text" matches
// "feedback_text" and "Comments" matches "comment" but "context" matches nothing.
var columnKeywords = []string{
	"feedback", "comment", "review", "opinion", "message",
	"text", "description", "note", "remarks", "response",
}

// DetectColumn returns the column most likely to hold feedback text.
// A keyword match on the column name wins, first in column order; otherwise
// the column with the longest mean value length is chosen, ties going to the
// earlier column.
func DetectColumn(ds models.Dataset) (string, error) {
	if len(ds.Rows) == 0 {
		return "", ErrNoData
	}
	if len(ds.Columns) == 0 {
		return "", ErrNoColumn
	}

	for _, col := range ds.Columns {
		if matchesKeyword(col) {
			return col, nil
		}
	}

	selected := ds.Columns[0]
	maxAvg := 0.0
	for _, col := range ds.Columns {
		total := 0
		for _, row := range ds.Rows {
			total += utf8.RuneCountInString(cellString(row[col]))
		}
		avg := float64(total) / float64(len(ds.Rows))
		if avg > maxAvg {
			maxAvg = avg
			selected = col
		}
	}
	return selected, nil
}

// ExtractFeedbacks returns the values of column in row order, skipping
// values that are empty after trimming. Values are returned untrimmed.
func ExtractFeedbacks(ds models.Dataset, column string) []string {
	out := make([]string, 0, len(ds.Rows))
	for _, row := range ds.Rows {
		v := cellString(row[column])
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

func matchesKeyword(column string) bool {
	for _, word := range strings.Fields(normalizeColumnName(column)) {
		for _, kw := range columnKeywords {
			if word == kw || word == kw+"s" {
				return true
			}
		}
	}
	return false
}

// normalizeColumnName lowercases name and turns every run of
// non-alphanumeric characters into a single space.
func normalizeColumnName(name string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return b.String()
}

// cellString renders a cell value; nil reads as empty.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
