package listview

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/jask/mvilist/internal/todo"
)

// maxSuggestDistance is the largest edit ratio still offered as a suggestion.
const maxSuggestDistance = 0.4

// Suggest returns the title closest to query when the query matched nothing.
// Titles further than maxSuggestDistance (edit distance over length) are not offered.
func Suggest(records []todo.Record, query string) (string, bool) {
	q := cases.Fold().String(strings.TrimSpace(query))
	if q == "" {
		return "", false
	}
	best, bestRatio := "", maxSuggestDistance
	for _, r := range records {
		t := cases.Fold().String(r.Title)
		dist := levenshtein.ComputeDistance(q, t)
		ratio := float64(dist) / float64(max(len(q), len(t)))
		if ratio < bestRatio {
			best, bestRatio = r.Title, ratio
		}
	}
	return best, best != ""
}
