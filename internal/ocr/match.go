package ocr

import (
	"strings"

	"github.com/arbovm/levenshtein"
)

// LabelMatch is the known plate ID closest to an OCR reading.
type LabelMatch struct {
	Label    string `json:"label"`
	Distance int    `json:"distance"`

	// Similarity is 1 - Distance/max(len), in [0, 1].
	Similarity float64 `json:"similarity"`
}

// MatchLabel picks the candidate with the smallest edit distance to text.
// Comparison ignores case and whitespace. Ties keep the earlier candidate.
// ok is false when candidates is empty or the best similarity is below
// minSimilarity.
func MatchLabel(text string, candidates []string, minSimilarity float64) (LabelMatch, bool) {
	key := matchKey(text)

	var best LabelMatch
	found := false
	for _, c := range candidates {
		ck := matchKey(c)
		d := levenshtein.Distance(key, ck)
		if found && d >= best.Distance {
			continue
		}
		best = LabelMatch{Label: c, Distance: d, Similarity: similarity(d, key, ck)}
		found = true
	}
	if !found || best.Similarity < minSimilarity {
		return best, false
	}
	return best, true
}

func matchKey(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

func similarity(distance int, a, b string) float64 {
	n := len([]rune(a))
	if m := len([]rune(b)); m > n {
		n = m
	}
	if n == 0 {
		return 1
	}
	return 1 - float64(distance)/float64(n)
}
