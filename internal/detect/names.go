package detect

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// keySuffixes are generic key markers stripped before comparing a source
// column name against a target table name. Longest first.
var keySuffixes = []string{"_id", "_key", "_fk", "_code", "id"}

func hasKeySuffix(name string) bool {
	for _, s := range keySuffixes {
		if strings.HasSuffix(name, s) && len(name) > len(s) {
			return true
		}
	}
	return false
}

// stripKeySuffix removes one trailing key marker, if any.
func stripKeySuffix(name string) string {
	for _, s := range keySuffixes {
		if strings.HasSuffix(name, s) && len(name) > len(s) {
			return strings.TrimSuffix(name, s)
		}
	}
	return name
}

// singular applies the minimal English plural rules that show up in table
// names ("customers" -> "customer", "categories" -> "category"). Anything
// fancier is not worth the false matches.
func singular(name string) string {
	switch {
	case strings.HasSuffix(name, "ies") && len(name) > 3:
		return strings.TrimSuffix(name, "ies") + "y"
	case strings.HasSuffix(name, "ses") && len(name) > 3:
		return strings.TrimSuffix(name, "es")
	case strings.HasSuffix(name, "s") && !strings.HasSuffix(name, "ss") && len(name) > 1:
		return strings.TrimSuffix(name, "s")
	default:
		return name
	}
}

// nameSimilarity scores how strongly a source column name suggests a
// reference to the target table's key, in [0,1].
//
// Exact column-name match scores 1.0. A source name whose key suffix strips
// down to the target's (singular) name scores 0.9. Everything else falls back
// to normalized Levenshtein similarity between the stripped source name and
// the target names, which catches near-misses like "custmer_id".
func nameSimilarity(sourceColumn, targetTable, targetColumn string) float64 {
	if sourceColumn == targetColumn {
		return 1.0
	}

	stripped := stripKeySuffix(sourceColumn)
	base := singular(targetTable)
	if stripped == base || stripped == targetTable {
		return 0.9
	}

	best := 0.0
	for _, cand := range []string{base, targetTable, targetColumn} {
		if s := levenshteinSimilarity(stripped, cand); s > best {
			best = s
		}
	}
	// Cap below the structural matches so exact naming always wins ties.
	if best > 0.85 {
		best = 0.85
	}
	return best
}

func levenshteinSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	dist := levenshtein.DistanceForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	max := len([]rune(a))
	if n := len([]rune(b)); n > max {
		max = n
	}
	return 1 - float64(dist)/float64(max)
}
