package match

import "github.com/agnivade/levenshtein"

// Similarity scores two strings in [0,1] as 1 - distance/max(len) over
// runes. Two empty strings score 1.0. Symmetric, and 1.0 for identical
// inputs. Callers are expected to pass already-normalized strings.
func Similarity(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1.0
	}

	distance := levenshtein.ComputeDistance(a, b)

	return 1.0 - float64(distance)/float64(longest)
}
