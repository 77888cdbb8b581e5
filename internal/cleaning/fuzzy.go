package cleaning

import "strings"

// similarity returns a normalized similarity in [0,1] between two strings,
// computed as 1 - levenshtein/maxlen over the lower-cased inputs.
func similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(a, b))/float64(maxLen)
}

// levenshtein computes the edit distance with a two-row table.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// bestFuzzyMatch finds the canonical candidate with the highest similarity
// to the input. Returns the match and its score; the caller applies the
// acceptance threshold.
func bestFuzzyMatch(input string, candidates []string) (string, float64) {
	best := ""
	bestScore := 0.0
	for _, candidate := range candidates {
		if score := similarity(input, candidate); score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best, bestScore
}
