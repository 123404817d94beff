// Package match implements the keyword matcher used by catalog search.
// Inputs are normalized (trimmed, lowercased); an exact substring hit
// short-circuits to a full score, otherwise a partial-ratio similarity in
// [0,100] is computed over sliding windows of the text.
package match

import "strings"

// Score returns the similarity between keyword and text in [0,100].
func Score(keyword, text string) int {
	keyword = normalize(keyword)
	text = normalize(text)

	if keyword == "" || text == "" {
		return 0
	}
	if strings.Contains(text, keyword) {
		return 100
	}

	return partialRatio([]rune(keyword), []rune(text))
}

// Match reports whether keyword matches text at or above the threshold.
func Match(keyword, text string, threshold int) bool {
	return Score(keyword, text) >= threshold
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// partialRatio slides the shorter string across the longer one and keeps the
// best Levenshtein ratio among the windows.
func partialRatio(a, b []rune) int {
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	best := 0
	for start := 0; start+len(shorter) <= len(longer); start++ {
		window := longer[start : start+len(shorter)]
		if ratio := levenshteinRatio(shorter, window); ratio > best {
			best = ratio
			if best == 100 {
				break
			}
		}
	}
	return best
}

func levenshteinRatio(a, b []rune) int {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 100
	}
	dist := levenshtein(a, b)
	return (longest - dist) * 100 / longest
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
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
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
