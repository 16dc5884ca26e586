package fuzzy

import (
	"math"
	"strings"
)

// Func is the signature shared by every similarity metric.
type Func func(a, b string) int

// Ratio scores the whole of a against the whole of b.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	return score(similarity([]rune(a), []rune(b)))
}

// PartialRatio scores the shorter string against the best matching window of
// the longer string.
func PartialRatio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	best := 0.0
	for _, x := range newMatcher(shorter, longer).matchingBlocks() {
		start := x.b - x.a
		if start < 0 {
			start = 0
		}
		end := start + len(shorter)
		if end > len(longer) {
			end = len(longer)
		}
		r := similarity(shorter, longer[start:end])
		if r > 0.995 {
			return 100
		}
		if r > best {
			best = r
		}
	}
	return score(best)
}

// TokenSortRatio compares the processed, sorted token strings with Ratio.
func TokenSortRatio(a, b string) int {
	return tokenSort(a, b, Ratio)
}

// PartialTokenSortRatio compares the processed, sorted token strings with
// PartialRatio.
func PartialTokenSortRatio(a, b string) int {
	return tokenSort(a, b, PartialRatio)
}

// TokenSetRatio compares the shared tokens against each side's full token set
// with Ratio and keeps the best score.
func TokenSetRatio(a, b string) int {
	return tokenSetScore(a, b, Ratio)
}

// PartialTokenSetRatio is TokenSetRatio using PartialRatio for each
// comparison.
func PartialTokenSetRatio(a, b string) int {
	return tokenSetScore(a, b, PartialRatio)
}

func tokenSort(a, b string, fn Func) int {
	if a == b {
		return 100
	}
	return fn(sortedTokens(a), sortedTokens(b))
}

func tokenSetScore(a, b string, fn Func) int {
	if a == b {
		return 100
	}
	p1, p2 := Process(a), Process(b)
	if p1 == "" || p2 == "" {
		return 0
	}

	tokens1, tokens2 := tokenSet(p1), tokenSet(p2)
	intersection := make(map[string]struct{})
	diff1to2 := make(map[string]struct{})
	diff2to1 := make(map[string]struct{})
	for token := range tokens1 {
		if _, ok := tokens2[token]; ok {
			intersection[token] = struct{}{}
		} else {
			diff1to2[token] = struct{}{}
		}
	}
	for token := range tokens2 {
		if _, ok := tokens1[token]; !ok {
			diff2to1[token] = struct{}{}
		}
	}

	sect := joinSorted(intersection)
	combined1to2 := strings.TrimSpace(sect + " " + joinSorted(diff1to2))
	combined2to1 := strings.TrimSpace(sect + " " + joinSorted(diff2to1))

	return max(
		fn(sect, combined1to2),
		fn(sect, combined2to1),
		fn(combined1to2, combined2to1),
	)
}

func score(ratio float64) int {
	return int(math.RoundToEven(100 * ratio))
}
