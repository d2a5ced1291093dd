package util

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

var (
	decamelizeRegexp = regexp.MustCompile(`([a-z\d])([A-Z])`)
	dasherizeRegexp  = regexp.MustCompile(`[ _]`)
)

// Decamelize converts a camelized string into lower case words separated by
// underscores, e.g. "innerHTML" becomes "inner_html".
func Decamelize(s string) string {
	return strings.ToLower(decamelizeRegexp.ReplaceAllString(s, "${1}_${2}"))
}

var dasherizeCache = NewCache(1000, func(s string) string {
	return dasherizeRegexp.ReplaceAllString(Decamelize(s), "-")
})

// Dasherize replaces underscores, spaces and camelCase boundaries with dashes,
// e.g. "FooBar" becomes "foo-bar". Results are memoized.
func Dasherize(s string) string {
	return dasherizeCache.Get(s)
}

// IsUpper reports whether the first rune of s is an upper-case letter.
func IsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

// ClosestMatch returns the candidate that target fuzzily matches with the
// smallest edit distance, or "" when none matches. When target is not a
// subsequence of any candidate, as with transposed letters, the candidate
// within a small edit distance is returned instead.
func ClosestMatch(target string, candidates []string) string {
	if target == "" || len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		sort.Stable(ranks)
		return ranks[0].Target
	}
	return nearestByDistance(target, candidates)
}

func nearestByDistance(target string, candidates []string) string {
	limit := max(2, len(target)/2)
	lower := strings.ToLower(target)
	best, bestDistance := "", limit+1
	for _, candidate := range candidates {
		d := fuzzy.LevenshteinDistance(lower, strings.ToLower(candidate))
		if d < bestDistance || (d == bestDistance && candidate < best) {
			best, bestDistance = candidate, d
		}
	}
	return best
}
