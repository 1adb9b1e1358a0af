// Package similarity scores how well a supplier name matches free-text
// payment descriptions.
//
// The measure is a token-set ratio: both strings are reduced to sorted sets
// of lower-cased words, so word order is irrelevant and a short string whose
// tokens are fully contained in a longer one scores 100. This behaves well
// for bank descriptions like "TRANSFERENCIA PAGO EXLUIB SA FACTURA 2025"
// against a supplier named "Exluib S.A.", where plain edit distance would
// score poorly.
package similarity

import (
	"math"
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// ratioOptions uses substitution cost 2 so the underlying ratio matches the
// classic sequence-matcher ratio (2*M / total length).
var ratioOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 2,
	Matches: levenshtein.IdenticalRunes,
}

// TokenSetRatio returns a similarity score in [0,100] between a and b.
// Comparison is case-insensitive; either side having no tokens scores 0.
func TokenSetRatio(a, b string) int {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	intersection, diffA, diffB := splitSets(tokensA, tokensB)

	sortedIntersection := strings.Join(intersection, " ")
	combinedA := joinNonEmpty(sortedIntersection, strings.Join(diffA, " "))
	combinedB := joinNonEmpty(sortedIntersection, strings.Join(diffB, " "))

	// When one token set contains the other, sortedIntersection equals one
	// of the combined strings and the ratio below is 100.
	score := ratio(sortedIntersection, combinedA)
	if s := ratio(sortedIntersection, combinedB); s > score {
		score = s
	}
	if s := ratio(combinedA, combinedB); s > score {
		score = s
	}
	return score
}

// tokenSet lower-cases s and splits it into a sorted set of unique
// alphanumeric tokens.
func tokenSet(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !isAlphanumeric(r)
	})

	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	sort.Strings(tokens)
	return tokens
}

func isAlphanumeric(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' || r > 127
}

// splitSets partitions two sorted token sets into their intersection and
// the tokens unique to each side.
func splitSets(a, b []string) (intersection, onlyA, onlyB []string) {
	inB := make(map[string]struct{}, len(b))
	for _, t := range b {
		inB[t] = struct{}{}
	}
	inA := make(map[string]struct{}, len(a))
	for _, t := range a {
		inA[t] = struct{}{}
	}

	for _, t := range a {
		if _, ok := inB[t]; ok {
			intersection = append(intersection, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for _, t := range b {
		if _, ok := inA[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	return intersection, onlyA, onlyB
}

func joinNonEmpty(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + " " + b
}

// ratio is the normalized edit-distance similarity of two strings, scaled
// to [0,100].
func ratio(a, b string) int {
	if a == "" && b == "" {
		return 100
	}
	r := levenshtein.RatioForStrings([]rune(a), []rune(b), ratioOptions)
	return int(math.Round(r * 100))
}
