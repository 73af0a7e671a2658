package resolver

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minTokenLength drops initials and stray letters from both sides of a match.
const minTokenLength = 2

// Field is one weighted text attribute of a candidate.
type Field struct {
	Value  string
	Weight float64
}

// fold lowercases s and strips diacritics so "Hélène" matches "helene".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// tokenize splits folded text on anything that is not a letter or digit.
func tokenize(s string) []string {
	parts := strings.FieldsFunc(fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := parts[:0]
	for _, p := range parts {
		if utf8.RuneCountInString(p) >= minTokenLength {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// tokenDistance scores two tokens on 0 (identical) to 1 (unrelated).
// A query token that prefixes the candidate token scores at most 0.1.
func tokenDistance(q, t string) float64 {
	if q == t {
		return 0
	}
	ql, tl := utf8.RuneCountInString(q), utf8.RuneCountInString(t)
	if strings.HasPrefix(t, q) {
		return 0.1 * (1 - float64(ql)/float64(tl))
	}
	longest := ql
	if tl > longest {
		longest = tl
	}
	d := float64(levenshtein.ComputeDistance(q, t)) / float64(longest)
	return math.Min(d, 1)
}

// fieldDistance is the best match of q against any token of the field,
// regardless of token position.
func fieldDistance(q string, tokens []string) float64 {
	best := 1.0
	for _, t := range tokens {
		if d := tokenDistance(q, t); d < best {
			best = d
		}
	}
	return best
}

// Score returns the weighted dissimilarity of query against fields, from 0
// (identical) to 1 (unrelated). Each query token takes its best field; a
// field's distance is inflated by sqrt(maxWeight/weight) so a hit on a heavy
// field beats the same hit on a light one. The result is the mean over
// query tokens.
func Score(query string, fields []Field) float64 {
	qTokens := tokenize(query)
	if len(qTokens) == 0 {
		return 1
	}

	maxWeight := 0.0
	for _, f := range fields {
		if f.Weight > maxWeight {
			maxWeight = f.Weight
		}
	}
	if maxWeight == 0 {
		return 1
	}

	fieldTokens := make([][]string, len(fields))
	for i, f := range fields {
		fieldTokens[i] = tokenize(f.Value)
	}

	total := 0.0
	for _, q := range qTokens {
		best := 1.0
		for i, f := range fields {
			if f.Weight <= 0 || len(fieldTokens[i]) == 0 {
				continue
			}
			d := fieldDistance(q, fieldTokens[i]) * math.Sqrt(maxWeight/f.Weight)
			if d < best {
				best = d
			}
		}
		total += best
	}
	return total / float64(len(qTokens))
}

// scored pairs a candidate with its dissimilarity.
type scored[T any] struct {
	item  T
	score float64
}

// rank scores every candidate, keeps those at or under cutoff and sorts them
// by ascending score. Equal scores keep the input order.
func rank[T any](query string, candidates []T, fields func(T) []Field, cutoff float64) []scored[T] {
	pool := make([]scored[T], 0, len(candidates))
	for _, c := range candidates {
		s := Score(query, fields(c))
		if s <= cutoff {
			pool = append(pool, scored[T]{item: c, score: s})
		}
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].score < pool[j].score })
	return pool
}
