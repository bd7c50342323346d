// Package identity matches a free-text name against roster aliases.
package identity

import (
	"sort"
	"strings"

	"crewswap/internal/roster"
	"crewswap/internal/textnorm"
)

// DefaultThreshold is the minimum score accepted by a zero Resolver.
const DefaultThreshold = 50

// Match is the best-scoring row for a query.
type Match struct {
	Query string         `json:"query"` // normalised
	Row   roster.CrewRow `json:"row"`
	Score float64        `json:"score"`
}

// TokenSortRatio scores a and b in [0, 100] ignoring word order: both sides are
// normalised, their tokens sorted and re-joined, then compared by
// 2*LCS/(len(a)+len(b)). Either side empty scores 0.
func TokenSortRatio(a, b string) float64 {
	sa, sb := sortTokens(a), sortTokens(b)
	if sa == "" || sb == "" {
		return 0
	}
	if sa == sb {
		return 100
	}

	ra, rb := []rune(sa), []rune(sb)
	lcs := lcsLength(ra, rb)
	return 200 * float64(lcs) / float64(len(ra)+len(rb))
}

func sortTokens(s string) string {
	tokens := strings.Fields(textnorm.Normalize(s))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// lcsLength is the longest common subsequence length of a and b.
func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// Best returns the highest-scoring row for query. On equal scores the first row
// in input order wins. It returns false when rows is empty.
func Best(query string, rows []roster.CrewRow) (Match, bool) {
	if len(rows) == 0 {
		return Match{}, false
	}

	best := Match{Query: textnorm.Normalize(query), Score: -1}
	for _, row := range rows {
		score := TokenSortRatio(query, row.Alias)
		if score > best.Score {
			best.Row = row
			best.Score = score
		}
	}
	return best, true
}

// Resolver applies an acceptance threshold on top of Best.
type Resolver struct {
	Threshold float64
}

// Resolve returns the best row when its score reaches the threshold.
// A zero Threshold means DefaultThreshold.
func (r Resolver) Resolve(query string, rows []roster.CrewRow) (Match, bool) {
	m, ok := Best(query, rows)
	if !ok || m.Score < r.threshold() {
		return m, false
	}
	return m, true
}

func (r Resolver) threshold() float64 {
	if r.Threshold <= 0 {
		return DefaultThreshold
	}
	return r.Threshold
}

// EffectiveThreshold reports the threshold Resolve applies.
func (r Resolver) EffectiveThreshold() float64 {
	return r.threshold()
}
