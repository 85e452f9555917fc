// Package fuzzyfinder ranks variable names against a typed query for the
// completion dropdown.
package fuzzyfinder

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

type Rank struct {
	// Target is the candidate that matched.
	Target string

	// Distance is the Levenshtein distance between the query and Target.
	Distance int

	// OriginalIndex is Target's position in the candidate list.
	OriginalIndex int
}

// RankFind returns the candidates matching query, best match first. Ties on
// distance keep the candidates' original order, so scope-nearest variables
// stay on top. An empty query matches everything at distance zero.
func RankFind(candidates []string, query string) []Rank {
	if query == "" {
		ranks := make([]Rank, len(candidates))
		for i, c := range candidates {
			ranks[i] = Rank{Target: c, OriginalIndex: i}
		}
		return ranks
	}

	found := fuzzy.RankFindNormalizedFold(query, candidates)
	ranks := make([]Rank, found.Len())
	for i, r := range found {
		ranks[i] = Rank{
			Target:        r.Target,
			Distance:      r.Distance,
			OriginalIndex: r.OriginalIndex,
		}
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Distance < ranks[j].Distance
	})
	return ranks
}
