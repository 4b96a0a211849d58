// Package ranking orders a season's teams by wins.
package ranking

import (
	"sort"

	"github.com/albapepper/hoopscore/internal/provider"
)

// Rank returns the teams ordered by wins, most first, with Standing and Rank
// assigned. The input is not modified.
//
// The sort is stable: teams with equal wins keep their scan order, so the
// team scanned first gets the better Standing and the higher Rank. For N
// teams, Standing runs 1..N and Rank runs N-1..0.
func Rank(teams []provider.TeamRecord) []provider.TeamRecord {
	out := make([]provider.TeamRecord, len(teams))
	copy(out, teams)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Wins > out[j].Wins })

	n := len(out)
	for i := range out {
		out[i].Standing = i + 1
		out[i].Rank = n - i - 1
	}
	return out
}

// Index keys ranked teams by abbreviation. On a duplicate abbreviation the
// first (better placed) record wins.
func Index(teams []provider.TeamRecord) map[string]provider.TeamRecord {
	idx := make(map[string]provider.TeamRecord, len(teams))
	for _, t := range teams {
		if _, dup := idx[t.Abbreviation]; !dup {
			idx[t.Abbreviation] = t
		}
	}
	return idx
}
