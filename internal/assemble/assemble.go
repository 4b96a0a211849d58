// Package assemble turns scored players into the final season ladder.
package assemble

import (
	"sort"

	"github.com/albapepper/hoopscore/internal/season"
)

// ScoredPlayer is one entry of a season's MVP ladder.
type ScoredPlayer struct {
	Player        string        `json:"player"`
	Team          string        `json:"team"`
	Season        season.Season `json:"season"`
	Score         float64       `json:"score"`
	RelativeScore *float64      `json:"relativeScore"`
	IsMVP         bool          `json:"isMVP"`
}

// Assemble flags the known MVP, orders by score descending and removes
// duplicate player names, keeping each player's highest-scored entry. Ties
// keep their input order. mvp may be empty when the award is unknown.
func Assemble(scored []ScoredPlayer, mvp string) []ScoredPlayer {
	out := make([]ScoredPlayer, len(scored))
	copy(out, scored)
	for i := range out {
		out[i].IsMVP = mvp != "" && out[i].Player == mvp
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	seen := make(map[string]bool, len(out))
	deduped := out[:0]
	for _, p := range out {
		if seen[p.Player] {
			continue
		}
		seen[p.Player] = true
		deduped = append(deduped, p)
	}
	return deduped
}
