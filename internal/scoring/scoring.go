// Package scoring computes the composite MVP-suitability score.
//
// The formula is a fixed, versioned weight table over per-game rates plus the
// team's wins and rank:
//
//	0.15*(wins+rank) + 0.28*PPG + 0.12*RPG*3 + 0.16*APG*4 + 0.21*eFG*60 + 0.08*SPG*20
//
// Weights sum to 1.0. The result is rounded to two decimals.
package scoring

import (
	"fmt"
	"math"

	"github.com/albapepper/hoopscore/internal/pipeline"
	"github.com/albapepper/hoopscore/internal/provider"
	"github.com/albapepper/hoopscore/internal/season"
)

// Term is one weighted category of the composite.
type Term struct {
	Category   provider.Category
	Weight     float64
	Multiplier float64
}

// WeightTable is a named, immutable scoring formula.
type WeightTable struct {
	Version    string
	TeamWeight float64
	Terms      []Term
}

// PerGameV1 is the canonical formula.
var PerGameV1 = WeightTable{
	Version:    "per-game-v1",
	TeamWeight: 0.15,
	Terms: []Term{
		{Category: provider.PPG, Weight: 0.28, Multiplier: 1},
		{Category: provider.RPG, Weight: 0.12, Multiplier: 3},
		{Category: provider.APG, Weight: 0.16, Multiplier: 4},
		{Category: provider.EFG, Weight: 0.21, Multiplier: 60},
		{Category: provider.SPG, Weight: 0.08, Multiplier: 20},
	},
}

// ScoringError means a record lacked what the formula needs. The player is
// excluded; the batch continues.
type ScoringError struct {
	Season season.Season
	Player string
	Reason string
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("score %s (%s): %s", e.Player, e.Season.Label(), e.Reason)
}

// Score applies the canonical table.
func Score(r pipeline.Record) (float64, error) {
	return PerGameV1.Score(r)
}

// Relative applies the canonical table to normalized values.
func Relative(r pipeline.Record) *float64 {
	return PerGameV1.Relative(r)
}

// Score computes the raw composite for a record with team context.
func (w WeightTable) Score(r pipeline.Record) (float64, error) {
	if r.TeamContext == nil {
		return 0, &ScoringError{Season: r.Season, Player: r.Player, Reason: "missing team context"}
	}

	score := w.TeamWeight * float64(r.TeamContext.Wins+r.TeamContext.Rank)
	for _, t := range w.Terms {
		v := r.Rates.Get(t.Category)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, &ScoringError{Season: r.Season, Player: r.Player,
				Reason: fmt.Sprintf("%s is not a number", t.Category)}
		}
		score += t.Weight * v * t.Multiplier
	}
	return round2(score), nil
}

// Relative computes the composite over normalized categories only, scaled by
// 100 so a league-average line scores 100. Weights are renormalized over the
// categories that have an average; nil when none do.
func (w WeightTable) Relative(r pipeline.Record) *float64 {
	var sum, weights float64
	for _, t := range w.Terms {
		v := r.Normalized[t.Category]
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			continue
		}
		sum += t.Weight * *v
		weights += t.Weight
	}
	if weights == 0 {
		return nil
	}
	rel := round2(sum / weights * 100)
	return &rel
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
