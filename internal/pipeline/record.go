// Package pipeline merges a season's player totals, advanced metrics and team
// standings into scoreable records.
//
// Every stage is a pure function: it returns new slices and never mutates its
// input, so running the pipeline twice over the same input yields the same
// output. Data gaps are reported as Warnings, never as errors.
package pipeline

import (
	"math"

	"github.com/albapepper/hoopscore/internal/provider"
	"github.com/albapepper/hoopscore/internal/season"
)

// Rates are per-game averages. EFG is carried through from the totals as a
// fraction.
type Rates struct {
	PPG float64 `json:"ppg"`
	APG float64 `json:"apg"`
	RPG float64 `json:"rpg"`
	SPG float64 `json:"spg"`
	BPG float64 `json:"bpg"`
	EFG float64 `json:"efg"`
}

// Get returns the rate for a category.
func (r Rates) Get(cat provider.Category) float64 {
	switch cat {
	case provider.PPG:
		return r.PPG
	case provider.APG:
		return r.APG
	case provider.RPG:
		return r.RPG
	case provider.SPG:
		return r.SPG
	case provider.BPG:
		return r.BPG
	case provider.EFG:
		return r.EFG
	}
	return 0
}

// Record is one player's merged season line.
type Record struct {
	Season   season.Season           `json:"season"`
	Player   string                  `json:"player"`
	Team     string                  `json:"team"`
	Totals   provider.PlayerTotals   `json:"totals"`
	Advanced provider.PlayerAdvanced `json:"advanced"`
	Rates    Rates                   `json:"rates"`

	// Percentiles is the fraction of the eligible population at or below this
	// player, per category.
	Percentiles map[provider.Category]float64 `json:"percentiles,omitempty"`

	// TeamContext is nil until AttachTeams finds the player's team.
	TeamContext *provider.TeamRecord `json:"team_context,omitempty"`

	// Normalized is rate / league average. A nil value means the average was
	// unavailable for that season and category.
	Normalized map[provider.Category]*float64 `json:"normalized,omitempty"`
}

// clone copies the record's maps and pointers so a stage can modify the copy.
func (r Record) clone() Record {
	if r.Percentiles != nil {
		p := make(map[provider.Category]float64, len(r.Percentiles))
		for k, v := range r.Percentiles {
			p[k] = v
		}
		r.Percentiles = p
	}
	if r.TeamContext != nil {
		t := *r.TeamContext
		r.TeamContext = &t
	}
	if r.Normalized != nil {
		n := make(map[provider.Category]*float64, len(r.Normalized))
		for k, v := range r.Normalized {
			if v != nil {
				f := *v
				v = &f
			}
			n[k] = v
		}
		r.Normalized = n
	}
	return r
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
