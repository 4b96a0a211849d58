// Package provider defines canonical record types that all upstream fetchers
// normalize into. These structs are the contract between fetchers and the
// merge pipeline: fetchers output these, the pipeline joins and scores them.
//
// Adding a new upstream means implementing functions that return these types.
// The pipeline never changes.
package provider

import "github.com/albapepper/hoopscore/internal/season"

// AggregateTeam is the pseudo-team the stats sources use for a player's
// combined line after a mid-season trade.
const AggregateTeam = "TOT"

// TeamRecord is one team's regular-season record.
//
// Standing is the 1-based place by wins (1 = most wins). Rank is the additive
// score bonus: N-1 for the team with the most wins, 0 for the fewest. Both are
// zero until ranking.Rank assigns them.
type TeamRecord struct {
	Season       season.Season `json:"season"`
	Abbreviation string        `json:"abbreviation"`
	Name         string        `json:"name"`
	Wins         int           `json:"wins"`
	Losses       int           `json:"losses"`
	WinPct       float64       `json:"win_pct"`
	Standing     int           `json:"standing"`
	Rank         int           `json:"rank"`
}

// PlayerTotals is a player's season totals for one team.
type PlayerTotals struct {
	Season       season.Season `json:"season"`
	Player       string        `json:"player"`
	Team         string        `json:"team"`
	Position     string        `json:"position,omitempty"`
	Games        int           `json:"games"`
	GamesStarted int           `json:"games_started"`
	Points       float64       `json:"points"`
	Assists      float64       `json:"assists"`
	Rebounds     float64       `json:"rebounds"`
	Steals       float64       `json:"steals"`
	Blocks       float64       `json:"blocks"`
	Turnovers    float64       `json:"turnovers"`
	EffectiveFG  float64       `json:"effective_fg"` // fraction 0..1
}

// PlayerAdvanced is a player's season advanced metrics for one team.
type PlayerAdvanced struct {
	Season       season.Season `json:"season"`
	Player       string        `json:"player"`
	Team         string        `json:"team"`
	Position     string        `json:"position,omitempty"`
	Games        int           `json:"games"`
	PER          float64       `json:"per"`
	UsagePct     float64       `json:"usage_pct"`
	OffensiveWS  float64       `json:"offensive_ws"`
	DefensiveWS  float64       `json:"defensive_ws"`
	WinShares    float64       `json:"win_shares"`
	OffensiveBPM float64       `json:"offensive_bpm"`
	DefensiveBPM float64       `json:"defensive_bpm"`
	VORP         float64       `json:"vorp"`
}

// GameLogSummary is a player's averaged game log for one season.
type GameLogSummary struct {
	Season   season.Season `json:"season"`
	PlayerID int           `json:"player_id"`
	Player   string        `json:"player"`
	Team     string        `json:"team,omitempty"`
	Games    int           `json:"games"`
	PPG      float64       `json:"ppg"`
}

// --------------------------------------------------------------------------
// Stat categories
// --------------------------------------------------------------------------

// Category is a per-game rate stat tracked for percentiles and normalization.
type Category string

const (
	PPG Category = "PPG"
	APG Category = "APG"
	RPG Category = "RPG"
	SPG Category = "SPG"
	BPG Category = "BPG"
	EFG Category = "eFG%"
)

// Categories lists every tracked category in a fixed order.
var Categories = []Category{PPG, APG, RPG, SPG, BPG, EFG}
