package pipeline

import (
	"fmt"

	"github.com/albapepper/hoopscore/internal/season"
)

// WarningKind classifies a data gap.
type WarningKind string

const (
	// WarnZeroGames: a row with no games played was dropped.
	WarnZeroGames WarningKind = "zero_games"
	// WarnJoinGap: a player's team has no standings record.
	WarnJoinGap WarningKind = "join_gap"
	// WarnCoverageGap: league averages do not cover the season or a category.
	WarnCoverageGap WarningKind = "coverage_gap"
	// WarnScoring: a player could not be scored.
	WarnScoring WarningKind = "scoring_error"
	// WarnMissingStats: a stats source returned nothing for the season.
	WarnMissingStats WarningKind = "missing_stats"
)

// Warning is a non-fatal data gap found while building a season.
type Warning struct {
	Kind   WarningKind   `json:"kind"`
	Season season.Season `json:"season"`
	Player string        `json:"player,omitempty"`
	Detail string        `json:"detail"`
}

func (w Warning) String() string {
	if w.Player == "" {
		return fmt.Sprintf("%s [%s]: %s", w.Kind, w.Season.Label(), w.Detail)
	}
	return fmt.Sprintf("%s [%s] %s: %s", w.Kind, w.Season.Label(), w.Player, w.Detail)
}
