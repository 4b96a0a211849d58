package pipeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/albapepper/hoopscore/internal/averages"
	"github.com/albapepper/hoopscore/internal/provider"
	"github.com/albapepper/hoopscore/internal/ranking"
	"github.com/albapepper/hoopscore/internal/season"
)

// --------------------------------------------------------------------------
// Join
// --------------------------------------------------------------------------

type joinKey struct {
	player string
	team   string
	season season.Season
}

// Join inner-joins totals and advanced rows on (player, team, season). Rows
// present on only one side are dropped; a source lagging behind the other is
// expected. Totals order is preserved. On duplicate advanced rows the first
// one is used.
func Join(totals []provider.PlayerTotals, advanced []provider.PlayerAdvanced) []Record {
	adv := make(map[joinKey]provider.PlayerAdvanced, len(advanced))
	for _, a := range advanced {
		k := joinKey{a.Player, a.Team, a.Season}
		if _, dup := adv[k]; !dup {
			adv[k] = a
		}
	}

	out := make([]Record, 0, len(totals))
	for _, t := range totals {
		a, ok := adv[joinKey{t.Player, t.Team, t.Season}]
		if !ok {
			continue
		}
		out = append(out, Record{
			Season:   t.Season,
			Player:   t.Player,
			Team:     t.Team,
			Totals:   t,
			Advanced: a,
		})
	}
	return out
}

// DropAggregate removes the multi-team aggregate rows.
func DropAggregate(recs []Record) []Record {
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		if r.Team == provider.AggregateTeam {
			continue
		}
		out = append(out, r.clone())
	}
	return out
}

// --------------------------------------------------------------------------
// Per-game rates
// --------------------------------------------------------------------------

// PerGame derives per-game rates, rounded to two decimals. Rows with no games
// played are dropped with a warning.
func PerGame(recs []Record) ([]Record, []Warning) {
	out := make([]Record, 0, len(recs))
	var warns []Warning
	for _, r := range recs {
		g := float64(r.Totals.Games)
		if r.Totals.Games <= 0 {
			warns = append(warns, Warning{
				Kind: WarnZeroGames, Season: r.Season, Player: r.Player,
				Detail: fmt.Sprintf("%d games played for %s", r.Totals.Games, r.Team),
			})
			continue
		}
		r = r.clone()
		r.Rates = Rates{
			PPG: round2(r.Totals.Points / g),
			APG: round2(r.Totals.Assists / g),
			RPG: round2(r.Totals.Rebounds / g),
			SPG: round2(r.Totals.Steals / g),
			BPG: round2(r.Totals.Blocks / g),
			EFG: r.Totals.EffectiveFG,
		}
		out = append(out, r)
	}
	return out, warns
}

// --------------------------------------------------------------------------
// Eligibility
// --------------------------------------------------------------------------

// Thresholds are the eligibility cut-offs. A player must exceed all three.
type Thresholds struct {
	MinPoints       float64 `json:"min_points"`
	MinGamesStarted int     `json:"min_games_started"`
	MinEffectiveFG  float64 `json:"min_effective_fg"` // fraction 0..1
}

// DefaultThresholds returns 15 PPG, 50 games started and 40% eFG.
func DefaultThresholds() Thresholds {
	return Thresholds{MinPoints: 15, MinGamesStarted: 50, MinEffectiveFG: 0.40}
}

// Validate rejects negative, non-finite or out-of-range thresholds.
func (t Thresholds) Validate() error {
	var errs []error
	if math.IsNaN(t.MinPoints) || math.IsInf(t.MinPoints, 0) || t.MinPoints < 0 {
		errs = append(errs, fmt.Errorf("minPoints must be a non-negative number, got %v", t.MinPoints))
	}
	if t.MinGamesStarted < 0 {
		errs = append(errs, fmt.Errorf("minGamesStarted must be non-negative, got %d", t.MinGamesStarted))
	}
	if math.IsNaN(t.MinEffectiveFG) || t.MinEffectiveFG < 0 || t.MinEffectiveFG > 1 {
		errs = append(errs, fmt.Errorf("minEffectiveFg must be between 0 and 100 percent, got %v", t.MinEffectiveFG*100))
	}
	return errors.Join(errs...)
}

// Filter keeps players strictly above every threshold.
func Filter(recs []Record, th Thresholds) []Record {
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		if r.Rates.PPG > th.MinPoints &&
			r.Totals.GamesStarted > th.MinGamesStarted &&
			r.Rates.EFG > th.MinEffectiveFG {
			out = append(out, r.clone())
		}
	}
	return out
}

// --------------------------------------------------------------------------
// Percentiles
// --------------------------------------------------------------------------

// Percentiles ranks each player within the given population, per category:
// the fraction of players whose value is less than or equal to theirs.
func Percentiles(recs []Record) []Record {
	out := make([]Record, len(recs))
	n := float64(len(recs))
	for i, r := range recs {
		r = r.clone()
		r.Percentiles = make(map[provider.Category]float64, len(provider.Categories))
		for _, cat := range provider.Categories {
			v := r.Rates.Get(cat)
			var atOrBelow int
			for _, other := range recs {
				if other.Rates.Get(cat) <= v {
					atOrBelow++
				}
			}
			r.Percentiles[cat] = float64(atOrBelow) / n
		}
		out[i] = r
	}
	return out
}

// --------------------------------------------------------------------------
// Team context
// --------------------------------------------------------------------------

// AttachTeams left-joins ranked teams on (team, season). Players whose team
// is missing keep a nil TeamContext and get a join-gap warning; they cannot
// be scored.
func AttachTeams(recs []Record, teams []provider.TeamRecord) ([]Record, []Warning) {
	bySeason := make(map[season.Season][]provider.TeamRecord)
	for _, t := range teams {
		bySeason[t.Season] = append(bySeason[t.Season], t)
	}
	idx := make(map[season.Season]map[string]provider.TeamRecord, len(bySeason))
	for s, group := range bySeason {
		idx[s] = ranking.Index(group)
	}

	out := make([]Record, len(recs))
	var warns []Warning
	for i, r := range recs {
		r = r.clone()
		if t, ok := idx[r.Season][r.Team]; ok {
			r.TeamContext = &t
		} else {
			r.TeamContext = nil
			warns = append(warns, Warning{
				Kind: WarnJoinGap, Season: r.Season, Player: r.Player,
				Detail: fmt.Sprintf("no standings record for team %q", r.Team),
			})
		}
		out[i] = r
	}
	return out, warns
}

// --------------------------------------------------------------------------
// Normalization
// --------------------------------------------------------------------------

// Normalize divides each rate by the season's league average. A missing
// average (or a zero one) leaves that category nil. Each uncovered season or
// (season, category) pair is reported once.
func Normalize(recs []Record, table *averages.Table) ([]Record, []Warning) {
	out := make([]Record, len(recs))
	var warns []Warning
	reported := make(map[string]bool)
	report := func(s season.Season, key, detail string) {
		if reported[key] {
			return
		}
		reported[key] = true
		warns = append(warns, Warning{Kind: WarnCoverageGap, Season: s, Detail: detail})
	}

	for i, r := range recs {
		r = r.clone()
		r.Normalized = make(map[provider.Category]*float64, len(provider.Categories))
		covered := table.Has(r.Season)
		if !covered {
			report(r.Season, r.Season.String(), "no league averages for season")
		}
		for _, cat := range provider.Categories {
			avg, ok := table.Lookup(r.Season, cat)
			if !ok || avg == 0 {
				r.Normalized[cat] = nil
				if covered {
					report(r.Season, r.Season.String()+"/"+string(cat),
						fmt.Sprintf("no league average for %s", cat))
				}
				continue
			}
			v := round2(r.Rates.Get(cat) / avg)
			r.Normalized[cat] = &v
		}
		out[i] = r
	}
	return out, warns
}
