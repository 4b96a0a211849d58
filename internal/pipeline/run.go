package pipeline

import (
	"github.com/albapepper/hoopscore/internal/averages"
	"github.com/albapepper/hoopscore/internal/metrics"
	"github.com/albapepper/hoopscore/internal/provider"
	"github.com/albapepper/hoopscore/internal/ranking"
	"github.com/albapepper/hoopscore/internal/season"
)

// Input is everything fetched for one season.
type Input struct {
	Season     season.Season
	Teams      []provider.TeamRecord // unranked standings
	Totals     []provider.PlayerTotals
	Advanced   []provider.PlayerAdvanced
	Averages   *averages.Table
	Thresholds Thresholds
}

// Stats counts rows surviving each stage.
type Stats struct {
	Totals    int `json:"totals"`
	Advanced  int `json:"advanced"`
	Joined    int `json:"joined"`
	NonTOT    int `json:"non_aggregate"`
	WithGames int `json:"with_games"`
	Eligible  int `json:"eligible"`
	WithTeam  int `json:"with_team"`
}

// Output is the merged season.
type Output struct {
	Season season.Season
	// Teams are the season's standings, ranked.
	Teams []provider.TeamRecord
	// Records are the eligible players in totals order. Records with a nil
	// TeamContext are kept for reporting but cannot be scored.
	Records  []Record
	Warnings []Warning
	Stats    Stats
}

// Scoreable returns the records that have team context.
func (o Output) Scoreable() []Record {
	out := make([]Record, 0, len(o.Records))
	for _, r := range o.Records {
		if r.TeamContext != nil {
			out = append(out, r)
		}
	}
	return out
}

// Run ranks the standings and chains every stage. Thresholds are assumed to
// be validated by the caller.
func Run(in Input) Output {
	out := Output{Season: in.Season, Teams: ranking.Rank(in.Teams)}
	out.Stats.Totals = len(in.Totals)
	out.Stats.Advanced = len(in.Advanced)

	if len(in.Totals) == 0 {
		out.Warnings = append(out.Warnings, Warning{Kind: WarnMissingStats, Season: in.Season, Detail: "no player totals"})
	}
	if len(in.Advanced) == 0 {
		out.Warnings = append(out.Warnings, Warning{Kind: WarnMissingStats, Season: in.Season, Detail: "no player advanced stats"})
	}

	recs := Join(in.Totals, in.Advanced)
	out.Stats.Joined = len(recs)

	recs = DropAggregate(recs)
	out.Stats.NonTOT = len(recs)

	recs, warns := PerGame(recs)
	out.Warnings = append(out.Warnings, warns...)
	out.Stats.WithGames = len(recs)

	recs = Filter(recs, in.Thresholds)
	out.Stats.Eligible = len(recs)

	recs = Percentiles(recs)

	recs, warns = AttachTeams(recs, out.Teams)
	out.Warnings = append(out.Warnings, warns...)

	recs, warns = Normalize(recs, in.Averages)
	out.Warnings = append(out.Warnings, warns...)

	out.Records = recs
	for _, r := range recs {
		if r.TeamContext != nil {
			out.Stats.WithTeam++
		}
	}
	for _, w := range out.Warnings {
		metrics.PipelineWarnings.WithLabelValues(string(w.Kind)).Inc()
	}
	return out
}
