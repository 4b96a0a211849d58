package nbaapi

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/albapepper/hoopscore/internal/cache"
	"github.com/albapepper/hoopscore/internal/provider"
	"github.com/albapepper/hoopscore/internal/season"
)

const totalsQuery = `query PlayerTotals($season: Int!) {
  playerTotals(season: $season) {
    playerName
    position
    team
    games
    gamesStarted
    points
    assists
    totalRb
    steals
    blocks
    turnovers
    effectFgPercent
  }
}`

const advancedQuery = `query PlayerAdvanced($season: Int!) {
  playerAdvanced(season: $season) {
    playerName
    position
    team
    games
    per
    usagePercent
    offensiveWs
    defensiveWs
    winShares
    offensiveBox
    defensiveBox
    vorp
  }
}`

// Totals returns the season's player totals, or an empty slice if the API
// has nothing usable. Only non-empty results are cached.
func (c *Client) Totals(ctx context.Context, s season.Season) []provider.PlayerTotals {
	key := cache.Key{Kind: cache.KindPlayerTotals, Season: s}
	out, err := cache.Through(ctx, c.store, key, c.logger, func(ctx context.Context) ([]provider.PlayerTotals, error) {
		raw, err := c.fetchRecords(ctx, totalsQuery, "playerTotals", s)
		if err != nil {
			return nil, err
		}
		return normalizeTotals(raw, s), nil
	}, nonEmpty[provider.PlayerTotals])
	if err != nil {
		c.logger.Warn("Player totals unavailable", "season", s.Label(), "error", err)
		return []provider.PlayerTotals{}
	}
	return out
}

// Advanced returns the season's player advanced metrics, or an empty slice.
func (c *Client) Advanced(ctx context.Context, s season.Season) []provider.PlayerAdvanced {
	key := cache.Key{Kind: cache.KindPlayerAdvanced, Season: s}
	out, err := cache.Through(ctx, c.store, key, c.logger, func(ctx context.Context) ([]provider.PlayerAdvanced, error) {
		raw, err := c.fetchRecords(ctx, advancedQuery, "playerAdvanced", s)
		if err != nil {
			return nil, err
		}
		return normalizeAdvanced(raw, s), nil
	}, nonEmpty[provider.PlayerAdvanced])
	if err != nil {
		c.logger.Warn("Player advanced stats unavailable", "season", s.Label(), "error", err)
		return []provider.PlayerAdvanced{}
	}
	return out
}

func (c *Client) fetchRecords(ctx context.Context, q, field string, s season.Season) ([]map[string]interface{}, error) {
	data, err := c.query(ctx, q, map[string]interface{}{"season": s.Year()}, field)
	if err != nil {
		return nil, err
	}
	var raw []map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	c.logger.Info("Fetched player records", "field", field, "season", s.Label(), "count", len(raw))
	return raw, nil
}

func nonEmpty[T any](v []T) bool { return len(v) > 0 }

// --------------------------------------------------------------------------
// Normalization
// --------------------------------------------------------------------------

func normalizeTotals(raw []map[string]interface{}, s season.Season) []provider.PlayerTotals {
	out := make([]provider.PlayerTotals, 0, len(raw))
	for _, r := range raw {
		name := provider.CleanName(str(r["playerName"]))
		if name == "" {
			continue
		}
		out = append(out, provider.PlayerTotals{
			Season:       s,
			Player:       name,
			Team:         strings.TrimSpace(str(r["team"])),
			Position:     str(r["position"]),
			Games:        intVal(r["games"]),
			GamesStarted: intVal(r["gamesStarted"]),
			Points:       num(r["points"]),
			Assists:      num(r["assists"]),
			Rebounds:     num(r["totalRb"]),
			Steals:       num(r["steals"]),
			Blocks:       num(r["blocks"]),
			Turnovers:    num(r["turnovers"]),
			EffectiveFG:  num(r["effectFgPercent"]),
		})
	}
	return out
}

func normalizeAdvanced(raw []map[string]interface{}, s season.Season) []provider.PlayerAdvanced {
	out := make([]provider.PlayerAdvanced, 0, len(raw))
	for _, r := range raw {
		name := provider.CleanName(str(r["playerName"]))
		if name == "" {
			continue
		}
		out = append(out, provider.PlayerAdvanced{
			Season:       s,
			Player:       name,
			Team:         strings.TrimSpace(str(r["team"])),
			Position:     str(r["position"]),
			Games:        intVal(r["games"]),
			PER:          num(r["per"]),
			UsagePct:     num(r["usagePercent"]),
			OffensiveWS:  num(r["offensiveWs"]),
			DefensiveWS:  num(r["defensiveWs"]),
			WinShares:    num(r["winShares"]),
			OffensiveBPM: num(r["offensiveBox"]),
			DefensiveBPM: num(r["defensiveBox"]),
			VORP:         num(r["vorp"]),
		})
	}
	return out
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func num(v interface{}) float64 {
	f, _ := provider.ExtractValue(v)
	return f
}

func intVal(v interface{}) int {
	n, _ := provider.ExtractInt(v)
	return n
}
