package nbastats

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/albapepper/hoopscore/internal/cache"
	"github.com/albapepper/hoopscore/internal/provider"
	"github.com/albapepper/hoopscore/internal/season"
)

// Teams maps the league's static team IDs to abbreviations.
var Teams = map[int]string{
	1610612737: "ATL", 1610612738: "BOS", 1610612739: "CLE", 1610612740: "NOP",
	1610612741: "CHI", 1610612742: "DAL", 1610612743: "DEN", 1610612744: "GSW",
	1610612745: "HOU", 1610612746: "LAC", 1610612747: "LAL", 1610612748: "MIA",
	1610612749: "MIL", 1610612750: "MIN", 1610612751: "BKN", 1610612752: "NYK",
	1610612753: "ORL", 1610612754: "IND", 1610612755: "PHI", 1610612756: "PHX",
	1610612757: "POR", 1610612758: "SAC", 1610612759: "SAS", 1610612760: "OKC",
	1610612761: "TOR", 1610612762: "UTA", 1610612763: "MEM", 1610612764: "WAS",
	1610612765: "DET", 1610612766: "CHA",
}

// RosterEntry is one player on a team roster.
type RosterEntry struct {
	PlayerID int    `json:"player_id"`
	Player   string `json:"player"`
	Team     string `json:"team"`
}

// Roster returns a team's roster for the season. Cached per team.
func (c *Client) Roster(ctx context.Context, s season.Season, teamID int) ([]RosterEntry, error) {
	key := cache.Key{Kind: cache.KindTeamRoster, Season: s, Entity: strconv.Itoa(teamID)}
	return cache.Through(ctx, c.store, key, c.logger, func(ctx context.Context) ([]RosterEntry, error) {
		params := url.Values{}
		params.Set("TeamID", strconv.Itoa(teamID))
		params.Set("Season", s.Label())
		rs, err := c.get(ctx, "commonteamroster", params, s)
		if err != nil {
			return nil, err
		}

		abbr := Teams[teamID]
		var out []RosterEntry
		for _, row := range rs.rows() {
			id, ok := provider.ExtractInt(row["PLAYER_ID"])
			name, _ := row["PLAYER"].(string)
			if !ok || name == "" {
				continue
			}
			out = append(out, RosterEntry{PlayerID: id, Player: provider.CleanName(name), Team: abbr})
		}
		return out, nil
	}, func(v []RosterEntry) bool { return len(v) > 0 })
}

// GameLog averages a player's regular-season game log into points per game.
// Cached per player.
func (c *Client) GameLog(ctx context.Context, s season.Season, p RosterEntry) (provider.GameLogSummary, error) {
	key := cache.Key{Kind: cache.KindPlayerLog, Season: s, Entity: strconv.Itoa(p.PlayerID)}
	return cache.Through(ctx, c.store, key, c.logger, func(ctx context.Context) (provider.GameLogSummary, error) {
		params := url.Values{}
		params.Set("PlayerID", strconv.Itoa(p.PlayerID))
		params.Set("Season", s.Label())
		params.Set("SeasonType", "Regular Season")
		rs, err := c.get(ctx, "playergamelog", params, s)
		if err != nil {
			return provider.GameLogSummary{}, err
		}

		var games int
		var points float64
		for _, row := range rs.rows() {
			pts, ok := provider.ExtractValue(row["PTS"])
			if !ok {
				continue
			}
			games++
			points += pts
		}
		summary := provider.GameLogSummary{
			Season:   s,
			PlayerID: p.PlayerID,
			Player:   p.Player,
			Team:     p.Team,
			Games:    games,
		}
		if games > 0 {
			summary.PPG = math.Round(points/float64(games)*100) / 100
		}
		return summary, nil
	}, func(v provider.GameLogSummary) bool { return v.Games > 0 })
}

// Players lists every rostered player for the season, one entry per player
// ID. Teams whose roster cannot be fetched are logged and skipped.
func (c *Client) Players(ctx context.Context, s season.Season) ([]RosterEntry, error) {
	ids := make([]int, 0, len(Teams))
	for id := range Teams {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	rosters := make([][]RosterEntry, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, id := range ids {
		g.Go(func() error {
			roster, err := c.Roster(gctx, s, id)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c.logger.Warn("Error fetching roster", "team", Teams[id], "season", s.Label(), "error", err)
				return nil
			}
			rosters[i] = roster
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	var out []RosterEntry
	for _, roster := range rosters {
		for _, p := range roster {
			if seen[p.PlayerID] {
				continue
			}
			seen[p.PlayerID] = true
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no rosters available for season %s", source, s.Label())
	}
	return out, nil
}

// Leaders returns the topN players by game-log points per game. Per-player
// failures are logged and skipped; ties keep roster order.
func (c *Client) Leaders(ctx context.Context, s season.Season, topN int) ([]provider.GameLogSummary, error) {
	if topN <= 0 {
		return nil, errors.New("topN must be positive")
	}
	players, err := c.Players(ctx, s)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		results = make([]*provider.GameLogSummary, len(players))
		failed  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, p := range players {
		g.Go(func() error {
			summary, err := c.GameLog(gctx, s, p)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c.logger.Warn("Error fetching game log", "player", p.Player, "season", s.Label(), "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			if summary.Games > 0 {
				results[i] = &summary
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]provider.GameLogSummary, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PPG > out[j].PPG })
	if len(out) > topN {
		out = out[:topN]
	}

	c.logger.Info("Computed scoring leaders", "season", s.Label(),
		"players", len(players), "failed", failed, "returned", len(out))
	return out, nil
}
