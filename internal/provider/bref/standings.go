package bref

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/albapepper/hoopscore/internal/cache"
	"github.com/albapepper/hoopscore/internal/provider"
	"github.com/albapepper/hoopscore/internal/season"
)

// Conference standings tables; both must be present.
var conferenceTables = []string{"divs_standings_E", "divs_standings_W"}

// Standings returns the season's team records, unranked, in page order
// (Eastern conference first). The result is read through the cache.
func (c *Client) Standings(ctx context.Context, s season.Season) ([]provider.TeamRecord, error) {
	key := cache.Key{Kind: cache.KindTeamStandings, Season: s}
	return cache.Through(ctx, c.store, key, c.logger, func(ctx context.Context) ([]provider.TeamRecord, error) {
		return c.fetchStandings(ctx, s)
	}, nil)
}

func (c *Client) fetchStandings(ctx context.Context, s season.Season) ([]provider.TeamRecord, error) {
	path := fmt.Sprintf("/leagues/NBA_%d_standings.html", s.Year())
	doc, err := c.getDocument(ctx, path, s)
	if err != nil {
		return nil, err
	}

	teams, err := ParseStandings(doc, s, c.logger.Warn)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Fetched standings", "season", s.Label(), "teams", len(teams))
	return teams, nil
}

// ParseStandings extracts team rows from a standings document. A missing
// conference table is a SchemaMismatchError; an unparseable row is reported
// through warn and skipped.
func ParseStandings(doc *goquery.Document, s season.Season, warn func(msg string, args ...any)) ([]provider.TeamRecord, error) {
	var teams []provider.TeamRecord
	for _, id := range conferenceTables {
		table := doc.Find("table#" + id)
		if table.Length() == 0 {
			return nil, &provider.SchemaMismatchError{Source: source, Season: s, Missing: "table#" + id}
		}
		table.Find("tr.full_table").Each(func(_ int, row *goquery.Selection) {
			team, err := parseTeamRow(row, s)
			if err != nil {
				if warn != nil {
					warn("Skipping standings row", "season", s.Label(), "table", id, "error", err)
				}
				return
			}
			teams = append(teams, team)
		})
	}
	if len(teams) == 0 {
		return nil, &provider.SchemaMismatchError{Source: source, Season: s, Missing: "tr.full_table rows"}
	}
	return teams, nil
}

func parseTeamRow(row *goquery.Selection, s season.Season) (provider.TeamRecord, error) {
	link := row.Find("a").First()
	name := strings.TrimSpace(link.Text())
	href, ok := link.Attr("href")
	if name == "" || !ok {
		return provider.TeamRecord{}, fmt.Errorf("team link missing")
	}
	abbr := abbreviationFromHref(href)
	if abbr == "" {
		return provider.TeamRecord{}, fmt.Errorf("team abbreviation missing in %q", href)
	}

	wins, ok := provider.ExtractInt(cell(row, "wins"))
	if !ok || wins < 0 {
		return provider.TeamRecord{}, fmt.Errorf("%s: bad wins %q", abbr, cell(row, "wins"))
	}
	losses, ok := provider.ExtractInt(cell(row, "losses"))
	if !ok || losses < 0 {
		return provider.TeamRecord{}, fmt.Errorf("%s: bad losses %q", abbr, cell(row, "losses"))
	}
	pct, ok := provider.ExtractValue(cell(row, "win_loss_pct"))
	if !ok || pct < 0 || pct > 1 {
		return provider.TeamRecord{}, fmt.Errorf("%s: bad win_loss_pct %q", abbr, cell(row, "win_loss_pct"))
	}

	return provider.TeamRecord{
		Season:       s,
		Abbreviation: abbr,
		Name:         name,
		Wins:         wins,
		Losses:       losses,
		WinPct:       pct,
	}, nil
}

// abbreviationFromHref turns "/teams/BOS/2022.html" into "BOS".
func abbreviationFromHref(href string) string {
	parts := strings.Split(strings.Trim(href, "/"), "/")
	if len(parts) < 2 {
		return ""
	}
	return strings.ToUpper(parts[len(parts)-2])
}

func cell(row *goquery.Selection, stat string) string {
	return strings.TrimSpace(row.Find(`td[data-stat="` + stat + `"]`).Text())
}
