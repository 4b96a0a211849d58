package bref

import (
	"context"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/albapepper/hoopscore/internal/cache"
	"github.com/albapepper/hoopscore/internal/provider"
	"github.com/albapepper/hoopscore/internal/season"
)

// MVPAwards returns the NBA MVP winner per season. The whole history is one
// page, cached under the season 0 key.
func (c *Client) MVPAwards(ctx context.Context) (map[season.Season]string, error) {
	key := cache.Key{Kind: cache.KindMVPAwards}
	return cache.Through(ctx, c.store, key, c.logger, func(ctx context.Context) (map[season.Season]string, error) {
		doc, err := c.getDocument(ctx, "/awards/mvp.html", 0)
		if err != nil {
			return nil, err
		}
		return ParseMVPAwards(doc)
	}, func(m map[season.Season]string) bool { return len(m) > 0 })
}

// MVP returns the season's MVP, or "" if the award history does not cover it.
func (c *Client) MVP(ctx context.Context, s season.Season) (string, error) {
	awards, err := c.MVPAwards(ctx)
	if err != nil {
		return "", err
	}
	return awards[s], nil
}

// ParseMVPAwards reads table#mvp_NBA. Each row links to its league season page
// ("/leagues/NBA_2022.html"); the player column carries the winner.
func ParseMVPAwards(doc *goquery.Document) (map[season.Season]string, error) {
	table := doc.Find("table#mvp_NBA")
	if table.Length() == 0 {
		return nil, &provider.SchemaMismatchError{Source: source, Missing: "table#mvp_NBA"}
	}

	awards := make(map[season.Season]string)
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		s, ok := seasonFromLeagueLink(row)
		if !ok {
			return
		}
		player := strings.TrimSpace(row.Find(`td[data-stat="player"]`).Text())
		if player == "" {
			player = strings.TrimSpace(row.Find("td").Eq(1).Text())
		}
		if player != "" {
			awards[s] = provider.CleanName(player)
		}
	})
	return awards, nil
}

func seasonFromLeagueLink(row *goquery.Selection) (season.Season, bool) {
	href, ok := row.Find(`a[href*="/leagues/NBA_"]`).First().Attr("href")
	if !ok {
		return 0, false
	}
	// "/leagues/NBA_2022.html" -> "2022"
	name := href[strings.LastIndex(href, "/")+1:]
	name = strings.TrimSuffix(strings.TrimPrefix(name, "NBA_"), ".html")
	y, err := strconv.Atoi(name)
	if err != nil {
		return 0, false
	}
	s, err := season.FromYear(y)
	return s, err == nil
}
