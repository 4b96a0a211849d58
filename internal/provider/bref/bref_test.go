package bref

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/hoopscore/internal/cache"
	"github.com/albapepper/hoopscore/internal/provider"
	"github.com/albapepper/hoopscore/internal/season"
)

const standingsHTML = `<html><body>
<table id="divs_standings_E"><tbody>
<tr class="thead"><th>Atlantic Division</th></tr>
<tr class="full_table"><th><a href="/teams/BOS/2022.html">Boston Celtics</a>*</th>
  <td data-stat="wins">51</td><td data-stat="losses">31</td><td data-stat="win_loss_pct">.622</td></tr>
<tr class="full_table"><th><a href="/teams/MIA/2022.html">Miami Heat</a>*</th>
  <td data-stat="wins">53</td><td data-stat="losses">29</td><td data-stat="win_loss_pct">.646</td></tr>
<tr class="full_table"><th><a href="/teams/XXX/2022.html">Broken Row</a></th>
  <td data-stat="wins"></td><td data-stat="losses">29</td><td data-stat="win_loss_pct">.646</td></tr>
</tbody></table>
<!--
<table id="divs_standings_W"><tbody>
<tr class="full_table"><th><a href="/teams/PHO/2022.html">Phoenix Suns</a>*</th>
  <td data-stat="wins">64</td><td data-stat="losses">18</td><td data-stat="win_loss_pct">.780</td></tr>
</tbody></table>
-->
</body></html>`

const mvpHTML = `<html><body><table id="mvp_NBA"><tbody>
<tr><th><a href="/leagues/NBA_2022.html">2021-22</a></th><td><a href="/leagues/NBA_2022.html">NBA</a></td>
  <td data-stat="player"><a href="/players/j/jokicni01.html">Nikola Jokić</a></td></tr>
<tr><th><a href="/leagues/NBA_1998.html">1997-98</a></th><td><a href="/leagues/NBA_1998.html">NBA</a></td>
  <td data-stat="player">Michael Jordan*</td></tr>
<tr><th>no link</th><td>NBA</td><td data-stat="player">Nobody</td></tr>
</tbody></table></body></html>`

func newTestClient(t *testing.T, h http.HandlerFunc, store cache.Store) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Options{
		BaseURL:           srv.URL,
		RequestsPerMinute: 60000,
		Backoff:           time.Millisecond,
		Store:             store,
	})
}

func TestStandingsParsesBothConferences(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/leagues/NBA_2022_standings.html", r.URL.Path)
		w.Write([]byte(standingsHTML))
	}, nil)

	teams, err := c.Standings(context.Background(), season.MustParse("2021-22"))
	require.NoError(t, err)
	require.Len(t, teams, 3, "broken row is skipped")

	assert.Equal(t, "BOS", teams[0].Abbreviation)
	assert.Equal(t, "Boston Celtics", teams[0].Name)
	assert.Equal(t, 51, teams[0].Wins)
	assert.Equal(t, 31, teams[0].Losses)
	assert.InDelta(t, 0.622, teams[0].WinPct, 1e-9)
	assert.Equal(t, season.Season(2022), teams[0].Season)
	assert.Equal(t, "PHO", teams[2].Abbreviation, "commented-out western table is still read")
}

func TestStandingsRetriesRateLimitOnce(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(standingsHTML))
	}, nil)

	teams, err := c.Standings(context.Background(), 2022)
	require.NoError(t, err)
	assert.Len(t, teams, 3)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestStandingsSecondRateLimitIsTerminal(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}, nil)

	_, err := c.Standings(context.Background(), 2022)
	require.Error(t, err)

	var fe *provider.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusTooManyRequests, fe.Status)
	assert.Equal(t, season.Season(2022), fe.Season)
	assert.ErrorIs(t, err, provider.ErrRateLimited)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "exactly one retry")
}

func TestStandingsOtherStatusFailsImmediately(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}, nil)

	_, err := c.Standings(context.Background(), 2000)
	var fe *provider.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.Status)
	assert.Contains(t, err.Error(), "1999-00")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestStandingsMissingTableIsSchemaMismatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><table id="divs_standings_E"></table></html>`))
	}, nil)

	_, err := c.Standings(context.Background(), 2022)
	require.Error(t, err)
	assert.True(t, provider.IsSchemaMismatch(err))
	assert.False(t, provider.IsFetchError(err))
	assert.Contains(t, err.Error(), "divs_standings_W")
}

func TestStandingsReadThroughCache(t *testing.T) {
	var calls int32
	store := cache.NewMemory(true, 0)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(standingsHTML))
	}, store)

	first, err := c.Standings(context.Background(), 2022)
	require.NoError(t, err)
	second, err := c.Standings(context.Background(), 2022)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	_, ok, _ := store.Get(context.Background(), cache.Key{Kind: cache.KindTeamStandings, Season: 2022})
	assert.True(t, ok)
}

func TestStandingsCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()
	c := NewClient(Options{BaseURL: srv.URL, RequestsPerMinute: 60000, Backoff: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Standings(ctx, 2022)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestParseMVPAwards(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(mvpHTML))
	require.NoError(t, err)

	awards, err := ParseMVPAwards(doc)
	require.NoError(t, err)
	assert.Len(t, awards, 2)
	assert.Equal(t, "Nikola Jokić", awards[2022])
	assert.Equal(t, "Michael Jordan", awards[1998])
}

func TestMVPLookup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/awards/mvp.html", r.URL.Path)
		w.Write([]byte(mvpHTML))
	}, cache.NewMemory(true, 0))

	mvp, err := c.MVP(context.Background(), 2022)
	require.NoError(t, err)
	assert.Equal(t, "Nikola Jokić", mvp)

	mvp, err = c.MVP(context.Background(), 2030)
	require.NoError(t, err)
	assert.Empty(t, mvp)
}

func TestAbbreviationFromHref(t *testing.T) {
	assert.Equal(t, "BOS", abbreviationFromHref("/teams/BOS/2022.html"))
	assert.Equal(t, "", abbreviationFromHref("bos"))
}
