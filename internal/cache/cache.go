// Package cache provides the keyed Cache Store that sits in front of every
// upstream fetch, plus an in-memory TTL cache with ETag support for HTTP
// responses.
//
// Entries never expire by default: historical seasons do not change, and the
// upstream sources rate-limit aggressively, so serving stale data is preferred
// over re-fetching.
package cache

import (
	"context"
	"fmt"

	"github.com/albapepper/hoopscore/internal/season"
)

// Kind namespaces keys by the data they hold.
type Kind string

const (
	KindTeamStandings  Kind = "team-standings"
	KindPlayerTotals   Kind = "player-totals"
	KindPlayerAdvanced Kind = "player-advanced"
	KindPlayerLog      Kind = "player-log"
	KindTeamRoster     Kind = "team-roster"
	KindMVPAwards      Kind = "mvp-awards"
)

// Key identifies one cached record. Entity is empty for season-wide records
// and holds the player or team identifier for per-entity records.
type Key struct {
	Kind   Kind
	Season season.Season
	Entity string
}

// String renders the storage key, e.g. "player-log:2022:203999".
func (k Key) String() string {
	if k.Entity == "" {
		return fmt.Sprintf("%s:%s", k.Kind, k.Season)
	}
	return fmt.Sprintf("%s:%s:%s", k.Kind, k.Season, k.Entity)
}

// Store is a keyed persistent store of raw fetched payloads.
//
// Get returns ok=false on a miss. A non-nil error from Get is a backend
// failure; callers treat it as a miss. Implementations must be safe for
// concurrent use; concurrent Puts of the same key are last-writer-wins.
type Store interface {
	Get(ctx context.Context, key Key) (data []byte, ok bool, err error)
	Put(ctx context.Context, key Key, data []byte) error
}
