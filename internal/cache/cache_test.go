package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyNamespacing(t *testing.T) {
	a := Key{Kind: KindTeamStandings, Season: 2022}
	b := Key{Kind: KindPlayerTotals, Season: 2022}
	c := Key{Kind: KindPlayerLog, Season: 2022, Entity: "203999"}

	assert.Equal(t, "team-standings:2022", a.String())
	assert.Equal(t, "player-log:2022:203999", c.String())
	assert.NotEqual(t, a.String(), b.String())
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(true, 0)
	key := Key{Kind: KindTeamStandings, Season: 2022}

	_, ok, err := m.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Put(ctx, key, []byte(`[{"wins":50}]`)))
	data, ok, err := m.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"wins":50}]`, string(data))
}

func TestMemoryDisabled(t *testing.T) {
	m := NewMemory(false, 0)
	m.Set("k", []byte("v"), time.Hour)
	_, _, ok := m.Lookup("k")
	assert.False(t, ok)
}

func TestMemoryTTL(t *testing.T) {
	m := NewMemory(true, 0)
	m.Set("short", []byte("v"), time.Millisecond)
	m.Set("forever", []byte("v"), 0)
	time.Sleep(5 * time.Millisecond)

	_, _, ok := m.Lookup("short")
	assert.False(t, ok)
	_, _, ok = m.Lookup("forever")
	assert.True(t, ok)

	m.Sweep()
	assert.Equal(t, 1, m.Len())
}

func TestMemoryEvictsOldest(t *testing.T) {
	m := NewMemory(true, 2)
	m.Set("a", []byte("1"), 0)
	m.Set("b", []byte("2"), 0)
	m.Set("a", []byte("1b"), 0) // overwrite does not evict
	assert.Equal(t, 2, m.Len())

	m.Set("c", []byte("3"), 0)
	assert.Equal(t, 2, m.Len())
	_, _, ok := m.Lookup("b")
	assert.False(t, ok, "oldest insert should be evicted")
	_, _, ok = m.Lookup("c")
	assert.True(t, ok)
}

func TestETag(t *testing.T) {
	m := NewMemory(true, 0)
	etag := m.Set("k", []byte(`{"a":1}`), time.Minute)
	_, got, ok := m.Lookup("k")
	require.True(t, ok)
	assert.Equal(t, etag, got)
	assert.True(t, CheckETagMatch(etag, etag))
	assert.True(t, CheckETagMatch("*", etag))
	assert.False(t, CheckETagMatch("", etag))
	assert.False(t, CheckETagMatch(`W/"other"`, etag))
}

func TestMemoryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(true, 0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := Key{Kind: KindPlayerLog, Season: 2022, Entity: fmt.Sprint(i % 5)}
			_ = m.Put(ctx, key, []byte(`{"ppg":1}`))
			_, _, _ = m.Get(ctx, key)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 5, m.Len())
}

// --------------------------------------------------------------------------
// Through
// --------------------------------------------------------------------------

type failingStore struct{}

func (failingStore) Get(context.Context, Key) ([]byte, bool, error) {
	return nil, false, errors.New("backend down")
}
func (failingStore) Put(context.Context, Key, []byte) error { return errors.New("backend down") }

type record struct {
	Wins int `json:"wins"`
}

func TestThroughPopulatesOnMiss(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(true, 0)
	key := Key{Kind: KindTeamStandings, Season: 2022}
	var calls int32

	fetch := func(context.Context) ([]record, error) {
		atomic.AddInt32(&calls, 1)
		return []record{{Wins: 50}}, nil
	}

	got, err := Through(ctx, m, key, nil, fetch, nil)
	require.NoError(t, err)
	assert.Equal(t, []record{{Wins: 50}}, got)

	got, err = Through(ctx, m, key, nil, fetch, nil)
	require.NoError(t, err)
	assert.Equal(t, []record{{Wins: 50}}, got)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second read must be served from the store")
}

func TestThroughCorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(true, 0)
	key := Key{Kind: KindTeamStandings, Season: 2022}
	require.NoError(t, m.Put(ctx, key, []byte("{not json")))

	got, err := Through(ctx, m, key, nil, func(context.Context) ([]record, error) {
		return []record{{Wins: 42}}, nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, got[0].Wins)

	data, ok, _ := m.Get(ctx, key)
	require.True(t, ok)
	assert.JSONEq(t, `[{"wins":42}]`, string(data), "corrupt entry should be replaced")
}

func TestThroughBackendErrorIsMiss(t *testing.T) {
	got, err := Through(context.Background(), failingStore{}, Key{Kind: KindPlayerTotals, Season: 2022}, nil,
		func(context.Context) ([]record, error) { return []record{{Wins: 1}}, nil }, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestThroughFetchErrorNotCached(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(true, 0)
	key := Key{Kind: KindTeamStandings, Season: 2022}

	_, err := Through(ctx, m, key, nil, func(context.Context) ([]record, error) {
		return nil, errors.New("upstream 503")
	}, nil)
	require.Error(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestThroughSkipsUncacheable(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(true, 0)
	key := Key{Kind: KindPlayerTotals, Season: 2022}
	nonEmpty := func(v []record) bool { return len(v) > 0 }

	_, err := Through(ctx, m, key, nil, func(context.Context) ([]record, error) { return nil, nil }, nonEmpty)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
}
