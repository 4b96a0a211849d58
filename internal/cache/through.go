package cache

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/albapepper/hoopscore/internal/metrics"
)

// Through is the read-through path every fetcher goes through: check the
// store, and on a miss call fetch and write the result back.
//
// A backend error or an entry that does not decode into T counts as a miss.
// A failed write-back is logged and does not fail the fetch. cacheable, if
// non-nil, decides whether a fetched value is worth storing (e.g. skip empty
// results so a lagging upstream is retried next time).
//
// No lock is held while fetch runs; two concurrent misses on the same key both
// fetch and both write, which is fine because the values are equivalent.
func Through[T any](
	ctx context.Context,
	store Store,
	key Key,
	logger *slog.Logger,
	fetch func(context.Context) (T, error),
	cacheable func(T) bool,
) (T, error) {
	if logger == nil {
		logger = slog.Default()
	}
	kind := string(key.Kind)

	if store != nil {
		data, ok, err := store.Get(ctx, key)
		switch {
		case err != nil:
			metrics.CacheLookups.WithLabelValues(kind, "error").Inc()
			logger.Warn("Cache read failed, treating as miss", "key", key.String(), "error", err)
		case ok:
			var v T
			decodeErr := json.Unmarshal(data, &v)
			if decodeErr == nil {
				metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
				return v, nil
			}
			metrics.CacheLookups.WithLabelValues(kind, "corrupt").Inc()
			logger.Warn("Corrupt cache entry, treating as miss", "key", key.String(), "error", decodeErr)
		default:
			metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
		}
	}

	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}
	if store == nil || (cacheable != nil && !cacheable(v)) {
		return v, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		logger.Warn("Cache encode failed", "key", key.String(), "error", err)
		return v, nil
	}
	if err := store.Put(ctx, key, data); err != nil {
		logger.Warn("Cache write failed", "key", key.String(), "error", err)
	}
	return v, nil
}
