package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"

	"meetingpoint-service/internal/platform/obs"
	"meetingpoint-service/internal/ports"
)

// Loader sits in front of every external call: cache-aside reads with
// request coalescing. Concurrent duplicate requests for the same missing key
// collapse into a single upstream call whose result (or failure) is shared by
// all waiters. Failures are never written to the store, so the next caller
// may retry immediately.
//
// Store errors degrade to a miss rather than failing the request; a broken
// cache backend costs upstream quota, not availability.
type Loader struct {
	store      ports.Store
	defaultTTL time.Duration
	group      singleflight.Group
	logger     zerolog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

func NewLoader(store ports.Store, defaultTTL time.Duration, logger zerolog.Logger) *Loader {
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	return &Loader{store: store, defaultTTL: defaultTTL, logger: logger}
}

// DefaultTTL is the TTL applied when GetOrCompute is called with ttl <= 0.
func (l *Loader) DefaultTTL() time.Duration { return l.defaultTTL }

// Stats returns cumulative hit and miss counts.
func (l *Loader) Stats() (hits, misses int64) {
	return l.hits.Load(), l.misses.Load()
}

// GetOrCompute returns the cached value for key, or runs compute through the
// coalescing group and caches its successful result for ttl.
func GetOrCompute[T any](ctx context.Context, l *Loader, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	var zero T

	if ttl <= 0 {
		ttl = l.defaultTTL
	}
	keyspace := keyspaceOf(key)

	v, err, _ := l.group.Do(key, func() (any, error) {
		raw, ok, err := l.store.Get(ctx, key)
		if err != nil {
			l.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		}
		if ok {
			var out T
			if err := json.Unmarshal(raw, &out); err == nil {
				l.hits.Inc()
				obs.CacheHits.WithLabelValues(keyspace).Inc()
				return out, nil
			}
			l.logger.Warn().Str("key", key).Msg("cache entry undecodable, recomputing")
		}

		l.misses.Inc()
		obs.CacheMisses.WithLabelValues(keyspace).Inc()

		out, err := compute(ctx)
		if err != nil {
			return zero, err
		}

		raw, err = json.Marshal(out)
		if err != nil {
			return zero, fmt.Errorf("marshal cache value %q: %w", key, err)
		}
		if err := l.store.Set(ctx, key, raw, ttl); err != nil {
			l.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
		return out, nil
	})
	if err != nil {
		return zero, err
	}

	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache value for %q has unexpected type", key)
	}
	return out, nil
}

func keyspaceOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "other"
}
