package ratelimit

import (
	"fmt"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Tier is an opaque caller-class label supplied by the auth collaborator.
type Tier string

const (
	TierAnonymous     Tier = "anonymous"
	TierAuthenticated Tier = "authenticated"
	TierElevated      Tier = "elevated"
)

// TierConfig is the admission quota for one caller class. Limit <= 0 means
// unlimited.
type TierConfig struct {
	Limit  int
	Window time.Duration
}

// Decision is the structured outcome of an admission check. Denials are
// results, not errors; ResetAt lets callers surface a Retry-After.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type record struct {
	count       int
	windowStart time.Time
}

// Limiter performs fixed-window admission control per caller key and tier.
// Counting runs inside the shard lock of the concurrent map, so the increment
// is atomic with the decision: concurrent requests for the same key cannot
// both take the last slot.
//
// Expired records are reset lazily on access and swept opportunistically once
// the key population exceeds maxKeys, so the map stays bounded under
// sustained traffic from many distinct callers.
type Limiter struct {
	tiers   map[Tier]TierConfig
	maxKeys int
	records cmap.ConcurrentMap[string, record]
	now     func() time.Time
}

func NewLimiter(tiers map[Tier]TierConfig, maxKeys int) *Limiter {
	if maxKeys <= 0 {
		maxKeys = 10000
	}
	return &Limiter{
		tiers:   tiers,
		maxKeys: maxKeys,
		records: cmap.New[record](),
		now:     time.Now,
	}
}

// Admit checks and consumes one request slot for key under the given tier.
// Unknown tiers fall back to the anonymous quota and count against the
// anonymous record: the tier label is caller-supplied, so an unrecognized
// label must not open a fresh window for the same key.
func (l *Limiter) Admit(key string, tier Tier) Decision {
	cfg, ok := l.tiers[tier]
	if !ok {
		cfg = l.tiers[TierAnonymous]
		tier = TierAnonymous
	}

	now := l.now()

	if cfg.Limit <= 0 {
		return Decision{Allowed: true, Limit: 0, Remaining: -1, ResetAt: now}
	}

	var d Decision
	l.records.Upsert(tierKey(key, tier), record{}, func(exists bool, cur record, _ record) record {
		if !exists || now.Sub(cur.windowStart) >= cfg.Window {
			cur = record{count: 0, windowStart: now}
		}

		resetAt := cur.windowStart.Add(cfg.Window)
		if cur.count >= cfg.Limit {
			d = Decision{Allowed: false, Limit: cfg.Limit, Remaining: 0, ResetAt: resetAt}
			return cur
		}

		cur.count++
		d = Decision{
			Allowed:   true,
			Limit:     cfg.Limit,
			Remaining: cfg.Limit - cur.count,
			ResetAt:   resetAt,
		}
		return cur
	})

	if l.records.Count() > l.maxKeys {
		l.compact(now)
	}

	return d
}

// compact removes records whose window has fully elapsed for every tier. The
// longest configured window is the safe staleness horizon.
func (l *Limiter) compact(now time.Time) {
	var horizon time.Duration
	for _, cfg := range l.tiers {
		if cfg.Window > horizon {
			horizon = cfg.Window
		}
	}

	stale := make([]string, 0)
	l.records.IterCb(func(key string, rec record) {
		if now.Sub(rec.windowStart) >= horizon {
			stale = append(stale, key)
		}
	})
	for _, key := range stale {
		l.records.Remove(key)
	}
}

func tierKey(key string, tier Tier) string {
	return fmt.Sprintf("%s:%s", tier, key)
}
