package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"meetingpoint-service/internal/platform/obs"
)

// ErrThrottleClosed is returned for work submitted after Close.
var ErrThrottleClosed = errors.New("throttle closed")

type unit struct {
	ctx  context.Context
	fn   func(context.Context) error
	errc chan error
}

// Throttle serializes outbound calls to a single upstream provider. Work is
// dispatched in FIFO order by one drain goroutine, with a mandatory minimum
// spacing after each completed call, regardless of how many internal callers
// are waiting.
//
// An item whose context is cancelled before dispatch is skipped and never
// executes. An item already dispatched runs to completion under a detached
// context so its result can still populate the cache even if the original
// requester gave up.
type Throttle struct {
	provider    string
	spacing     time.Duration
	callTimeout time.Duration
	queue       chan *unit
	done        chan struct{}
	closeOnce   sync.Once
	logger      zerolog.Logger
}

func NewThrottle(provider string, spacing, callTimeout time.Duration, queueSize int, logger zerolog.Logger) *Throttle {
	if queueSize <= 0 {
		queueSize = 256
	}
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	t := &Throttle{
		provider:    provider,
		spacing:     spacing,
		callTimeout: callTimeout,
		queue:       make(chan *unit, queueSize),
		done:        make(chan struct{}),
		logger:      logger.With().Str("provider", provider).Logger(),
	}
	go t.drain()
	return t
}

// Do enqueues fn and blocks until it has run, was skipped due to ctx
// cancellation, or the throttle closed. fn executes at most once.
func (t *Throttle) Do(ctx context.Context, fn func(context.Context) error) error {
	u := &unit{ctx: ctx, fn: fn, errc: make(chan error, 1)}

	select {
	case t.queue <- u:
		obs.ThrottleQueueDepth.WithLabelValues(t.provider).Set(float64(len(t.queue)))
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
		return ErrThrottleClosed
	}

	select {
	case err := <-u.errc:
		return err
	case <-ctx.Done():
		// The drain will skip this item when it reaches it; errc is
		// buffered, so its send cannot block.
		return ctx.Err()
	case <-t.done:
		return ErrThrottleClosed
	}
}

// Close stops the drain goroutine. Pending items are abandoned and their
// callers unblocked with ErrThrottleClosed.
func (t *Throttle) Close() {
	t.closeOnce.Do(func() { close(t.done) })
}

func (t *Throttle) drain() {
	for {
		select {
		case <-t.done:
			return
		case u := <-t.queue:
			obs.ThrottleQueueDepth.WithLabelValues(t.provider).Set(float64(len(t.queue)))
			// Skip items whose caller abandoned interest before dispatch.
			// Skips do not consume spacing.
			if err := u.ctx.Err(); err != nil {
				u.errc <- err
				continue
			}

			callCtx, cancel := context.WithTimeout(context.WithoutCancel(u.ctx), t.callTimeout)
			start := time.Now()
			err := u.fn(callCtx)
			cancel()

			if err != nil {
				t.logger.Debug().Err(err).Dur("dur", time.Since(start)).Msg("throttled call failed")
			}
			u.errc <- err

			select {
			case <-time.After(t.spacing):
			case <-t.done:
				return
			}
		}
	}
}
