package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound marks a lookup that completed normally but matched nothing
// (e.g. an address with no geocode result). It is distinct from ProviderError:
// callers must be able to tell "no such place" from "try again later".
var ErrNotFound = errors.New("not found")

// InputError reports malformed caller input. Never retried.
type InputError struct {
	Field string
	Msg   string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// ProviderError reports an upstream failure: non-2xx status, malformed
// response, or timeout. Status is zero when no HTTP status applies.
type ProviderError struct {
	Provider string
	Op       string
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Provider, e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// QuotaError reports denial by the rate limiter or outbound throttle. The
// engine never retries these; ResetAt is surfaced to the caller.
type QuotaError struct {
	ResetAt time.Time
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// GeocodeError identifies which origin address failed during resolution, so a
// multi-party request fails fast with an actionable message instead of
// silently dropping a party.
type GeocodeError struct {
	Address string
	Err     error
}

func (e *GeocodeError) Error() string {
	return fmt.Sprintf("geocode %q: %v", e.Address, e.Err)
}

func (e *GeocodeError) Unwrap() error { return e.Err }
