package ports

import (
	"context"
	"time"

	"meetingpoint-service/internal/domain"
)

// A persisted meeting-point search, stored as opaque engine output.
type SearchRecord struct {
	ID        string
	Addresses []string
	Midpoint  domain.Coordinates
	CreatedAt time.Time
}

// Contract for recording and listing past searches.
type SearchRepository interface {
	SaveSearch(ctx context.Context, rec SearchRecord) error
	ListSearches(ctx context.Context, limit int) ([]SearchRecord, error)
}
