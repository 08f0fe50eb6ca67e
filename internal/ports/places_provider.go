package ports

import (
	"context"

	"meetingpoint-service/internal/domain"
)

// Contract for finding candidate points of interest around a center.
type PlacesProvider interface {
	// SearchPOIs returns POIs within radiusMeters of center, ordered by
	// provider relevance. category may be empty for all categories.
	SearchPOIs(ctx context.Context, center domain.Coordinates, radiusMeters int, category string) ([]domain.CandidatePOI, error)
}
