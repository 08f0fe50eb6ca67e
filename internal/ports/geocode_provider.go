package ports

import (
	"context"

	"meetingpoint-service/internal/domain"
)

// A single geocoding match for a free-text query.
type GeocodeResult struct {
	Coord      domain.Coordinates
	Confidence float64
	Label      string
}

// Contract for resolving free-text addresses to coordinates.
type GeocodeProvider interface {
	// Search returns candidate matches ordered by provider relevance.
	// An empty result is a normal outcome, not an error.
	Search(ctx context.Context, text string) ([]GeocodeResult, error)
}
