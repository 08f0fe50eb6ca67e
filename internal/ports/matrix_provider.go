package ports

import (
	"context"

	"meetingpoint-service/internal/domain"
)

// One origin->destination result from a matrix call. Nil metrics mean the
// provider could not route the pair.
type MatrixEntry struct {
	DurationSeconds *int
	DistanceMeters  *int
}

// Contract for retrieving a directed travel duration/distance grid.
type MatrixProvider interface {
	// Matrix returns a grid indexed [origin][destination] matching the input
	// order. The total coordinate count per call must not exceed MaxLocations.
	Matrix(ctx context.Context, origins, destinations []domain.Coordinates, profile string) ([][]MatrixEntry, error)

	// MaxLocations is the provider's documented cap on coordinates per call.
	MaxLocations() int
}
