package domain

// MatrixCell holds the directed travel metrics from one origin to one
// destination. Reachable is false when the provider could not route the pair
// or the batch containing it failed; in that case the metrics are undefined
// and must never be read as zero travel time.
type MatrixCell struct {
	DurationSeconds int
	DistanceMeters  int
	Reachable       bool
}

// TravelMatrix is a dense, directed origins x destinations travel-time table.
// It is owned by a single request's computation and is not shared.
type TravelMatrix struct {
	Origins      []Coordinates
	Destinations []Coordinates
	Cells        [][]MatrixCell
}

func NewTravelMatrix(origins, destinations []Coordinates) *TravelMatrix {
	cells := make([][]MatrixCell, len(origins))
	for i := range cells {
		cells[i] = make([]MatrixCell, len(destinations))
	}
	return &TravelMatrix{
		Origins:      origins,
		Destinations: destinations,
		Cells:        cells,
	}
}

// At returns the cell for origin i and destination j.
func (m *TravelMatrix) At(i, j int) MatrixCell { return m.Cells[i][j] }

// Set stores the cell for origin i and destination j.
func (m *TravelMatrix) Set(i, j int, c MatrixCell) { m.Cells[i][j] = c }

// Column returns all origin cells for destination j, in origin order.
func (m *TravelMatrix) Column(j int) []MatrixCell {
	col := make([]MatrixCell, len(m.Origins))
	for i := range m.Origins {
		col[i] = m.Cells[i][j]
	}
	return col
}

// ColumnReachable reports whether every origin can reach destination j.
func (m *TravelMatrix) ColumnReachable(j int) bool {
	for i := range m.Origins {
		if !m.Cells[i][j].Reachable {
			return false
		}
	}
	return true
}
