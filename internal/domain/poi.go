package domain

// CandidatePOI is a point of interest returned by the places provider,
// considered as a possible meeting destination.
type CandidatePOI struct {
	ID        string
	Name      string
	Coord     Coordinates
	Category  string
	Tags      map[string]string
	Relevance float64
}

// ScoredPOI is a CandidatePOI after fairness scoring, joined to the travel
// matrix column that produced its score.
type ScoredPOI struct {
	POI   CandidatePOI
	Score float64

	// Travel metrics across origins, seconds. Spread is max minus min.
	MeanSeconds   float64
	SpreadSeconds int
	MaxSeconds    int

	// Cells maps origin index to the directed travel cell for this POI.
	Cells []MatrixCell

	// Penalized marks a POI scored under the unreachable-penalty policy.
	Penalized bool
}
