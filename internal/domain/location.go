package domain

// A user-supplied starting location. The address is the raw input; the
// coordinate and resolution metadata are populated by geocoding and never
// mutated after matrix computation begins for a request.
type Location struct {
	Address    string
	Coord      *Coordinates
	Provider   string
	Confidence float64
}

// Resolved reports whether the location has been geocoded.
func (l Location) Resolved() bool { return l.Coord != nil }
