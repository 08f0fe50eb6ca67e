package dto

import "time"

type Origin struct {
	Address string   `json:"address,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

type ComputeRequest struct {
	Origins      []Origin `json:"origins"`
	Category     string   `json:"category,omitempty"`
	RadiusMeters int      `json:"radius_meters,omitempty"`
	MaxResults   int      `json:"max_results,omitempty"`
}

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type ResolvedOrigin struct {
	Address    string     `json:"address,omitempty"`
	Coord      Coordinate `json:"coord"`
	Provider   string     `json:"provider,omitempty"`
	Confidence float64    `json:"confidence,omitempty"`
}

type TravelCell struct {
	OriginIndex     int  `json:"origin_index"`
	DurationSeconds int  `json:"duration_seconds"`
	DistanceMeters  int  `json:"distance_meters"`
	Reachable       bool `json:"reachable"`
}

type ScoredPOI struct {
	ID            string       `json:"id"`
	Name          string       `json:"name,omitempty"`
	Category      string       `json:"category,omitempty"`
	Coord         Coordinate   `json:"coord"`
	Score         float64      `json:"score"`
	MeanSeconds   float64      `json:"mean_seconds"`
	SpreadSeconds int          `json:"spread_seconds"`
	Penalized     bool         `json:"penalized,omitempty"`
	Travel        []TravelCell `json:"travel"`
}

type ComputeResponse struct {
	Midpoint   Coordinate       `json:"midpoint"`
	Origins    []ResolvedOrigin `json:"origins"`
	RankedPOIs []ScoredPOI      `json:"ranked_pois"`
	Warnings   []string         `json:"warnings,omitempty"`
}

type SearchRecord struct {
	ID        string     `json:"id"`
	Addresses []string   `json:"addresses"`
	Midpoint  Coordinate `json:"midpoint"`
	CreatedAt time.Time  `json:"created_at"`
}

type ListSearchesResponse struct {
	Searches []SearchRecord `json:"searches"`
}
