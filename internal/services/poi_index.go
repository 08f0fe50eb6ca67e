package services

import (
	"math"

	"github.com/dhconnelly/rtreego"

	"meetingpoint-service/internal/domain"
)

type poiEntry struct {
	poi  domain.CandidatePOI
	rect rtreego.Rect
}

func (e *poiEntry) Bounds() rtreego.Rect { return e.rect }

// DedupePOIs drops POIs within radiusM meters of an earlier one, keeping the
// provider's relevance order. Overlapping region queries routinely return the
// same venue under slightly different coordinates; an r-tree keeps the
// proximity check from going quadratic on dense areas.
func DedupePOIs(pois []domain.CandidatePOI, radiusM int) []domain.CandidatePOI {
	if radiusM <= 0 || len(pois) < 2 {
		return pois
	}

	tree := rtreego.NewTree(2, 4, 8)
	out := make([]domain.CandidatePOI, 0, len(pois))

	for _, poi := range pois {
		// Degree tolerance generous enough to cover radiusM at this latitude.
		tol := float64(radiusM) / (metersPerDegreeLat * math.Cos(poi.Coord.Lat*math.Pi/180))
		if latTol := float64(radiusM) / metersPerDegreeLat; latTol > tol {
			tol = latTol
		}

		point := rtreego.Point{poi.Coord.Lat, poi.Coord.Lon}
		rect := point.ToRect(tol)

		dup := false
		for _, hit := range tree.SearchIntersect(rect) {
			near := hit.(*poiEntry)
			if distanceMeters(poi.Coord, near.poi.Coord) <= float64(radiusM) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}

		tree.Insert(&poiEntry{poi: poi, rect: rect})
		out = append(out, poi)
	}

	return out
}
