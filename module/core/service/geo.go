package service

import (
	"math"

	"github.com/fleetpipe/fleetpipe/module/core/domain"
)

const earthRadiusMeters = 6371000

// distanceMeters is the haversine great-circle distance. Invalid
// coordinates propagate NaN; callers must not feed them.
func distanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func inCircle(lat, lon float64, center domain.GeoPoint, radiusM float64) bool {
	return distanceMeters(lat, lon, center.Lat, center.Lon) <= radiusM
}

// inPolygon runs even-odd ray casting over an open vertex ring. The edge
// from the last vertex back to the first is implicit.
func inPolygon(lat, lon float64, ring []domain.GeoPoint) bool {
	if len(ring) == 0 {
		return false
	}

	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		vi, vj := ring[i], ring[j]
		if (vi.Lon > lon) != (vj.Lon > lon) &&
			lat < (vj.Lat-vi.Lat)*(lon-vi.Lon)/(vj.Lon-vi.Lon)+vi.Lat {
			inside = !inside
		}
		j = i
	}
	return inside
}
