package analysis

import (
	"math"
	"time"

	"github.com/seismowatch/seismo-alert/internal/catalog"
)

// Defaults for the spatio-temporal clustering scan.
const (
	DefaultRadiusKm    = 50.0
	DefaultWindowHours = 72.0
)

const earthRadiusKm = 6371.0

// ClusteringCoefficient computes the fraction of unordered event pairs
// that are simultaneously within radiusKm (great-circle distance) and
// windowHours of each other. The result lies in [0, 1]; a catalog of
// fewer than 2 events yields 0.
//
// The scan is quadratic in catalog size by design: catalogs are bounded by
// provider query limits, and the pairwise contract is the point.
func ClusteringCoefficient(c catalog.Catalog, radiusKm, windowHours float64) float64 {
	n := c.Len()
	if n < 2 {
		return 0.0
	}

	events := c.Events()
	window := time.Duration(windowHours * float64(time.Hour))
	clustered := 0

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			timeDiff := events[i].Time.Sub(events[j].Time)
			if timeDiff < 0 {
				timeDiff = -timeDiff
			}
			if timeDiff > window {
				continue
			}
			dist := HaversineKm(
				events[i].Latitude, events[i].Longitude,
				events[j].Latitude, events[j].Longitude,
			)
			if dist <= radiusKm {
				clustered++
			}
		}
	}

	totalPairs := n * (n - 1) / 2
	return float64(clustered) / float64(totalPairs)
}

// HaversineKm computes the great-circle surface distance in kilometers
// between two WGS-84 coordinates.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dlat := radians(lat2 - lat1)
	dlon := radians(lon2 - lon1)

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
