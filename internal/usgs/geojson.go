package usgs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/seismowatch/seismo-alert/internal/catalog"
)

// GeoJSON response types for the FDSN event service. Only the fields the
// catalog needs are declared; the rest of the FeatureCollection is ignored.

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID         string `json:"id"`
	Properties struct {
		Mag   *float64 `json:"mag"` // null for events without a reviewed magnitude
		Place string   `json:"place"`
		Time  int64    `json:"time"` // milliseconds since the Unix epoch
		URL   string   `json:"url"`
	} `json:"properties"`
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
	} `json:"geometry"`
}

// ParseGeoJSON converts a USGS GeoJSON FeatureCollection into a Catalog.
// Features without a magnitude or without full coordinates are dropped
// here, so the catalog's defined-magnitude invariant holds by construction.
func ParseGeoJSON(data []byte) (catalog.Catalog, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return catalog.Catalog{}, fmt.Errorf("parse geojson response: %w", err)
	}

	events := make([]catalog.Event, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Properties.Mag == nil {
			continue
		}
		if len(f.Geometry.Coordinates) < 3 {
			continue
		}
		place := f.Properties.Place
		if place == "" {
			place = "Unknown"
		}
		events = append(events, catalog.Event{
			ID:        f.ID,
			Time:      time.UnixMilli(f.Properties.Time).UTC(),
			Latitude:  f.Geometry.Coordinates[1],
			Longitude: f.Geometry.Coordinates[0],
			Depth:     f.Geometry.Coordinates[2],
			Magnitude: *f.Properties.Mag,
			Place:     place,
			URL:       f.Properties.URL,
		})
	}
	return catalog.New(events), nil
}
