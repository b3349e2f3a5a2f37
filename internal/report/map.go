// Package report renders catalog snapshots as interactive HTML maps.
package report

import (
	"fmt"
	"html/template"
	"io"
	"os"

	"github.com/montanaflynn/stats"
	"github.com/seismowatch/seismo-alert/internal/catalog"
)

const mapTimeLayout = "2006-01-02 15:04 UTC"

// marker is one event rendered as a Leaflet circle marker.
type marker struct {
	Lat    float64
	Lon    float64
	Radius float64
	Color  string
	Label  string
}

type mapData struct {
	Title     string
	CenterLat float64
	CenterLon float64
	Zoom      int
	Markers   []marker
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
{{range .Markers}}
L.circleMarker([{{.Lat}}, {{.Lon}}], {
  radius: {{.Radius}},
  color: {{.Color}},
  fillColor: {{.Color}},
  fillOpacity: 0.6
}).addTo(map).bindPopup({{.Label}});
{{end}}
</script>
</body>
</html>
`))

// WriteMap renders the catalog as a Leaflet map page to w. An empty catalog
// still produces a valid page centered on the origin.
func WriteMap(w io.Writer, c catalog.Catalog) error {
	events := c.Events()

	data := mapData{
		Title:     "Earthquake Map",
		CenterLat: 0,
		CenterLon: 0,
		Zoom:      2,
	}

	if len(events) > 0 {
		lats := make([]float64, len(events))
		lons := make([]float64, len(events))
		for i, e := range events {
			lats[i] = e.Latitude
			lons[i] = e.Longitude
		}
		// Means over non-empty slices cannot fail.
		data.CenterLat, _ = stats.Mean(lats)
		data.CenterLon, _ = stats.Mean(lons)
		data.Zoom = 3
	}

	for _, e := range events {
		data.Markers = append(data.Markers, marker{
			Lat:    e.Latitude,
			Lon:    e.Longitude,
			Radius: markerRadius(e.Magnitude),
			Color:  magnitudeColor(e.Magnitude),
			Label: fmt.Sprintf("M%.1f %s (%s, depth %.1f km)",
				e.Magnitude, e.Place, e.Time.UTC().Format(mapTimeLayout), e.Depth),
		})
	}

	return mapTemplate.Execute(w, data)
}

// WriteMapFile renders the catalog map to the named file, creating or
// truncating it.
func WriteMapFile(path string, c catalog.Catalog) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteMap(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// markerRadius scales marker size with the square of magnitude so large
// events dominate visually, with a floor for microquakes.
func markerRadius(mag float64) float64 {
	r := mag * mag
	if r < 3 {
		return 3
	}
	return r
}

func magnitudeColor(mag float64) string {
	switch {
	case mag < 3:
		return "green"
	case mag < 5:
		return "yellow"
	case mag < 7:
		return "orange"
	default:
		return "red"
	}
}
