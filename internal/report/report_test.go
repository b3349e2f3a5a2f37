package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/seismowatch/seismo-alert/internal/analysis"
	"github.com/seismowatch/seismo-alert/internal/catalog"
	"github.com/seismowatch/seismo-alert/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapCatalog() catalog.Catalog {
	base := time.Date(2023, time.November, 14, 0, 0, 0, 0, time.UTC)
	return catalog.New([]catalog.Event{
		{ID: "small", Time: base, Latitude: 35.0, Longitude: -118.0, Magnitude: 2.0, Place: "Riverside, CA"},
		{ID: "moderate", Time: base.Add(time.Hour), Latitude: 36.0, Longitude: -120.0, Magnitude: 4.5, Place: "Central California"},
		{ID: "strong", Time: base.Add(2 * time.Hour), Latitude: 37.0, Longitude: -122.0, Magnitude: 6.0, Place: "San Francisco, CA"},
		{ID: "major", Time: base.Add(3 * time.Hour), Latitude: 34.0, Longitude: -117.0, Magnitude: 7.5, Place: "San Bernardino, CA"},
	})
}

func TestWriteMap(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteMap(&buf, mapCatalog()))

	html := buf.String()
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "leaflet")
	assert.Equal(t, 4, strings.Count(html, "L.circleMarker"))

	// One marker per severity color.
	assert.Contains(t, html, `"green"`)
	assert.Contains(t, html, `"yellow"`)
	assert.Contains(t, html, `"orange"`)
	assert.Contains(t, html, `"red"`)

	// Map centers on the mean coordinate.
	assert.Contains(t, html, "setView")
	assert.Contains(t, html, "35.5")
	assert.Contains(t, html, "-119.25")
}

func TestWriteMapPopupLabels(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteMap(&buf, mapCatalog()))

	assert.Contains(t, buf.String(), "M7.5 San Bernardino, CA")
}

func TestWriteMapEmptyCatalog(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteMap(&buf, catalog.New(nil)))

	html := buf.String()
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.NotContains(t, html, "L.circleMarker")
	assert.Contains(t, html, "setView")
}

func TestWriteMapFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "earthquakes.html")
	require.NoError(t, report.WriteMapFile(path, mapCatalog()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "L.circleMarker")
}

func TestWriteMagnitudeTime(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteMagnitudeTime(&buf, mapCatalog()))

	svg := buf.String()
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "Earthquake Magnitude vs. Time")
	assert.Equal(t, 4, strings.Count(svg, "<circle"))

	// One point per severity color.
	assert.Contains(t, svg, `fill="green"`)
	assert.Contains(t, svg, `fill="yellow"`)
	assert.Contains(t, svg, `fill="orange"`)
	assert.Contains(t, svg, `fill="red"`)

	// Axis labels and the catalog's time span.
	assert.Contains(t, svg, ">Magnitude<")
	assert.Contains(t, svg, "2023-11-14 00:00")
	assert.Contains(t, svg, "2023-11-14 03:00")
}

func TestWriteMagnitudeTimeSingleEvent(t *testing.T) {
	c := catalog.New([]catalog.Event{
		{ID: "only", Time: time.Date(2023, time.November, 14, 0, 0, 0, 0, time.UTC), Magnitude: 4.0},
	})

	var buf bytes.Buffer
	require.NoError(t, report.WriteMagnitudeTime(&buf, c))
	assert.Equal(t, 1, strings.Count(buf.String(), "<circle"))
}

func TestWriteMagnitudeTimeEmptyCatalog(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, report.WriteMagnitudeTime(&buf, catalog.New(nil)))
}

func TestWriteMagnitudeTimeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "magnitude-time.svg")
	require.NoError(t, report.WriteMagnitudeTimeFile(path, mapCatalog()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Earthquake Magnitude vs. Time")
}

func TestWriteGutenbergRichter(t *testing.T) {
	fit := analysis.GutenbergRichterResult{AValue: 1.330, BValue: 0.198, Mc: 2.5}

	var buf bytes.Buffer
	require.NoError(t, report.WriteGutenbergRichter(&buf, mapCatalog(), fit))

	svg := buf.String()
	assert.Contains(t, svg, "Gutenberg-Richter Distribution")
	assert.Contains(t, svg, "Cumulative Number (N &gt;= M)")

	// One observed dot per distinct magnitude, plus the fitted line.
	assert.Equal(t, 4, strings.Count(svg, "<circle"))
	assert.Contains(t, svg, "<polyline")
	assert.Contains(t, svg, "G-R fit (a=1.33, b=0.20)")

	// Completeness marker sits inside the magnitude range, so it is drawn.
	assert.Contains(t, svg, "stroke-dasharray")
	assert.Contains(t, svg, "Mc = 2.5")
}

func TestWriteGutenbergRichterMcOutsideRange(t *testing.T) {
	fit := analysis.GutenbergRichterResult{AValue: 1.330, BValue: 0.198, Mc: 1.0}

	var buf bytes.Buffer
	require.NoError(t, report.WriteGutenbergRichter(&buf, mapCatalog(), fit))

	svg := buf.String()
	assert.NotContains(t, svg, "stroke-dasharray")
	assert.NotContains(t, svg, "Mc =")
}

func TestWriteGutenbergRichterSingleMagnitude(t *testing.T) {
	base := time.Date(2023, time.November, 14, 0, 0, 0, 0, time.UTC)
	c := catalog.New([]catalog.Event{
		{ID: "a", Time: base, Magnitude: 3.0},
		{ID: "b", Time: base.Add(time.Hour), Magnitude: 3.0},
	})
	fit := analysis.GutenbergRichterResult{AValue: 1.0, BValue: 0.2, Mc: 3.0}

	var buf bytes.Buffer
	require.NoError(t, report.WriteGutenbergRichter(&buf, c, fit))

	// Both events share one magnitude bin: a single observed dot.
	assert.Equal(t, 1, strings.Count(buf.String(), "<circle"))
}

func TestWriteGutenbergRichterEmptyCatalog(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, report.WriteGutenbergRichter(&buf, catalog.New(nil), analysis.GutenbergRichterResult{}))
}

func TestWriteGutenbergRichterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gutenberg-richter.svg")
	fit := analysis.GutenbergRichterResult{AValue: 1.330, BValue: 0.198, Mc: 2.5}
	require.NoError(t, report.WriteGutenbergRichterFile(path, mapCatalog(), fit))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Gutenberg-Richter Distribution")
}
