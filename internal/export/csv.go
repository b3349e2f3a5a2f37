// Package export writes catalog snapshots to files for offline use.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/seismowatch/seismo-alert/internal/catalog"
)

const timeLayout = "2006-01-02 15:04:05 UTC"

var csvHeader = []string{"id", "time_utc", "latitude", "longitude", "depth_km", "magnitude", "place", "url"}

// WriteCSV writes the catalog as CSV to w, one row per event plus a header
// row. Events are written in catalog order.
func WriteCSV(w io.Writer, c catalog.Catalog) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range c.Events() {
		row := []string{
			e.ID,
			e.Time.UTC().Format(timeLayout),
			strconv.FormatFloat(e.Latitude, 'f', -1, 64),
			strconv.FormatFloat(e.Longitude, 'f', -1, 64),
			strconv.FormatFloat(e.Depth, 'f', -1, 64),
			strconv.FormatFloat(e.Magnitude, 'f', -1, 64),
			e.Place,
			e.URL,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the catalog as CSV to the named file, creating or
// truncating it.
func WriteCSVFile(path string, c catalog.Catalog) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
