// Command seismoalert is the one-shot CLI for fetching, analyzing, and
// mapping recent earthquake activity.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/seismowatch/seismo-alert/internal/alert"
	"github.com/seismowatch/seismo-alert/internal/analysis"
	"github.com/seismowatch/seismo-alert/internal/catalog"
	"github.com/seismowatch/seismo-alert/internal/export"
	"github.com/seismowatch/seismo-alert/internal/report"
	"github.com/seismowatch/seismo-alert/internal/usgs"
)

const usage = `Usage: seismoalert <command> [flags]

Commands:
  fetch    Fetch recent earthquakes and write them to CSV
  analyze  Run statistical analysis over a recent catalog
  map      Render recent earthquakes as an interactive HTML map
  monitor  Fetch once and evaluate alert rules

Run "seismoalert <command> -h" for command flags.
`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "fetch":
		err = runFetch(ctx, os.Args[2:], logger)
	case "analyze":
		err = runAnalyze(ctx, os.Args[2:], logger)
	case "map":
		err = runMap(ctx, os.Args[2:], logger)
	case "monitor":
		err = runMonitor(ctx, os.Args[2:], logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// fetchCatalog pulls the trailing N-day window from the USGS API.
func fetchCatalog(ctx context.Context, days int, minMag float64, limit int, logger *slog.Logger) (catalog.Catalog, error) {
	client := usgs.NewClient(usgs.DefaultBaseURL, usgs.DefaultTimeout, logger)
	end := time.Now().UTC()
	return client.FetchEarthquakes(ctx, usgs.Query{
		Start:        end.Add(-time.Duration(days) * 24 * time.Hour),
		End:          end,
		MinMagnitude: &minMag,
		Limit:        limit,
	})
}

func runFetch(ctx context.Context, args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	days := fs.Int("days", 1, "how many days back to fetch")
	minMag := fs.Float64("min-magnitude", 2.5, "minimum magnitude")
	limit := fs.Int("limit", 100, "maximum number of events")
	outputCSV := fs.String("output-csv", "earthquakes.csv", "CSV output path")
	fs.Parse(args)

	cat, err := fetchCatalog(ctx, *days, *minMag, *limit, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Fetched %d earthquakes (M>=%.1f, last %d day(s))\n", cat.Len(), *minMag, *days)

	top := cat.SortByMagnitude(false)
	for i, e := range top.Events() {
		if i >= 5 {
			break
		}
		fmt.Printf("  M%.1f  %s  %s\n", e.Magnitude, e.Time.UTC().Format("2006-01-02 15:04"), e.Place)
	}

	if err := export.WriteCSVFile(*outputCSV, cat); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", *outputCSV)
	return nil
}

func runAnalyze(ctx context.Context, args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	days := fs.Int("days", 30, "how many days back to analyze")
	minMag := fs.Float64("min-magnitude", 1.0, "minimum magnitude")
	windowDays := fs.Int("window-days", analysis.DefaultWindowDays, "anomaly detection window in days")
	plotMagTime := fs.String("plot-magnitude-time", "", "write a magnitude-time SVG chart to this path")
	plotGR := fs.String("plot-gutenberg-richter", "", "write a Gutenberg-Richter distribution SVG chart to this path")
	fs.Parse(args)

	cat, err := fetchCatalog(ctx, *days, *minMag, 20000, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Analyzing %d earthquakes from the last %d day(s)\n\n", cat.Len(), *days)

	gr, err := analysis.GutenbergRichter(cat)
	switch {
	case errors.Is(err, analysis.ErrInvalidInput), errors.Is(err, analysis.ErrInsufficientData):
		fmt.Println("Insufficient data for analysis.")
		return nil
	case err != nil:
		return err
	}

	fmt.Println("Gutenberg-Richter fit:")
	fmt.Printf("  Mc      = %.1f\n", gr.Mc)
	fmt.Printf("  b-value = %.3f\n", gr.BValue)
	fmt.Printf("  a-value = %.3f\n", gr.AValue)

	anomalies := analysis.DetectAnomalies(cat, *windowDays, analysis.DefaultThresholdSigma)
	if len(anomalies) == 0 {
		fmt.Println("\nNo anomalous activity periods detected.")
	} else {
		fmt.Printf("\nAnomalous activity periods (%d):\n", len(anomalies))
		for _, a := range anomalies {
			fmt.Printf("  events %d-%d: %d events vs %.1f expected (%.2f sigma)\n",
				a.StartIndex, a.EndIndex, a.EventCount, a.ExpectedCount, a.SigmaDeviation)
		}
	}

	cc := analysis.ClusteringCoefficient(cat, analysis.DefaultRadiusKm, analysis.DefaultWindowHours)
	fmt.Printf("\nSpatio-temporal clustering coefficient: %.3f\n", cc)

	if *plotMagTime != "" {
		if err := report.WriteMagnitudeTimeFile(*plotMagTime, cat); err != nil {
			return err
		}
		fmt.Printf("\nWrote magnitude-time chart to %s\n", *plotMagTime)
	}
	if *plotGR != "" {
		if err := report.WriteGutenbergRichterFile(*plotGR, cat, gr); err != nil {
			return err
		}
		fmt.Printf("Wrote Gutenberg-Richter chart to %s\n", *plotGR)
	}
	return nil
}

func runMap(ctx context.Context, args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("map", flag.ExitOnError)
	days := fs.Int("days", 7, "how many days back to map")
	minMag := fs.Float64("min-magnitude", 2.5, "minimum magnitude")
	output := fs.String("output", "earthquakes.html", "HTML output path")
	fs.Parse(args)

	cat, err := fetchCatalog(ctx, *days, *minMag, 1000, logger)
	if err != nil {
		return err
	}

	if err := report.WriteMapFile(*output, cat); err != nil {
		return err
	}
	fmt.Printf("Mapped %d earthquakes to %s\n", cat.Len(), *output)
	return nil
}

func runMonitor(ctx context.Context, args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	days := fs.Int("days", 1, "how many days back to check")
	minMag := fs.Float64("min-magnitude", 4.0, "minimum magnitude")
	alertMag := fs.Float64("alert-magnitude", 6.0, "magnitude that triggers the large-earthquake rule")
	alertCount := fs.Int("alert-count", 50, "event count that triggers the high-rate rule")
	fs.Parse(args)

	cat, err := fetchCatalog(ctx, *days, *minMag, 1000, logger)
	if err != nil {
		return err
	}

	manager := alert.NewManager(
		alert.LargeEarthquake(*alertMag),
		alert.HighRate(*alertCount),
	)

	alerts := manager.Evaluate(cat)
	if len(alerts) == 0 {
		fmt.Printf("No alerts. %d event(s) in the last %d day(s).\n", cat.Len(), *days)
		return nil
	}
	for _, a := range alerts {
		fmt.Printf("ALERT [%s] %s\n", a.RuleName, a.Message)
	}
	return nil
}
