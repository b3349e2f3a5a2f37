package analysis

import (
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/seismowatch/seismo-alert/internal/catalog"
)

// Defaults for the rate-anomaly scan.
const (
	DefaultWindowDays     = 7
	DefaultThresholdSigma = 2.0
)

// IntereventTimes computes the time gaps, in seconds, between temporally
// consecutive events. The catalog is stably sorted by ascending time first,
// so the n-1 returned deltas are all non-negative and their sum equals the
// catalog's time span.
//
// Returns ErrInsufficientData when the catalog holds fewer than 2 events.
func IntereventTimes(c catalog.Catalog) ([]float64, error) {
	if c.Len() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 events to compute inter-event times", ErrInsufficientData)
	}

	events := c.SortByTime(false).Events()
	deltas := make([]float64, len(events)-1)
	for i := range deltas {
		deltas[i] = events[i+1].Time.Sub(events[i].Time).Seconds()
	}
	return deltas, nil
}

// DetectAnomalies flags periods of anomalously high event rate.
//
// For each event in the time-sorted catalog, a window starts at that event
// and extends windowDays forward, inclusive of its upper bound. The window
// count is the number of events at or after the anchor whose time falls in
// the window. Counts are compared against their population mean and
// population standard deviation; windows whose z-score reaches
// thresholdSigma are reported in anchor order.
//
// A catalog of fewer than 2 events, or one whose window counts have zero
// variance, yields an empty result. Neither is an error.
func DetectAnomalies(c catalog.Catalog, windowDays int, thresholdSigma float64) []AnomalyPeriod {
	if c.Len() < 2 {
		return nil
	}

	events := c.SortByTime(false).Events()
	n := len(events)
	window := time.Duration(windowDays) * 24 * time.Hour

	// Two-pointer scan: the window end only moves forward because events
	// are time-sorted, so all counts come out in O(n).
	counts := make([]float64, n)
	ends := make([]int, n)
	j := 0
	for i := range events {
		if j < i {
			j = i
		}
		windowEnd := events[i].Time.Add(window)
		for j < n && !events[j].Time.After(windowEnd) {
			j++
		}
		counts[i] = float64(j - i)
		ends[i] = j - 1
	}

	// counts is non-empty here, so neither call can fail.
	mean, _ := stats.Mean(counts)
	std, _ := stats.StandardDeviationPopulation(counts)

	// Zero variance means a perfectly uniform rate; report no anomalies
	// rather than flagging everything or failing.
	if std == 0 {
		return nil
	}

	var anomalies []AnomalyPeriod
	for i, count := range counts {
		sigma := (count - mean) / std
		if sigma >= thresholdSigma {
			anomalies = append(anomalies, AnomalyPeriod{
				StartIndex:     i,
				EndIndex:       ends[i],
				EventCount:     int(count),
				ExpectedCount:  round1(mean),
				SigmaDeviation: round2(sigma),
			})
		}
	}
	return anomalies
}
