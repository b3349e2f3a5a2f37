package analysis

import (
	"errors"
	"math"
)

// Sentinel errors returned by the analysis functions. Callers match them
// with errors.Is; the wrapped message carries the specifics.
var (
	// ErrInvalidInput marks an operation that is undefined on its input,
	// such as estimating completeness of an empty catalog.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientData marks a non-empty catalog with too few qualifying
	// events for a statistically meaningful result.
	ErrInsufficientData = errors.New("insufficient data")
)

// GutenbergRichterResult holds the parameters of a fitted
// frequency-magnitude relation log10(N) = a - b*M.
type GutenbergRichterResult struct {
	// AValue is the productivity parameter (log10 of the total event rate).
	AValue float64 `json:"a_value"`
	// BValue is the slope of the frequency-magnitude distribution.
	BValue float64 `json:"b_value"`
	// Mc is the magnitude of completeness used for the fit.
	Mc float64 `json:"mc"`
}

// AnomalyPeriod describes one window of anomalously high event rate.
// Indices refer to the time-sorted (ascending) catalog.
type AnomalyPeriod struct {
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
	// EventCount is the observed number of events in the window.
	EventCount int `json:"event_count"`
	// ExpectedCount is the mean window count, rounded to 1 decimal.
	ExpectedCount float64 `json:"expected_count"`
	// SigmaDeviation is the z-score of the window count, rounded to 2 decimals.
	SigmaDeviation float64 `json:"sigma_deviation"`
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
