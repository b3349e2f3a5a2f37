package analysis

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/seismowatch/seismo-alert/internal/catalog"
)

// GutenbergRichter fits the frequency-magnitude relation, estimating the
// magnitude of completeness from the catalog first.
//
// Returns ErrInvalidInput for an empty catalog and ErrInsufficientData
// when fewer than 2 events lie at or above the estimated Mc.
func GutenbergRichter(c catalog.Catalog) (GutenbergRichterResult, error) {
	if c.Len() == 0 {
		return GutenbergRichterResult{}, fmt.Errorf("%w: cannot fit G-R law to an empty catalog", ErrInvalidInput)
	}
	mc, err := MagnitudeOfCompleteness(c)
	if err != nil {
		return GutenbergRichterResult{}, err
	}
	return GutenbergRichterWithMc(c, mc)
}

// GutenbergRichterWithMc fits the frequency-magnitude relation using an
// externally supplied magnitude of completeness. The returned result
// reports that exact Mc, unrounded; a and b are rounded to 3 decimals.
func GutenbergRichterWithMc(c catalog.Catalog, mc float64) (GutenbergRichterResult, error) {
	if c.Len() == 0 {
		return GutenbergRichterResult{}, fmt.Errorf("%w: cannot fit G-R law to an empty catalog", ErrInvalidInput)
	}

	filtered := c.FilterByMagnitude(mc, math.Inf(1))
	if filtered.Len() < 2 {
		return GutenbergRichterResult{}, fmt.Errorf(
			"%w: %d event(s) at or above mc=%.1f, need at least 2", ErrInsufficientData, filtered.Len(), mc)
	}

	// filtered is non-empty, so Mean cannot fail.
	meanMag, _ := stats.Mean(filtered.Magnitudes())

	// Aki (1965) maximum-likelihood b-value with a half-bin correction for
	// the 0.1-unit binning used by MagnitudeOfCompleteness.
	bValue := math.Log10(math.E) / (meanMag - (mc - binWidth/2))
	aValue := math.Log10(float64(filtered.Len())) + bValue*mc

	return GutenbergRichterResult{
		AValue: round3(aValue),
		BValue: round3(bValue),
		Mc:     mc,
	}, nil
}
