package analysis

import (
	"fmt"
	"math"

	"github.com/seismowatch/seismo-alert/internal/catalog"
)

// binWidth is the magnitude histogram bin width. The Gutenberg-Richter
// half-bin correction in gutenberg.go assumes this value.
const binWidth = 0.1

// binEpsilon absorbs float accumulation when assigning a magnitude that
// sits exactly on a bin edge to the bin starting at that edge.
const binEpsilon = 1e-9

// MagnitudeOfCompleteness estimates the magnitude of completeness (Mc)
// using the maximum-curvature method: the midpoint of the most populated
// 0.1-magnitude bin, rounded to 1 decimal. When several bins share the
// maximum count, the lowest-magnitude bin wins.
//
// Returns ErrInvalidInput for an empty catalog.
func MagnitudeOfCompleteness(c catalog.Catalog) (float64, error) {
	if c.Len() == 0 {
		return 0, fmt.Errorf("%w: cannot compute Mc for an empty catalog", ErrInvalidInput)
	}

	mags := c.Magnitudes()
	minMag, maxMag := mags[0], mags[0]
	for _, m := range mags[1:] {
		if m < minMag {
			minMag = m
		}
		if m > maxMag {
			maxMag = m
		}
	}

	// Bins span from the floor of the minimum magnitude (to the nearest
	// 0.1) to just past the ceiling of the maximum.
	binMin := math.Floor(minMag*10) / 10
	binMax := math.Ceil(maxMag*10)/10 + binWidth

	nbins := int(math.Ceil((binMax-binMin)/binWidth-binEpsilon)) - 1
	if nbins < 1 {
		// All magnitudes share a single bin.
		nbins = 1
	}

	counts := make([]int, nbins)
	for _, m := range mags {
		idx := int(math.Floor((m-binMin)/binWidth + binEpsilon))
		if idx >= nbins {
			// The topmost bin is inclusive of its upper edge.
			idx = nbins - 1
		}
		if idx < 0 {
			idx = 0
		}
		counts[idx]++
	}

	// First maximal bin wins; > (not >=) keeps the tie-break deterministic.
	best := 0
	for i, n := range counts {
		if n > counts[best] {
			best = i
		}
	}

	mc := binMin + binWidth*float64(best) + binWidth/2
	return round1(mc), nil
}
