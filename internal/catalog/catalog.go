// Package catalog models earthquake events and immutable catalog snapshots.
//
// A Catalog is an ordered collection of events as returned by the data
// provider. Order reflects insertion and is not guaranteed to be sorted by
// time. Every derived view (filter, sort) returns a new Catalog value and
// leaves the receiver untouched, so a snapshot handed to an analyzer can
// never change underneath it.
//
// Catalogs uphold one invariant: every member event carries a defined
// magnitude. Provider records without a magnitude are dropped at the
// acquisition boundary (see the usgs package), before a Catalog is built.
package catalog

import (
	"sort"
	"time"
)

// Event is a single seismic event record. Identity is the provider-assigned
// ID; two Events describe the same earthquake iff their IDs are equal.
type Event struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"time"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Depth     float64   `json:"depth_km"`
	Magnitude float64   `json:"magnitude"`
	Place     string    `json:"place"`
	URL       string    `json:"url"`
}

// Catalog is an immutable ordered snapshot of seismic events.
type Catalog struct {
	events []Event
}

// New builds a Catalog from the given events. The slice is copied so later
// mutation by the caller cannot alter the snapshot.
func New(events []Event) Catalog {
	copied := make([]Event, len(events))
	copy(copied, events)
	return Catalog{events: copied}
}

// Len returns the number of events in the catalog.
func (c Catalog) Len() int { return len(c.events) }

// Events returns a copy of the catalog's events in catalog order.
func (c Catalog) Events() []Event {
	copied := make([]Event, len(c.events))
	copy(copied, c.events)
	return copied
}

// Magnitudes returns the magnitude of every event, in catalog order.
func (c Catalog) Magnitudes() []float64 {
	mags := make([]float64, len(c.events))
	for i, eq := range c.events {
		mags[i] = eq.Magnitude
	}
	return mags
}

// MaxMagnitude returns the largest magnitude in the catalog. The second
// return value is false when the catalog is empty.
func (c Catalog) MaxMagnitude() (float64, bool) {
	if len(c.events) == 0 {
		return 0, false
	}
	maxMag := c.events[0].Magnitude
	for _, eq := range c.events[1:] {
		if eq.Magnitude > maxMag {
			maxMag = eq.Magnitude
		}
	}
	return maxMag, true
}

// FilterByMagnitude returns a new catalog containing events with magnitude
// in [minMag, maxMag], both bounds inclusive. Pass math.Inf(-1) or
// math.Inf(1) to leave a bound open.
func (c Catalog) FilterByMagnitude(minMag, maxMag float64) Catalog {
	filtered := make([]Event, 0, len(c.events))
	for _, eq := range c.events {
		if eq.Magnitude >= minMag && eq.Magnitude <= maxMag {
			filtered = append(filtered, eq)
		}
	}
	return Catalog{events: filtered}
}

// FilterByDepth returns a new catalog containing events with depth (km) in
// [minDepth, maxDepth], both bounds inclusive. Pass math.Inf(-1) or
// math.Inf(1) to leave a bound open.
func (c Catalog) FilterByDepth(minDepth, maxDepth float64) Catalog {
	filtered := make([]Event, 0, len(c.events))
	for _, eq := range c.events {
		if eq.Depth >= minDepth && eq.Depth <= maxDepth {
			filtered = append(filtered, eq)
		}
	}
	return Catalog{events: filtered}
}

// SortByTime returns a new catalog sorted by event time, oldest first, or
// newest first when newestFirst is set. The sort is stable: events with
// identical timestamps keep their original relative order.
func (c Catalog) SortByTime(newestFirst bool) Catalog {
	sorted := c.Events()
	sort.SliceStable(sorted, func(i, j int) bool {
		if newestFirst {
			return sorted[i].Time.After(sorted[j].Time)
		}
		return sorted[i].Time.Before(sorted[j].Time)
	})
	return Catalog{events: sorted}
}

// SortByMagnitude returns a new catalog sorted by magnitude, largest first,
// or smallest first when smallestFirst is set. The sort is stable.
func (c Catalog) SortByMagnitude(smallestFirst bool) Catalog {
	sorted := c.Events()
	sort.SliceStable(sorted, func(i, j int) bool {
		if smallestFirst {
			return sorted[i].Magnitude < sorted[j].Magnitude
		}
		return sorted[i].Magnitude > sorted[j].Magnitude
	})
	return Catalog{events: sorted}
}
