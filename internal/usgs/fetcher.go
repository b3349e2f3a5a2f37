package usgs

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/seismowatch/seismo-alert/internal/catalog"
)

// RollingFetcher fetches the trailing lookback window on every call,
// anchored at the current time. It satisfies the monitor's Fetcher
// interface.
type RollingFetcher struct {
	client       *Client
	lookback     time.Duration
	minMagnitude float64
	limit        int
	clock        clockwork.Clock
}

// NewRollingFetcher creates a fetcher for a rolling time window.
func NewRollingFetcher(client *Client, lookback time.Duration, minMagnitude float64, limit int) *RollingFetcher {
	return &RollingFetcher{
		client:       client,
		lookback:     lookback,
		minMagnitude: minMagnitude,
		limit:        limit,
		clock:        clockwork.NewRealClock(),
	}
}

// SetClock swaps the time source anchoring the window. Pass nil to reset
// to real time.
func (f *RollingFetcher) SetClock(clk clockwork.Clock) {
	if clk == nil {
		f.clock = clockwork.NewRealClock()
		return
	}
	f.clock = clk
}

// Fetch returns a fresh catalog snapshot for the trailing window.
func (f *RollingFetcher) Fetch(ctx context.Context) (catalog.Catalog, error) {
	end := f.clock.Now().UTC()
	minMag := f.minMagnitude
	return f.client.FetchEarthquakes(ctx, Query{
		Start:        end.Add(-f.lookback),
		End:          end,
		MinMagnitude: &minMag,
		Limit:        f.limit,
	})
}
