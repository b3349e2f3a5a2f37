// Package usgs fetches earthquake catalogs from the USGS Earthquake
// Hazards Program FDSN event web service and parses its GeoJSON responses.
//
// This is the acquisition boundary: records lacking a magnitude are
// excluded here, so every catalog handed to the analysis package already
// satisfies the defined-magnitude invariant.
package usgs

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jonboulle/clockwork"
	"github.com/seismowatch/seismo-alert/internal/catalog"
)

// DefaultBaseURL is the USGS FDSN event query endpoint.
const DefaultBaseURL = "https://earthquake.usgs.gov/fdsnws/event/1/query"

const (
	// DefaultTimeout bounds a single query round-trip.
	DefaultTimeout = 30 * time.Second

	defaultLimit   = 1000
	defaultRetries = 3
	retryWait      = 2 * time.Second

	queryTimeLayout = "2006-01-02T15:04:05"
)

// Client queries the USGS earthquake API.
type Client struct {
	http    *resty.Client
	baseURL string
	clock   clockwork.Clock
	logger  *slog.Logger
}

// NewClient creates a USGS client. An empty baseURL selects the production
// endpoint; transient failures are retried with a fixed wait.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := resty.New().
		SetTimeout(timeout).
		SetRetryCount(defaultRetries).
		SetRetryWaitTime(retryWait)

	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		clock:   clockwork.NewRealClock(),
		logger:  logger,
	}
}

// SetClock swaps the time source used for default query windows. Pass nil
// to reset to real time. Tests use a fake clock for deterministic windows.
func (c *Client) SetClock(clk clockwork.Clock) {
	if clk == nil {
		c.clock = clockwork.NewRealClock()
		return
	}
	c.clock = clk
}

// Query holds the optional filters for FetchEarthquakes. Zero times default
// to the trailing 24 hours ending now; nil bounds are not sent at all.
type Query struct {
	Start        time.Time
	End          time.Time
	MinMagnitude *float64
	MaxMagnitude *float64
	MinDepth     *float64
	MaxDepth     *float64
	Limit        int // 0 selects the API default of 1000
}

// FetchEarthquakes queries the USGS API and parses the response into a
// catalog, dropping any feature without a magnitude.
func (c *Client) FetchEarthquakes(ctx context.Context, q Query) (catalog.Catalog, error) {
	end := q.End
	if end.IsZero() {
		end = c.clock.Now().UTC()
	}
	start := q.Start
	if start.IsZero() {
		start = end.Add(-24 * time.Hour)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	params := map[string]string{
		"format":    "geojson",
		"starttime": start.UTC().Format(queryTimeLayout),
		"endtime":   end.UTC().Format(queryTimeLayout),
		"limit":     strconv.Itoa(limit),
		"orderby":   "time",
	}
	// Unset bounds are omitted entirely for cleaner API requests.
	if q.MinMagnitude != nil {
		params["minmagnitude"] = formatFloat(*q.MinMagnitude)
	}
	if q.MaxMagnitude != nil {
		params["maxmagnitude"] = formatFloat(*q.MaxMagnitude)
	}
	if q.MinDepth != nil {
		params["mindepth"] = formatFloat(*q.MinDepth)
	}
	if q.MaxDepth != nil {
		params["maxdepth"] = formatFloat(*q.MaxDepth)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(c.baseURL)
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("fetch earthquake data: %w", err)
	}
	if resp.IsError() {
		return catalog.Catalog{}, fmt.Errorf("fetch earthquake data: usgs api status %d: %s",
			resp.StatusCode(), resp.String())
	}

	cat, err := ParseGeoJSON(resp.Body())
	if err != nil {
		return catalog.Catalog{}, err
	}

	c.logger.Debug("fetched earthquake catalog",
		"events", cat.Len(),
		"starttime", params["starttime"],
		"endtime", params["endtime"],
	)
	return cat, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
