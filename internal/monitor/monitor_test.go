package monitor_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/seismowatch/seismo-alert/internal/alert"
	"github.com/seismowatch/seismo-alert/internal/catalog"
	"github.com/seismowatch/seismo-alert/internal/monitor"
	"github.com/seismowatch/seismo-alert/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockFetcher struct {
	cat catalog.Catalog
	err error
}

func (m *mockFetcher) Fetch(_ context.Context) (catalog.Catalog, error) {
	if m.err != nil {
		return catalog.Catalog{}, m.err
	}
	return m.cat, nil
}

type mockSink struct {
	mu        sync.Mutex
	published []monitor.Summary
	err       error
}

func (m *mockSink) Publish(_ context.Context, s monitor.Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, s)
	return nil
}

func (m *mockSink) summaries() []monitor.Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]monitor.Summary(nil), m.published...)
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []alert.Alert
	err  error
}

func (m *mockNotifier) Send(_ context.Context, a alert.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, a)
	return nil
}

func (m *mockNotifier) alerts() []alert.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]alert.Alert(nil), m.sent...)
}

// --- helpers ---

func activeCatalog() catalog.Catalog {
	mags := []float64{5.2, 3.1, 2.5, 4.0, 6.1, 1.8, 2.0, 3.5, 7.2, 2.8}
	base := time.UnixMilli(1700000000000).UTC()
	events := make([]catalog.Event, len(mags))
	for i, m := range mags {
		events[i] = catalog.Event{
			ID:        "eq",
			Time:      base.Add(time.Duration(i) * time.Hour),
			Latitude:  35.0,
			Longitude: -118.0,
			Magnitude: m,
		}
	}
	return catalog.New(events)
}

func defaultOptions() monitor.Options {
	return monitor.Options{
		Interval:       time.Hour, // only the immediate first cycle runs in tests
		WindowDays:     7,
		ThresholdSigma: 2.0,
		RadiusKm:       50,
		WindowHours:    72,
	}
}

func newTestMonitor(f monitor.Fetcher, notifiers []alert.Notifier, sink monitor.SummarySink) *monitor.Monitor {
	manager := alert.NewManager(
		alert.LargeEarthquake(6.0),
		alert.HighRate(5),
	)
	return monitor.New(f, manager, notifiers, sink,
		slog.Default(), observability.NewMetricsForTesting(), defaultOptions())
}

func runBriefly(t *testing.T, m *monitor.Monitor) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	require.NoError(t, m.Run(ctx))
}

func waitForSummaries(t *testing.T, sink *mockSink, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if len(sink.summaries()) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d summaries, have %d", n, len(sink.summaries()))
}

// --- tests ---

func TestMonitor_Run_PublishesSummary(t *testing.T) {
	sink := &mockSink{}
	m := newTestMonitor(&mockFetcher{cat: activeCatalog()}, nil, sink)

	runBriefly(t, m)

	published := sink.summaries()
	require.Len(t, published, 1)

	s := published[0]
	assert.Equal(t, 10, s.EventCount)
	assert.Equal(t, 7.2, s.MaxMagnitude)
	require.NotNil(t, s.GutenbergRichter)
	assert.Equal(t, 1.9, s.GutenbergRichter.Mc)
	assert.Greater(t, s.GutenbergRichter.BValue, 0.0)
	assert.False(t, s.GeneratedAt.IsZero())
	// All events share one location inside the time window.
	assert.Equal(t, 1.0, s.ClusteringCoefficient)
}

func TestMonitor_Run_DeliversAlerts(t *testing.T) {
	notifier := &mockNotifier{}
	m := newTestMonitor(&mockFetcher{cat: activeCatalog()}, []alert.Notifier{notifier}, nil)

	runBriefly(t, m)

	// M7.2 trips the large-earthquake rule; 10 events trip the rate rule.
	sent := notifier.alerts()
	require.Len(t, sent, 2)
	assert.Equal(t, "Large Earthquake", sent[0].RuleName)
	assert.Equal(t, "High Seismicity Rate", sent[1].RuleName)
}

func TestMonitor_Run_NotifierFailureDoesNotAbort(t *testing.T) {
	failing := &mockNotifier{err: errors.New("webhook down")}
	working := &mockNotifier{}
	sink := &mockSink{}
	m := newTestMonitor(&mockFetcher{cat: activeCatalog()}, []alert.Notifier{failing, working}, sink)

	runBriefly(t, m)

	assert.Len(t, working.alerts(), 2)
	assert.Len(t, sink.summaries(), 1)
	assert.NoError(t, m.CheckReadiness(context.Background()))
}

func TestMonitor_Run_SinkFailureDoesNotAbort(t *testing.T) {
	sink := &mockSink{err: errors.New("broker down")}
	m := newTestMonitor(&mockFetcher{cat: activeCatalog()}, nil, sink)

	runBriefly(t, m)

	assert.NoError(t, m.CheckReadiness(context.Background()))
}

func TestMonitor_Run_QuietCatalogPublishesWithoutAlerts(t *testing.T) {
	quiet := catalog.New([]catalog.Event{
		{ID: "a", Time: time.Now().UTC(), Magnitude: 3.0},
		{ID: "b", Time: time.Now().UTC().Add(time.Hour), Magnitude: 3.2},
	})
	notifier := &mockNotifier{}
	sink := &mockSink{}
	m := newTestMonitor(&mockFetcher{cat: quiet}, []alert.Notifier{notifier}, sink)

	runBriefly(t, m)

	assert.Empty(t, notifier.alerts())
	published := sink.summaries()
	require.Len(t, published, 1)
	assert.Empty(t, published[0].Alerts)
}

func TestMonitor_Run_FetchErrorRetries(t *testing.T) {
	m := newTestMonitor(&mockFetcher{err: errors.New("usgs unavailable")}, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.NoError(t, m.Run(ctx))

	assert.Error(t, m.CheckReadiness(context.Background()))
}

func TestMonitor_Run_ContextCancellation(t *testing.T) {
	sink := &mockSink{}
	m := newTestMonitor(&mockFetcher{cat: activeCatalog()}, nil, sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, m.Run(ctx))
}

func TestMonitor_CheckReadinessBeforeFirstCycle(t *testing.T) {
	m := newTestMonitor(&mockFetcher{cat: activeCatalog()}, nil, nil)
	assert.Error(t, m.CheckReadiness(context.Background()))
}

func TestMonitor_Run_TicksOnInterval(t *testing.T) {
	sink := &mockSink{}
	m := newTestMonitor(&mockFetcher{cat: activeCatalog()}, nil, sink)

	fakeClock := clockwork.NewFakeClockAt(time.Date(2023, time.November, 14, 0, 0, 0, 0, time.UTC))
	m.SetClock(fakeClock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	// First cycle runs immediately, before any tick.
	waitForSummaries(t, sink, 1)

	// The loop is now parked on the ticker; one interval fires one cycle.
	fakeClock.BlockUntil(1)
	fakeClock.Advance(time.Hour)
	waitForSummaries(t, sink, 2)

	cancel()
	require.NoError(t, <-done)

	published := sink.summaries()
	require.Len(t, published, 2)
	assert.True(t, published[1].GeneratedAt.After(published[0].GeneratedAt))
}

func TestMonitor_LastSummary(t *testing.T) {
	m := newTestMonitor(&mockFetcher{cat: activeCatalog()}, nil, nil)

	_, ok := m.LastSummary()
	assert.False(t, ok)

	runBriefly(t, m)

	s, ok := m.LastSummary()
	require.True(t, ok)
	assert.Equal(t, 10, s.EventCount)
	assert.Len(t, s.Alerts, 2)
}

func TestMonitor_Run_NilSink(t *testing.T) {
	m := newTestMonitor(&mockFetcher{cat: activeCatalog()}, nil, nil)

	runBriefly(t, m)

	assert.NoError(t, m.CheckReadiness(context.Background()))
}
