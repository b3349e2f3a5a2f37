// Package monitor runs the periodic fetch-analyze-alert loop.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/seismowatch/seismo-alert/internal/alert"
	"github.com/seismowatch/seismo-alert/internal/analysis"
	"github.com/seismowatch/seismo-alert/internal/catalog"
	"github.com/seismowatch/seismo-alert/internal/observability"
)

// Fetcher acquires a fresh catalog snapshot from the data provider.
type Fetcher interface {
	Fetch(ctx context.Context) (catalog.Catalog, error)
}

// SummarySink publishes a cycle's analysis summary downstream.
type SummarySink interface {
	Publish(ctx context.Context, s Summary) error
}

// Summary is the derived output of one monitoring cycle.
type Summary struct {
	GeneratedAt           time.Time                        `json:"generated_at"`
	EventCount            int                              `json:"event_count"`
	MaxMagnitude          float64                          `json:"max_magnitude,omitempty"`
	GutenbergRichter      *analysis.GutenbergRichterResult `json:"gutenberg_richter,omitempty"`
	Anomalies             []analysis.AnomalyPeriod         `json:"anomalies,omitempty"`
	ClusteringCoefficient float64                          `json:"clustering_coefficient"`
	Alerts                []alert.Alert                    `json:"alerts,omitempty"`
}

// Options carry the cycle cadence and analysis tuning.
type Options struct {
	Interval       time.Duration
	WindowDays     int
	ThresholdSigma float64
	RadiusKm       float64
	WindowHours    float64
}

// Monitor orchestrates the fetch-analyze-alert loop until its context is
// cancelled.
type Monitor struct {
	fetcher   Fetcher
	manager   *alert.Manager
	notifiers []alert.Notifier
	sink      SummarySink // nil disables summary publishing
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	opts      Options
	ready     atomic.Bool
	last      atomic.Pointer[Summary]
}

// New creates a Monitor with the given collaborators. A nil sink disables
// summary publishing.
func New(f Fetcher, m *alert.Manager, notifiers []alert.Notifier, sink SummarySink,
	logger *slog.Logger, metrics *observability.Metrics, opts Options) *Monitor {
	return &Monitor{
		fetcher:   f,
		manager:   m,
		notifiers: notifiers,
		sink:      sink,
		logger:    logger,
		metrics:   metrics,
		clock:     clockwork.NewRealClock(),
		opts:      opts,
	}
}

// SetClock swaps the time source driving the loop. Pass nil to reset to
// real time.
func (m *Monitor) SetClock(clk clockwork.Clock) {
	if clk == nil {
		m.clock = clockwork.NewRealClock()
		return
	}
	m.clock = clk
}

// CheckReadiness returns nil once at least one cycle has completed, or an
// error describing why the service is not yet ready.
func (m *Monitor) CheckReadiness(_ context.Context) error {
	if !m.ready.Load() {
		return errors.New("monitor has not completed a cycle yet")
	}
	return nil
}

// LastSummary returns the most recent cycle's summary. The second return
// value is false before the first cycle completes.
func (m *Monitor) LastSummary() (Summary, bool) {
	s := m.last.Load()
	if s == nil {
		return Summary{}, false
	}
	return *s, true
}

// Run executes monitoring cycles until the context is cancelled. The first
// cycle runs immediately; subsequent cycles run on the configured interval.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("monitor started", "interval", m.opts.Interval)
	m.metrics.MonitorRunning.Set(1)
	defer m.metrics.MonitorRunning.Set(0)

	// Exponential backoff for fetch failures: start at 200ms, double each
	// retry, cap at 5s. Keeps retries prompt without hammering the API
	// during an outage.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	if !m.cycleOrBackoff(ctx, &backoff, maxBackoff) {
		return nil
	}

	ticker := m.clock.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			if !m.cycleOrBackoff(ctx, &backoff, maxBackoff) {
				return nil
			}
		}
	}
}

// cycleOrBackoff runs one cycle, retrying fetch failures with backoff.
// Returns false if the monitor should stop.
func (m *Monitor) cycleOrBackoff(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	for {
		err := m.runCycle(ctx)
		if err == nil {
			*backoff = 200 * time.Millisecond
			m.ready.Store(true)
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		m.logger.Error("monitoring cycle failed", "error", err)
		if !m.sleepWithContext(ctx, *backoff) {
			return false
		}
		*backoff = nextBackoff(*backoff, maxBackoff)
	}
}

// runCycle performs one fetch-analyze-alert pass. Only fetch failures are
// returned; delivery and publish failures are logged and the cycle still
// counts as complete.
func (m *Monitor) runCycle(ctx context.Context) error {
	start := m.clock.Now()

	cat, err := m.fetcher.Fetch(ctx)
	if err != nil {
		m.metrics.FetchesTotal.WithLabelValues("error").Inc()
		return err
	}
	m.metrics.FetchesTotal.WithLabelValues("success").Inc()
	m.metrics.CatalogSize.Observe(float64(cat.Len()))

	summary := m.analyze(cat)

	alerts := m.manager.Evaluate(cat)
	summary.Alerts = alerts
	m.metrics.AlertsTriggered.Add(float64(len(alerts)))
	for _, a := range alerts {
		m.logger.Warn("alert triggered", "rule", a.RuleName, "message", a.Message)
		for _, n := range m.notifiers {
			if err := n.Send(ctx, a); err != nil {
				m.logger.Warn("alert delivery failed", "rule", a.RuleName, "error", err)
			}
		}
	}

	if m.sink != nil {
		if err := m.sink.Publish(ctx, summary); err != nil {
			m.logger.Error("publish summary failed", "error", err)
		} else {
			m.metrics.SummariesPublished.Inc()
		}
	}

	m.last.Store(&summary)
	m.metrics.AnalysisDuration.Observe(m.clock.Now().Sub(start).Seconds())
	m.logger.Info("monitoring cycle complete",
		"events", summary.EventCount,
		"anomalies", len(summary.Anomalies),
		"alerts", len(alerts),
	)
	return nil
}

// analyze runs the core statistics over a catalog snapshot. A failed
// Gutenberg-Richter fit (empty or sparse catalog) is not fatal; the
// summary simply omits it.
func (m *Monitor) analyze(cat catalog.Catalog) Summary {
	s := Summary{
		GeneratedAt:           m.clock.Now().UTC(),
		EventCount:            cat.Len(),
		ClusteringCoefficient: analysis.ClusteringCoefficient(cat, m.opts.RadiusKm, m.opts.WindowHours),
	}
	if maxMag, ok := cat.MaxMagnitude(); ok {
		s.MaxMagnitude = maxMag
	}

	gr, err := analysis.GutenbergRichter(cat)
	if err != nil {
		m.logger.Debug("gutenberg-richter fit skipped", "error", err)
	} else {
		s.GutenbergRichter = &gr
		m.metrics.LastBValue.Set(gr.BValue)
	}

	s.Anomalies = analysis.DetectAnomalies(cat, m.opts.WindowDays, m.opts.ThresholdSigma)
	m.metrics.AnomaliesDetected.Add(float64(len(s.Anomalies)))
	m.metrics.LastClusteringCoefficient.Set(s.ClusteringCoefficient)
	return s
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func (m *Monitor) sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := m.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
