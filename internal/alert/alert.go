// Package alert evaluates configurable rules against catalog snapshots and
// dispatches triggered alerts to notification channels.
package alert

import (
	"fmt"

	"github.com/seismowatch/seismo-alert/internal/catalog"
)

// Alert is a triggered alert ready for dispatch.
type Alert struct {
	RuleName string `json:"rule_name"`
	Message  string `json:"message"`
}

// Condition reports whether a catalog snapshot should trigger a rule.
type Condition func(catalog.Catalog) bool

// Rule pairs a trigger condition with a message builder.
type Rule struct {
	Name      string
	Condition Condition
	Message   func(catalog.Catalog) string
}

// Evaluate checks the rule against a catalog. The second return value is
// false when the rule did not trigger.
func (r Rule) Evaluate(c catalog.Catalog) (Alert, bool) {
	if r.Condition == nil || !r.Condition(c) {
		return Alert{}, false
	}
	return Alert{RuleName: r.Name, Message: r.Message(c)}, true
}

// LargeEarthquake builds a rule that triggers when any event in the
// catalog reaches minMagnitude.
func LargeEarthquake(minMagnitude float64) Rule {
	return Rule{
		Name: "Large Earthquake",
		Condition: func(c catalog.Catalog) bool {
			maxMag, ok := c.MaxMagnitude()
			return ok && maxMag >= minMagnitude
		},
		Message: func(c catalog.Catalog) string {
			maxMag, _ := c.MaxMagnitude()
			return fmt.Sprintf("Large earthquake detected! Max magnitude: M%.1f", maxMag)
		},
	}
}

// HighRate builds a rule that triggers when the catalog holds more than
// maxCount events.
func HighRate(maxCount int) Rule {
	return Rule{
		Name: "High Seismicity Rate",
		Condition: func(c catalog.Catalog) bool {
			return c.Len() > maxCount
		},
		Message: func(c catalog.Catalog) string {
			return fmt.Sprintf("High seismicity rate: %d events detected", c.Len())
		},
	}
}

// Manager evaluates registered rules against catalog snapshots.
type Manager struct {
	rules []Rule
}

// NewManager creates a Manager with the given rules.
func NewManager(rules ...Rule) *Manager {
	return &Manager{rules: rules}
}

// AddRule registers an additional rule.
func (m *Manager) AddRule(r Rule) {
	m.rules = append(m.rules, r)
}

// Evaluate runs every rule against the catalog and returns the triggered
// alerts in registration order.
func (m *Manager) Evaluate(c catalog.Catalog) []Alert {
	var alerts []Alert
	for _, rule := range m.rules {
		if a, ok := rule.Evaluate(c); ok {
			alerts = append(alerts, a)
		}
	}
	return alerts
}
