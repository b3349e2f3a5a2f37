package kafka

import (
	"testing"
	"time"

	"github.com/seismowatch/seismo-alert/internal/alert"
	"github.com/seismowatch/seismo-alert/internal/analysis"
	"github.com/seismowatch/seismo-alert/internal/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	generated := time.Date(2023, time.November, 14, 22, 13, 20, 0, time.UTC)
	summary := monitor.Summary{
		GeneratedAt:  generated,
		EventCount:   10,
		MaxMagnitude: 7.2,
		GutenbergRichter: &analysis.GutenbergRichterResult{
			AValue: 1.330, BValue: 0.198, Mc: 1.9,
		},
		ClusteringCoefficient: 0.022,
		Alerts: []alert.Alert{
			{RuleName: "Large Earthquake", Message: "Large earthquake detected! Max magnitude: M7.2"},
		},
	}

	msg, err := serializeToMessage(summary)
	require.NoError(t, err)

	assert.Equal(t, []byte("2023-11-14T22:13:20Z"), msg.Key)
	assert.Contains(t, string(msg.Value), `"event_count":10`)
	assert.Contains(t, string(msg.Value), `"b_value":0.198`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_count", msg.Headers[0].Key)
	assert.Equal(t, []byte("10"), msg.Headers[0].Value)
	assert.Equal(t, "alert_count", msg.Headers[1].Key)
	assert.Equal(t, []byte("1"), msg.Headers[1].Value)
}

func TestSerializeToMessageOmitsEmptyFields(t *testing.T) {
	summary := monitor.Summary{
		GeneratedAt: time.Date(2023, time.November, 14, 22, 13, 20, 0, time.UTC),
	}

	msg, err := serializeToMessage(summary)
	require.NoError(t, err)

	assert.NotContains(t, string(msg.Value), "gutenberg_richter")
	assert.NotContains(t, string(msg.Value), "anomalies")
	assert.NotContains(t, string(msg.Value), "alerts")
	assert.Equal(t, []byte("0"), msg.Headers[1].Value)
}
