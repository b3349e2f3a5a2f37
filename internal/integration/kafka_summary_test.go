//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	kafkaadapter "github.com/seismowatch/seismo-alert/internal/adapter/kafka"
	"github.com/seismowatch/seismo-alert/internal/alert"
	"github.com/seismowatch/seismo-alert/internal/analysis"
	"github.com/seismowatch/seismo-alert/internal/config"
	"github.com/seismowatch/seismo-alert/internal/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testSummaryTopic = "test-analysis-summaries"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-node Kafka container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial kafka")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestSummarySinkRoundTrip publishes a monitoring summary through the Kafka
// writer and reads it back from the topic.
func TestSummarySinkRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSummaryTopic)

	cfg := &config.Config{
		KafkaBrokers:      []string{broker},
		KafkaSummaryTopic: testSummaryTopic,
	}

	writer := kafkaadapter.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	generated := time.Date(2023, time.November, 14, 22, 13, 20, 0, time.UTC)
	summary := monitor.Summary{
		GeneratedAt:  generated,
		EventCount:   10,
		MaxMagnitude: 7.2,
		GutenbergRichter: &analysis.GutenbergRichterResult{
			AValue: 1.330, BValue: 0.198, Mc: 1.9,
		},
		Anomalies: []analysis.AnomalyPeriod{
			{StartIndex: 0, EndIndex: 2, EventCount: 3, ExpectedCount: 1.5, SigmaDeviation: 1.96},
		},
		ClusteringCoefficient: 0.022,
		Alerts: []alert.Alert{
			{RuleName: "Large Earthquake", Message: "Large earthquake detected! Max magnitude: M7.2"},
		},
	}

	require.NoError(t, writer.Publish(ctx, summary))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSummaryTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from summary topic")

	assert.Equal(t, []byte("2023-11-14T22:13:20Z"), msg.Key)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "10", headers["event_count"])
	assert.Equal(t, "1", headers["alert_count"])

	var got monitor.Summary
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, summary.EventCount, got.EventCount)
	assert.Equal(t, summary.MaxMagnitude, got.MaxMagnitude)
	require.NotNil(t, got.GutenbergRichter)
	assert.Equal(t, 0.198, got.GutenbergRichter.BValue)
	require.Len(t, got.Anomalies, 1)
	assert.Equal(t, 1.96, got.Anomalies[0].SigmaDeviation)
	require.Len(t, got.Alerts, 1)
	assert.Equal(t, "Large Earthquake", got.Alerts[0].RuleName)
	assert.True(t, got.GeneratedAt.Equal(generated))
}
