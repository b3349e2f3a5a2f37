package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/seismowatch/seismo-alert/internal/config"
	"github.com/seismowatch/seismo-alert/internal/monitor"
)

// Writer produces analysis summaries to a Kafka topic.
// It implements monitor.SummarySink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured summary topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSummaryTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes a cycle summary and writes it to the summary topic.
func (w *Writer) Publish(ctx context.Context, s monitor.Summary) error {
	msg, err := serializeToMessage(s)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Summary into a Kafka message keyed by its
// generation timestamp.
func serializeToMessage(s monitor.Summary) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(s.GeneratedAt.Format(time.RFC3339)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_count", Value: []byte(strconv.Itoa(s.EventCount))},
			{Key: "alert_count", Value: []byte(strconv.Itoa(len(s.Alerts)))},
		},
	}, nil
}
