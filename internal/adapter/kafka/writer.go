package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/parking-schedule-service/internal/config"
	"github.com/couchcryptid/parking-schedule-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes one message per location to a Kafka topic on every refresh.
// It implements pipeline.Loader.
type Writer struct {
	writer    messageWriter
	batchSize int
	logger    *slog.Logger
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchFlushInterval,
	}
	return &Writer{writer: w, batchSize: cfg.BatchSize, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// Load publishes a summary of every spot in snap, keyed by location id so
// successive refreshes of one location land on the same partition.
func (w *Writer) Load(ctx context.Context, snap *domain.Snapshot) error {
	spots := snap.Spots()
	if len(spots) == 0 {
		return nil
	}

	chunk := w.batchSize
	if chunk <= 0 {
		chunk = len(spots)
	}
	msgs := make([]kafkago.Message, 0, min(chunk, len(spots)))
	for i := range spots {
		msg, err := serializeToMessage(spots[i].Summary(snap.LoadedAt()))
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
		if len(msgs) == chunk {
			if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
				return fmt.Errorf("write locations: %w", err)
			}
			msgs = msgs[:0]
		}
	}
	if len(msgs) > 0 {
		if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("write locations: %w", err)
		}
	}
	w.logger.Debug("locations published", "count", len(spots))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a LocationSummary into a Kafka message.
func serializeToMessage(s domain.LocationSummary) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize location %d: %w", s.LocationID, err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.FormatInt(s.LocationID, 10)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "parking_type", Value: []byte(s.Classification.ParkingType)},
			{Key: "refreshed_at", Value: []byte(s.RefreshedAt.Format(time.RFC3339))},
		},
	}, nil
}
