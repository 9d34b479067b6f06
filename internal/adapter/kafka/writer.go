package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/homeless-data-etl/internal/config"
	"github.com/couchcryptid/homeless-data-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// RankingMessage is the JSON value of one published ranking row. Rank is
// 1-based in merged-ranking order.
type RankingMessage struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Rank        int       `json:"rank"`
	domain.StateRanking
}

// Writer publishes the merged ranking to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes one message per merged-ranking row, keyed by state code,
// in a single WriteMessages call.
func (w *Writer) Publish(ctx context.Context, runID string, r domain.Report) error {
	if len(r.Rankings) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(r.Rankings))
	for i := range r.Rankings {
		msg, err := serializeToMessage(runID, r.GeneratedAt, i+1, r.Rankings[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish rankings: %w", err)
	}
	w.logger.Info("rankings published", "topic", w.writer.Topic, "messages", len(msgs))
	return nil
}

// Close flushes pending messages and closes the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals one ranking row into a Kafka message.
func serializeToMessage(runID string, generatedAt time.Time, rank int, row domain.StateRanking) (kafkago.Message, error) {
	data, err := json.Marshal(RankingMessage{
		RunID:        runID,
		GeneratedAt:  generatedAt,
		Rank:         rank,
		StateRanking: row,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize state ranking: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(row.StateCode),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(runID)},
			{Key: "generated_at", Value: []byte(generatedAt.Format(time.RFC3339))},
		},
	}, nil
}
