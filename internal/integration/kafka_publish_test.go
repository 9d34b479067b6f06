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

	"github.com/couchcryptid/homeless-data-etl/internal/adapter/console"
	"github.com/couchcryptid/homeless-data-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/homeless-data-etl/internal/adapter/kafka"
	"github.com/couchcryptid/homeless-data-etl/internal/config"
	"github.com/couchcryptid/homeless-data-etl/internal/domain"
	"github.com/couchcryptid/homeless-data-etl/internal/observability"
	"github.com/couchcryptid/homeless-data-etl/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testSinkTopic = "test-state-rankings"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("test-cluster"))
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestPipelinePublishesRankings runs the report over the pipeline fixtures
// with a real Kafka sink and reads every published ranking row back.
func TestPipelinePublishesRankings(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
		BatchSize:      50,
	}

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	src := csvfile.NewSource("../pipeline/testdata", "COCNumWithGeoCodes.csv", "HomelessData2016.csv", "StateNames.csv", discardLogger())
	opts := pipeline.Options{
		Report:        domain.ReportOptions{OutlierCeiling: 20000, Drop: domain.DropPolicy{Mode: domain.DropFirst}},
		HistogramBins: 10,
	}
	p := pipeline.New(src, console.NewPrinter(io.Discard, 10), opts, discardLogger(), observability.NewMetrics()).
		WithPublisher(writer)

	report, err := p.Run(ctx, "run-integration")
	require.NoError(t, err)
	require.NotEmpty(t, report.Rankings)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	got := make(map[string]kafka.RankingMessage, len(report.Rankings))
	for len(got) < len(report.Rankings) {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from sink topic")

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, "run-integration", headers["run_id"])
		_, err = time.Parse(time.RFC3339, headers["generated_at"])
		assert.NoError(t, err, "generated_at should be valid RFC3339")

		var rm kafka.RankingMessage
		require.NoError(t, json.Unmarshal(msg.Value, &rm))
		assert.Equal(t, string(msg.Key), rm.StateCode)
		got[rm.StateCode] = rm
	}

	for i, want := range report.Rankings {
		rm, ok := got[want.StateCode]
		require.True(t, ok, "missing ranking for %s", want.StateCode)
		assert.Equal(t, want, rm.StateRanking)
		assert.Equal(t, i+1, rm.Rank)
	}
}
