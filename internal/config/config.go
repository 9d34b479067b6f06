package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/homeless-data-etl/internal/domain"
)

// Config holds all report settings, populated from environment variables.
type Config struct {
	DataDir    string
	GeoFile    string
	CountsFile string
	StatesFile string
	OutputDir  string

	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	TopN           int
	HistogramBins  int
	OutlierCeiling int
	Drop           domain.DropPolicy

	ChartsEnabled bool
	XLSXEnabled   bool

	// Kafka publication of the merged ranking.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
	BatchSize      int

	// PushgatewayURL enables pushing run metrics when set.
	PushgatewayURL string
}

// ChartsDir is where rendered charts are written.
func (c *Config) ChartsDir() string { return filepath.Join(c.OutputDir, "charts") }

// WorkbookPath is where the report workbook is written.
func (c *Config) WorkbookPath() string { return filepath.Join(c.OutputDir, "homeless_report.xlsx") }

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	topN, err := parsePositiveInt("TOP_N", 10)
	if err != nil {
		return nil, err
	}
	bins, err := parsePositiveInt("HISTOGRAM_BINS", 10)
	if err != nil {
		return nil, err
	}
	ceiling, err := parsePositiveInt("OUTLIER_CEILING", 20000)
	if err != nil {
		return nil, err
	}

	drop, err := domain.ParseDropPolicy(sharedcfg.EnvOrDefault("RANKING_DROP", string(domain.DropFirst)))
	if err != nil {
		return nil, fmt.Errorf("invalid RANKING_DROP: %w", err)
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		DataDir:    sharedcfg.EnvOrDefault("DATA_DIR", "."),
		GeoFile:    sharedcfg.EnvOrDefault("GEO_FILE", "COCNumWithGeoCodes.csv"),
		CountsFile: sharedcfg.EnvOrDefault("COUNTS_FILE", "HomelessData2016.csv"),
		StatesFile: sharedcfg.EnvOrDefault("STATES_FILE", "StateNames.csv"),
		OutputDir:  sharedcfg.EnvOrDefault("OUTPUT_DIR", "output"),

		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		TopN:           topN,
		HistogramBins:  bins,
		OutlierCeiling: ceiling,
		Drop:           drop,

		ChartsEnabled: parseBool("CHARTS_ENABLED", true),
		XLSXEnabled:   parseBool("XLSX_ENABLED", true),

		KafkaEnabled:   kafkaEnabled,
		KafkaBrokers:   brokers,
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "homeless-state-rankings"),
		BatchSize:      batchSize,

		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	return cfg, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true"
	}
	return def
}
