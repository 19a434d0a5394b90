package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Service holds service-level settings
type Service struct {
	Environment string `envconfig:"SERVICE_ENVIRONMENT" default:"development"`
	APIPort     string `envconfig:"SERVICE_API_PORT" default:"8080"`
	Host        string `envconfig:"SERVICE_HOST" default:"localhost:8080"`
}

// ClickHouse holds ClickHouse connection settings
type ClickHouse struct {
	Host            string `envconfig:"CLICKHOUSE_HOST" required:"true"`
	Port            string `envconfig:"CLICKHOUSE_PORT" required:"true"`
	Database        string `envconfig:"CLICKHOUSE_DB" required:"true"`
	User            string `envconfig:"CLICKHOUSE_USER" default:""`
	Password        string `envconfig:"CLICKHOUSE_PASSWORD" default:""`
	UseTLS          bool   `envconfig:"CLICKHOUSE_USE_TLS" default:"false"`
	MaxOpenConns    int    `envconfig:"CLICKHOUSE_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int    `envconfig:"CLICKHOUSE_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime int    `envconfig:"CLICKHOUSE_CONN_MAX_LIFETIME_SEC" default:"3600"`
}

// SQS holds settings for the alert report queue
type SQS struct {
	Endpoint string `envconfig:"SQS_ENDPOINT"`
	QueueURL string `envconfig:"SQS_QUEUE_URL"`
	Region   string `envconfig:"SQS_REGION" default:"us-east-1"`
}

// Pipeline holds the batch transform settings
type Pipeline struct {
	SessionGapSeconds int               `envconfig:"PIPELINE_SESSION_GAP_SEC" default:"1800"`
	LookbackDays      int               `envconfig:"PIPELINE_LOOKBACK_DAYS" default:"7"`
	EventNameRemap    map[string]string `envconfig:"PIPELINE_EVENT_REMAP" default:"checkout_completed:purchase"`
}

// Monitor holds the drift monitor settings
type Monitor struct {
	BaselineDays   int    `envconfig:"MONITOR_BASELINE_DAYS" default:"7"`
	ThresholdsFile string `envconfig:"MONITOR_THRESHOLDS_FILE"`
	ReportPath     string `envconfig:"MONITOR_REPORT_PATH" default:"monitoring_report.json"`
}

// Config holds the full configuration surface
type Config struct {
	Service    Service
	ClickHouse ClickHouse
	SQS        SQS
	Pipeline   Pipeline
	Monitor    Monitor
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
