package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration settings.
type Config struct {
	Environment string `envconfig:"AD_ENV" default:"development"`

	HTTPPort    int           `envconfig:"AD_HTTP_PORT" default:"8080"`
	HTTPTimeout time.Duration `envconfig:"AD_HTTP_TIMEOUT" default:"15s"`

	WorkerPoolSize  int           `envconfig:"AD_WORKER_POOL_SIZE" default:"5"`
	QueueCapacity   int           `envconfig:"AD_QUEUE_CAPACITY" default:"100"`
	DownloadTimeout time.Duration `envconfig:"AD_DOWNLOAD_TIMEOUT" default:"5m"`
	ProbeTimeout    time.Duration `envconfig:"AD_PROBE_TIMEOUT" default:"10s"`
	MaxFileSize     int64         `envconfig:"AD_MAX_FILE_SIZE" default:"104857600"`

	DBPath string `envconfig:"AD_DB_PATH" default:"./data/tasks.db"`

	ShutdownTimeout time.Duration `envconfig:"AD_SHUTDOWN_TIMEOUT" default:"30s"`

	LogLevel  string `envconfig:"AD_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"AD_LOG_FORMAT" default:"json"`
}

// Validate checks the configuration for invalid or missing values.
// Returns an error describing the first invalid setting found.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	if c.WorkerPoolSize <= 0 {
		return fmt.Errorf("worker pool size must be positive: %d", c.WorkerPoolSize)
	}

	if c.QueueCapacity <= 0 {
		return fmt.Errorf("queue capacity must be positive: %d", c.QueueCapacity)
	}

	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive: %d", c.MaxFileSize)
	}

	if c.DownloadTimeout <= 0 {
		return fmt.Errorf("download timeout must be positive: %s", c.DownloadTimeout)
	}

	if c.DBPath == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	return nil
}
