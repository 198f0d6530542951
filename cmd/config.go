package cmd

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// Internal intake ledger. An empty LedgerDSN disables the internal feed.
	LedgerDSN            string
	LedgerTable          string
	LedgerReadyStatus    string
	LedgerCanceledStatus string

	// An empty KafkaHost disables vendor intake and falls back to the log notifier.
	KafkaHost               string
	KafkaConsumerGroup      string
	KafkaVendorOrdersTopic  string
	KafkaNotificationsTopic string

	// An empty RedisURL runs the sync job without a lease.
	RedisURL     string
	SyncSchedule string

	ProofDir     string
	ProofBaseURL string

	NotificationTemplates string
	NotificationTimeout   time.Duration
	StorageTimeout        time.Duration

	LogLevel string
}

const (
	DefaultSyncSchedule        = "0 * * * * *"
	DefaultNotificationTimeout = 10 * time.Second
	DefaultStorageTimeout      = 30 * time.Second
	DefaultProofDir            = "./proofs"
)

// DSN is the gorm postgres connection string of the task store.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// KafkaBrokers splits KafkaHost on commas.
func (c Config) KafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaHost, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// ProofPath is the URL path the proof directory is served under.
func (c Config) ProofPath() (string, error) {
	u, err := url.Parse(c.ProofBaseURL)
	if err != nil {
		return "", fmt.Errorf("PROOF_BASE_URL: %w", err)
	}
	path := strings.TrimRight(u.Path, "/")
	if path == "" {
		return "", fmt.Errorf("PROOF_BASE_URL %q must include a path such as /proofs", c.ProofBaseURL)
	}
	return path, nil
}

// SlogLevel maps LOG_LEVEL onto slog; unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseDuration reads a Go duration, falling back to def when raw is empty.
func ParseDuration(key, raw string, def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}
