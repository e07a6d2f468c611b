// Package config builds runtime configuration from environment variables so
// main stays lean. Empty backend settings disable the backend rather than
// erroring: the service degrades to in-memory collaborators for local runs.
package config

import (
	"os"
	"strings"
	"time"
)

// Config is the full server configuration.
type Config struct {
	Addr string

	// PrimaryDatabaseURL points at the current marketplace schema;
	// LegacyDatabaseURL at the pre-migration tables. They may be the same
	// database.
	PrimaryDatabaseURL string
	LegacyDatabaseURL  string

	Redis RedisConfig

	// KafkaBrokers empty disables the Kafka audit sink.
	KafkaBrokers    []string
	KafkaAuditTopic string

	JWTSigningKey string

	// OperatorTokenHash is the bcrypt hash gating POST /evidence/verify.
	// Empty disables the endpoint.
	OperatorTokenHash string

	ReceiptTTL time.Duration
}

// RedisConfig configures the receipt store connection.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv reads configuration from the environment, applying defaults.
func FromEnv() Config {
	cfg := Config{
		Addr:               envOr("DOSSIER_ADDR", ":8080"),
		PrimaryDatabaseURL: os.Getenv("DOSSIER_PRIMARY_DATABASE_URL"),
		LegacyDatabaseURL:  os.Getenv("DOSSIER_LEGACY_DATABASE_URL"),
		KafkaAuditTopic:    envOr("DOSSIER_KAFKA_AUDIT_TOPIC", "dossier.audit.v1"),
		JWTSigningKey:      envOr("DOSSIER_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		OperatorTokenHash:  os.Getenv("DOSSIER_OPERATOR_TOKEN_HASH"),
		ReceiptTTL:         durationOr("DOSSIER_RECEIPT_TTL", 24*time.Hour),
		Redis: RedisConfig{
			URL:          os.Getenv("DOSSIER_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}

	if brokers := os.Getenv("DOSSIER_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
