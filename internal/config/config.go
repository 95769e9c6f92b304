package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DBConfig holds the Postgres connection settings.
type DBConfig struct {
	URL         string
	MaxOpenConn int
	ConnMaxIdle time.Duration
}

// SMTPConfig holds the outbound mail transport settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// KafkaConfig holds the status-event producer settings.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	Enabled bool
}

// AutomationConfig is passed explicitly into the engine and the scheduler.
// There is no ambient global state; everything the pass needs travels here.
type AutomationConfig struct {
	Enabled          bool
	Interval         time.Duration
	RuleConcurrency  int
	OrderConcurrency int
	ChunkDelay       time.Duration
	Timezone         string
}

// Config is the full application configuration.
type Config struct {
	Port       string
	DB         DBConfig
	SMTP       SMTPConfig
	Kafka      KafkaConfig
	Automation AutomationConfig
}

// LoadConfig reads configuration from environment variables. Defaults are
// chosen so a local run against docker-compose works without a .env file.
func LoadConfig() (Config, error) {
	dbURL := os.Getenv("ORDERFLOW_DB_URL")
	if dbURL == "" {
		return Config{}, fmt.Errorf("ORDERFLOW_DB_URL is required")
	}

	cfg := Config{
		Port: envOr("ORDERFLOW_PORT", "8080"),
		DB: DBConfig{
			URL:         dbURL,
			MaxOpenConn: envInt("ORDERFLOW_DB_MAX_OPEN", 10),
			ConnMaxIdle: envDuration("ORDERFLOW_DB_CONN_IDLE", 5*time.Minute),
		},
		SMTP: SMTPConfig{
			Host:     envOr("ORDERFLOW_SMTP_HOST", "localhost"),
			Port:     envInt("ORDERFLOW_SMTP_PORT", 587),
			Username: os.Getenv("ORDERFLOW_SMTP_USER"),
			Password: os.Getenv("ORDERFLOW_SMTP_PASS"),
			From:     envOr("ORDERFLOW_SMTP_FROM", "orders@example.com"),
		},
		Kafka: KafkaConfig{
			Brokers: []string{envOr("ORDERFLOW_KAFKA_BROKERS", "localhost:9092")},
			Topic:   envOr("ORDERFLOW_KAFKA_TOPIC", "order.status.changed"),
			Enabled: envBool("ORDERFLOW_KAFKA_ENABLED", false),
		},
		Automation: AutomationConfig{
			Enabled:          envBool("ORDERFLOW_AUTOMATION_ENABLED", true),
			Interval:         envDuration("ORDERFLOW_AUTOMATION_INTERVAL", 15*time.Minute),
			RuleConcurrency:  envInt("ORDERFLOW_RULE_CONCURRENCY", 3),
			OrderConcurrency: envInt("ORDERFLOW_ORDER_CONCURRENCY", 5),
			ChunkDelay:       envDuration("ORDERFLOW_CHUNK_DELAY", 0),
			Timezone:         envOr("ORDERFLOW_TIMEZONE", "America/New_York"),
		},
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}
