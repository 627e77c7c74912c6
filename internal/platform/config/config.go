// Package config builds runtime configuration from environment variables so
// main stays lean. Every knob has a default that works for local development.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates per-concern configuration.
type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	Postgres   PostgresConfig
	Kafka      KafkaConfig
	Access     AccessConfig
	Moderation ModerationConfig
}

// ServerConfig captures the ops HTTP server configuration.
type ServerConfig struct {
	Addr string
	// OpsTokenSigningKey verifies the service tokens guarding admin routes.
	OpsTokenSigningKey string
}

// RedisConfig captures Redis connection settings for the decision cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig captures PostgreSQL connection settings.
type PostgresConfig struct {
	DSN      string
	MaxConns int
}

// KafkaConfig captures event bus settings.
type KafkaConfig struct {
	Brokers []string
	// GroupID names the invalidation dispatcher's consumer group.
	GroupID string
	// SkipTopicEnsure disables startup topic creation (set in environments
	// where topics are provisioned out of band).
	SkipTopicEnsure bool
}

// AccessConfig tunes the access evaluator.
type AccessConfig struct {
	// DecisionTTL bounds how long a cached allow/deny may live. Eviction on
	// revocation is the primary consistency mechanism; this TTL is the
	// safety net.
	DecisionTTL time.Duration
	// PolicyTTL bounds the policy-acceptance check cache. Kept short so
	// newly published policies gate writes promptly. Zero disables caching
	// for this check.
	PolicyTTL time.Duration
}

// ModerationConfig tunes the report threshold engine.
type ModerationConfig struct {
	// ReportThreshold is the distinct-reporter count that triggers the
	// automatic action.
	ReportThreshold int
	// DuplicateWindow suppresses repeat reports from one reporter against
	// the same target at ingestion.
	DuplicateWindow time.Duration
	// EvaluationWindow is the aggregation horizon for the distinct-reporter
	// count. Independent of DuplicateWindow and typically wider.
	EvaluationWindow time.Duration
	// SanctionDuration bounds automatic user suspensions.
	SanctionDuration time.Duration
}

// FromEnv builds the full configuration from environment variables.
func FromEnv() Config {
	return Config{
		Server: ServerConfig{
			Addr:               envStr("COMMUNE_ADDR", ":8080"),
			OpsTokenSigningKey: envStr("COMMUNE_OPS_SIGNING_KEY", "dev-secret-key-change-in-production"),
		},
		Redis: RedisConfig{
			URL:          envStr("COMMUNE_REDIS_URL", ""),
			PoolSize:     envInt("COMMUNE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("COMMUNE_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("COMMUNE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("COMMUNE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("COMMUNE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			DSN:      envStr("COMMUNE_POSTGRES_DSN", ""),
			MaxConns: envInt("COMMUNE_POSTGRES_MAX_CONNS", 10),
		},
		Kafka: KafkaConfig{
			Brokers:         envList("COMMUNE_KAFKA_BROKERS", nil),
			GroupID:         envStr("COMMUNE_KAFKA_GROUP_ID", "commune-access-invalidation"),
			SkipTopicEnsure: envStr("COMMUNE_KAFKA_SKIP_TOPIC_ENSURE", "") == "true",
		},
		Access: AccessConfig{
			DecisionTTL: envDuration("COMMUNE_ACCESS_DECISION_TTL", 5*time.Minute),
			PolicyTTL:   envDuration("COMMUNE_ACCESS_POLICY_TTL", 30*time.Second),
		},
		Moderation: ModerationConfig{
			ReportThreshold:  envInt("COMMUNE_MODERATION_THRESHOLD", 3),
			DuplicateWindow:  envDuration("COMMUNE_MODERATION_DUPLICATE_WINDOW", 24*time.Hour),
			EvaluationWindow: envDuration("COMMUNE_MODERATION_EVALUATION_WINDOW", 7*24*time.Hour),
			SanctionDuration: envDuration("COMMUNE_MODERATION_SANCTION_DURATION", 72*time.Hour),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
