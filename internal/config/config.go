package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr     string
	MetricsAddr  string
	PostgresDSN  string
	RedisAddr    string
	KafkaBrokers []string
	OTLPEndpoint string

	NotificationsTopic string
	KafkaGroupID       string

	JWTSecret         string
	AdminUsername     string
	AdminPasswordHash string
	AdminTokenTTL     time.Duration

	TxTimeout    time.Duration
	TxMaxRetries int

	RaffleCacheTTL   time.Duration
	SearchRateLimit  int
	SearchRateWindow time.Duration
	BrandName        string
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPassword     string
	EmailFrom        string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load .env file, using default values", "error", err)
	}

	cfg := &Config{
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		MetricsAddr:  getEnv("METRICS_ADDR", ":9090"),
		PostgresDSN:  getEnv("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=raffles sslmode=disable"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers: splitList(getEnv("KAFKA_BROKER", "localhost:9092")),
		OTLPEndpoint: os.Getenv("OTLP_ENDPOINT"),

		NotificationsTopic: getEnv("NOTIFICATIONS_TOPIC", "notifications"),
		KafkaGroupID:       getEnv("KAFKA_GROUP_ID", "raffle-mailer"),

		JWTSecret:         getEnv("JWT_SECRET", "supersecret"),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		AdminTokenTTL:     getEnvDuration("ADMIN_TOKEN_TTL", 12*time.Hour),

		TxTimeout:    getEnvDuration("TX_TIMEOUT", 5*time.Second),
		TxMaxRetries: getEnvInt("TX_MAX_RETRIES", 5),

		RaffleCacheTTL:   getEnvDuration("RAFFLE_CACHE_TTL", 30*time.Second),
		SearchRateLimit:  getEnvInt("SEARCH_RATE_LIMIT", 10),
		SearchRateWindow: getEnvDuration("SEARCH_RATE_WINDOW", time.Minute),
		BrandName:        getEnv("BRAND_NAME", "Rifas Gana Ya"),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         getEnvInt("SMTP_PORT", 465),
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		EmailFrom:        getEnv("EMAIL_FROM", "ventas@rifasganaya.pe"),
	}

	slog.Info("config loaded",
		"http_addr", cfg.HTTPAddr,
		"redis_addr", cfg.RedisAddr,
		"kafka_brokers", cfg.KafkaBrokers,
		"tx_timeout", cfg.TxTimeout,
		"tx_max_retries", cfg.TxMaxRetries)
	return cfg
}

func (c *Config) Validate() error {
	if c.PostgresDSN == "" {
		return fmt.Errorf("postgres dsn is required")
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("at least one kafka broker is required")
	}
	if c.TxTimeout <= 0 {
		return fmt.Errorf("tx timeout must be positive")
	}
	if c.TxMaxRetries < 0 {
		return fmt.Errorf("tx max retries must not be negative")
	}
	if c.SearchRateLimit <= 0 || c.SearchRateWindow <= 0 {
		return fmt.Errorf("search rate limit and window must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		slog.Warn("invalid integer in env, using default", "key", key, "value", value)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("invalid duration in env, using default", "key", key, "value", value)
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
