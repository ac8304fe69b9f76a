package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	URL           string
	MaxConns      int32
	RunMigrations bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// SweepConfig controls the daily lease sweep. Hour and Minute are server local time.
type SweepConfig struct {
	Hour    uint
	Minute  uint
	LockTTL time.Duration
}

type Config struct {
	ServiceName       string
	LogLevel          string
	Server            ServerConfig
	Database          DatabaseConfig
	Redis             RedisConfig
	Minio             MinioConfig
	Kafka             KafkaConfig
	JWTSecret         string
	Sweep             SweepConfig
	StrictTransitions bool
}

// Load reads configuration from the environment. A .env file in the working directory is optional.
func Load() (*Config, error) {
	_ = godotenv.Load()

	hour, minute, err := parseClock(getEnv("SWEEP_AT", "00:00"))
	if err != nil {
		return nil, fmt.Errorf("SWEEP_AT: %w", err)
	}

	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "rentflow"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:           os.Getenv("DATABASE_URL"),
			MaxConns:      int32(getEnvAsInt("DATABASE_MAX_CONNS", 10)),
			RunMigrations: getEnvAsBool("RUN_MIGRATIONS", true),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
			Bucket:    getEnv("MINIO_BUCKET", "rentflow-documents"),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsList("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_TOPIC", "rentflow.lifecycle"),
		},
		JWTSecret: os.Getenv("JWT_SECRET"),
		Sweep: SweepConfig{
			Hour:    hour,
			Minute:  minute,
			LockTTL: getEnvAsDuration("SWEEP_LOCK_TTL", 10*time.Minute),
		},
		StrictTransitions: getEnvAsBool("STRICT_TRANSITIONS", false),
	}

	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func parseClock(raw string) (uint, uint, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", raw)
	}
	return uint(t.Hour()), uint(t.Minute()), nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
