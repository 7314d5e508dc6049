package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

type Config struct {
	Port        string
	APIBaseURL  string
	HTTPTimeout time.Duration
	LogLevel    slog.Level

	StoreBackend string
	StoreDir     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PipelineModel string
}

// FromEnv reads the process environment; call godotenv.Load first to honor a .env file.
func FromEnv() Config {
	// 0 leaves backend calls bounded by the request context only.
	var to time.Duration
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil && d >= 0 {
			to = d
		}
	}
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	backend := strings.ToLower(envOr("STORE_BACKEND", BackendFile))
	switch backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		backend = BackendFile
	}
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return Config{
		Port:          envOr("PORT", "8080"),
		APIBaseURL:    envOr("API_BASE_URL", "http://127.0.0.1:8000"),
		HTTPTimeout:   to,
		LogLevel:      lvl,
		StoreBackend:  backend,
		StoreDir:      envOr("STORE_DIR", "./data/localstorage"),
		RedisAddr:     envOr("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       db,
		PipelineModel: os.Getenv("PIPELINE_MODEL"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
