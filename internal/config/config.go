package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Port         string `validate:"required,numeric"`
	DefaultLevel int    `validate:"min=1,max=63"` // domain level used when ?level= is absent
	MaxBodyBytes int64  `validate:"min=1"`        // cap for POST /api/visits bodies
	CORSOrigins  []string

	CacheBackend  string        `validate:"oneof=memory redis none"`
	CacheTTL      time.Duration // TTL for cached reports
	CacheMaxItems int           `validate:"min=0"`
	CacheSweepMin time.Duration
	CacheSweepMax time.Duration
	RedisAddr     string `validate:"required_if=CacheBackend redis"`
	RedisPassword string
	RedisDB       int `validate:"min=0"`

	RatePerSec int
	RateBurst  int

	LogLevel          string `validate:"oneof=debug info warn error"`
	LogOutput         string `validate:"oneof=stdout file both"`
	LogFilePath       string // ./logs/uri-analyzer.log
	LogFileMaxSize    int    // MB
	LogFileMaxBackups int    // files
	LogFileMaxAge     int    // days
	LogFileCompress   bool

	MetricsEnabled bool // expose /metrics and collect
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func Load() (Config, error) {
	c := Config{
		Port:         getenv("PORT", "8080"),
		DefaultLevel: getIntEnv("DEFAULT_LEVEL", 2),
		MaxBodyBytes: int64(getIntEnv("MAX_BODY_BYTES", 4<<20)),
		CORSOrigins:  getListEnv("CORS_ORIGINS", "*"),

		CacheBackend:  strings.ToLower(getenv("CACHE_BACKEND", "memory")),
		CacheTTL:      getDurationEnv("CACHE_TTL", "10m"),
		CacheMaxItems: getIntEnv("CACHE_MAX_ITEMS", 1024),
		CacheSweepMin: getDurationEnv("CACHE_SWEEP_MIN", "1s"),
		CacheSweepMax: getDurationEnv("CACHE_SWEEP_MAX", "1m"),
		RedisAddr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		RatePerSec: getIntEnv("RATE_PER_SEC", 10),
		RateBurst:  getIntEnv("RATE_BURST", 20),

		LogLevel:          strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogOutput:         strings.ToLower(getenv("LOG_OUTPUT", "stdout")),
		LogFilePath:       getenv("LOG_FILE_PATH", "./logs/uri-analyzer.log"),
		LogFileMaxSize:    getIntEnv("LOG_FILE_MAX_SIZE", 50),
		LogFileMaxBackups: getIntEnv("LOG_FILE_MAX_BACKUPS", 5),
		LogFileMaxAge:     getIntEnv("LOG_FILE_MAX_AGE", 28),
		LogFileCompress:   getBoolEnv("LOG_FILE_COMPRESS", true),

		MetricsEnabled: getBoolEnv("METRICS_ENABLED", true),
	}

	if err := validate.Struct(c); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if c.RatePerSec <= 0 {
		c.RatePerSec = 1
	}
	if c.RateBurst < c.RatePerSec {
		c.RateBurst = c.RatePerSec
	}
	if c.CacheSweepMax < c.CacheSweepMin {
		c.CacheSweepMax = c.CacheSweepMin
	}
	return c, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getDurationEnv(env, def string) time.Duration {
	if v := os.Getenv(env); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	d, _ := time.ParseDuration(def)
	return d
}

func getBoolEnv(env string, def bool) bool {
	if v := os.Getenv(env); v != "" {
		s := strings.ToLower(v)
		return s == "1" || s == "true" || s == "yes" || s == "y"
	}
	return def
}

func getIntEnv(env string, def int) int {
	if v := os.Getenv(env); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// getListEnv splits a comma separated value, dropping empty items.
func getListEnv(env, def string) []string {
	var out []string
	for _, p := range strings.Split(getenv(env, def), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
