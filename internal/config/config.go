package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	DatabaseURL     string
	RedisURL        string
	NATSURL         string
	JWTSecret       string
	JudgeURL        string
	JudgeTimeout    time.Duration
	JudgeMemoryMB   int
	MetricsCacheTTL time.Duration
	SeedEnabled     bool
	SeedToken       string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LEETPI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "LeetPi API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("judge.timeout_ms", 5000)
	v.SetDefault("judge.memory_mb", 256)
	v.SetDefault("metrics.cache_ttl", "5m")
	v.SetDefault("seed.enabled", false)

	ttlString := v.GetString("metrics.cache_ttl")
	if ttlString == "" {
		ttlString = "5m"
	}
	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid metrics cache ttl: %w", err)
	}

	timeoutMs := v.GetInt("judge.timeout_ms")
	if timeoutMs <= 0 {
		timeoutMs = 5000
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		DatabaseURL:     v.GetString("database.url"),
		RedisURL:        v.GetString("redis.url"),
		NATSURL:         v.GetString("nats.url"),
		JWTSecret:       v.GetString("jwt.secret"),
		JudgeURL:        v.GetString("judge.url"),
		JudgeTimeout:    time.Duration(timeoutMs) * time.Millisecond,
		JudgeMemoryMB:   v.GetInt("judge.memory_mb"),
		MetricsCacheTTL: ttl,
		SeedEnabled:     v.GetBool("seed.enabled"),
		SeedToken:       v.GetString("seed.token"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}
	if cfg.JudgeURL == "" {
		return Config{}, fmt.Errorf("judge url must be provided")
	}
	if cfg.JudgeMemoryMB <= 0 {
		cfg.JudgeMemoryMB = 256
	}

	return cfg, nil
}
