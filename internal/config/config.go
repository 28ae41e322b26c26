package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string `env:"PORT" env-default:"3000"`
	MySQLDSN    string `env:"MYSQL_DSN" env-default:"user:password@tcp(localhost:3306)/advanced_api?charset=utf8mb4&parseTime=True&loc=Local"`
	RedisAddr   string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisDB     int    `env:"REDIS_DB" env-default:"0"`
	RedisPass   string `env:"REDIS_PASSWORD"`
	SwaggerHost string `env:"SWAGGER_HOST"`
	ResetDB     bool   `env:"RESET_DB" env-default:"false"`

	JWT       JWT
	TMDB      TMDB
	RateLimit RateLimit
	Log       Log

	BodyLimit    string        `env:"BODY_LIMIT" env-default:"10M"`
	CacheTTL     time.Duration `env:"CACHE_TTL" env-default:"10m"`
	ProbeTimeout time.Duration `env:"PROBE_TIMEOUT" env-default:"10s"`
}

// JWT configures bearer credential signing.
type JWT struct {
	Secret     string        `env:"JWT_SECRET" env-default:"change-me"`
	AccessTTL  time.Duration `env:"JWT_ACCESS_TTL" env-default:"15m"`
	RefreshTTL time.Duration `env:"JWT_REFRESH_TTL" env-default:"168h"`
}

// TMDB configures the optional external movie provider. An empty APIKey disables it.
type TMDB struct {
	APIKey       string `env:"TMDB_API_KEY"`
	BaseURL      string `env:"TMDB_BASE_URL" env-default:"https://api.themoviedb.org/3"`
	ImageBaseURL string `env:"TMDB_IMAGE_BASE_URL" env-default:"https://image.tmdb.org/t/p/w500"`
	Language     string `env:"TMDB_LANGUAGE" env-default:"ar"`
}

// RateLimit is expressed the same way clients configure it: a window and a request budget per IP.
type RateLimit struct {
	WindowMS    int `env:"RATE_LIMIT_WINDOW_MS" env-default:"900000"`
	MaxRequests int `env:"RATE_LIMIT_MAX_REQUESTS" env-default:"100"`
}

// Log configures the process logger.
type Log struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
}

// Window returns the rate limit window as a duration.
func (r RateLimit) Window() time.Duration {
	return time.Duration(r.WindowMS) * time.Millisecond
}

// Load builds Config from an optional .env file and the environment.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if cfg.RateLimit.WindowMS <= 0 || cfg.RateLimit.MaxRequests <= 0 {
		return nil, fmt.Errorf("rate limit window and max requests must be positive")
	}
	return &cfg, nil
}

// ProviderEnabled reports whether the external movie provider is configured.
func (c *Config) ProviderEnabled() bool {
	return c.TMDB.APIKey != ""
}
