package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the FeedLens server.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Sentiment SentimentConfig
	Upload    UploadConfig
}

type ServerConfig struct {
	Port              int
	Env               string
	RateLimitPerMin   int
	BootstrapAdminKey string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// SentimentConfig configures the remote classification tier. The lexicon
// fallback needs no configuration.
type SentimentConfig struct {
	Provider    string
	Timeout     time.Duration
	MinInterval time.Duration
	CacheTTL    time.Duration
	HuggingFace HuggingFaceConfig
}

type HuggingFaceConfig struct {
	BaseURL  string
	Model    string
	APIToken string
}

type UploadConfig struct {
	MaxBytes int64
}

var validProviders = map[string]bool{
	"huggingface": true,
	"none":        true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:              envInt("FEEDLENS_PORT", 8080),
			Env:               envString("FEEDLENS_ENV", "development"),
			RateLimitPerMin:   envInt("RATE_LIMIT_PER_MIN", 60),
			BootstrapAdminKey: os.Getenv("FEEDLENS_BOOTSTRAP_ADMIN_KEY"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Sentiment: SentimentConfig{
			Provider:    envString("SENTIMENT_PROVIDER", "huggingface"),
			Timeout:     envDurationSecs("SENTIMENT_TIMEOUT_SECS", 30*time.Second),
			MinInterval: envDuration("SENTIMENT_MIN_INTERVAL", 100*time.Millisecond),
			CacheTTL:    envDuration("SENTIMENT_CACHE_TTL", 24*time.Hour),
			HuggingFace: HuggingFaceConfig{
				BaseURL:  envString("HUGGINGFACE_BASE_URL", "https://api-inference.huggingface.co"),
				Model:    envString("HUGGINGFACE_MODEL", "cardiffnlp/twitter-roberta-base-sentiment-latest"),
				APIToken: os.Getenv("HUGGINGFACE_API_TOKEN"),
			},
		},
		Upload: UploadConfig{
			MaxBytes: int64(envInt("UPLOAD_MAX_BYTES", 10<<20)),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if !validProviders[c.Sentiment.Provider] {
		return fmt.Errorf("SENTIMENT_PROVIDER must be one of huggingface, none; got %q", c.Sentiment.Provider)
	}
	if c.Sentiment.Provider == "huggingface" {
		u := c.Sentiment.HuggingFace.BaseURL
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("HUGGINGFACE_BASE_URL must start with http:// or https://, got %q", u)
		}
		if c.Sentiment.HuggingFace.Model == "" {
			return fmt.Errorf("HUGGINGFACE_MODEL must not be empty")
		}
	}
	if c.Sentiment.Timeout <= 0 {
		return fmt.Errorf("SENTIMENT_TIMEOUT_SECS must be positive")
	}
	if c.Sentiment.MinInterval < 0 {
		return fmt.Errorf("SENTIMENT_MIN_INTERVAL must not be negative")
	}
	if c.Sentiment.CacheTTL < 0 {
		return fmt.Errorf("SENTIMENT_CACHE_TTL must not be negative")
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
