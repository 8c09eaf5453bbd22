// Package config defines environment configuration structs and loaders.
package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type AppConfig struct {
	ServerEnvConfig
	StorageEnvConfig
	RedisEnvConfig
	RankingEnvConfig
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
}

func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ServerEnvConfig configures the HTTP server.
type ServerEnvConfig struct {
	Address       string `env:"RANKER_HOST" envDefault:"0.0.0.0"`
	Port          int    `env:"RANKER_PORT" envDefault:"8080"`
	BodySizeLimit int    `env:"SERVER_BODY_LIMIT" envDefault:"1048576"`
}

// StorageEnvConfig selects where spreadsheets are read from.
type StorageEnvConfig struct {
	Backend string `env:"STORAGE_BACKEND" envDefault:"s3"`

	S3Bucket          string `env:"S3_BUCKET" envDefault:"financialdataexcelfiles"`
	S3Region          string `env:"S3_REGION" envDefault:"us-west-2"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`

	DataDir string `env:"DATA_DIR" envDefault:"./data"`

	HTTPBaseURL  string        `env:"HTTP_SOURCE_URL"`
	HTTPRetryMax int           `env:"HTTP_SOURCE_RETRY_MAX" envDefault:"3"`
	HTTPTimeout  time.Duration `env:"HTTP_SOURCE_TIMEOUT" envDefault:"30s"`
}

// RedisEnvConfig configures the optional ranking result cache.
type RedisEnvConfig struct {
	CacheEnabled  bool          `env:"CACHE_ENABLED" envDefault:"false"`
	RedisHost     string        `env:"REDIS_HOST" envDefault:"127.0.0.1"`
	RedisPort     int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	RedisUsername string        `env:"REDIS_USERNAME"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"10m"`
}

// RankingEnvConfig holds the defaults applied when a request does not
// override them.
type RankingEnvConfig struct {
	Weights          []float64 `env:"RANKING_WEIGHTS" envSeparator:"," envDefault:"0.2,0.2,0.15,0.15,0.2,0.1"`
	Indifference     float64   `env:"RANKING_INDIFFERENCE" envDefault:"0.05"`
	Preference       float64   `env:"RANKING_PREFERENCE" envDefault:"0.15"`
	Veto             float64   `env:"RANKING_VETO" envDefault:"0.4"`
	DegeneratePolicy string    `env:"RANKING_DEGENERATE_POLICY" envDefault:"tie"`
	ProfilePath      string    `env:"RANKING_PROFILE"`
}

type TimeoutConfig struct {
	RequestTimeout time.Duration
	FetchTimeout   time.Duration
}

var (
	DevTimeoutConfig = &TimeoutConfig{
		RequestTimeout: 2 * time.Minute,
		FetchTimeout:   time.Minute,
	}
	TestTimeoutConfig = &TimeoutConfig{
		RequestTimeout: 10 * time.Second,
		FetchTimeout:   5 * time.Second,
	}
	ProdTimeoutConfig = &TimeoutConfig{
		RequestTimeout: 30 * time.Second,
		FetchTimeout:   20 * time.Second,
	}
)

func NewTimeoutConfig(environment string) *TimeoutConfig {
	switch strings.ToLower(environment) {
	case "dev":
		return DevTimeoutConfig
	case "test":
		return TestTimeoutConfig
	case "prod":
		return ProdTimeoutConfig
	}

	return DevTimeoutConfig
}
