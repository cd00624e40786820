package config

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	APIKey             string        `env:"API_KEY,required"`
	AuthScheme         string        `env:"AUTH_SCHEME"` // empty accepts any scheme
	EventLogPath       string        `env:"EVENT_LOG_PATH" envDefault:"/var/lib/bbf-logging/bbf.log"`
	EventLogFsync      bool          `env:"EVENT_LOG_FSYNC" envDefault:"true"`
	MaxEventSize       int64         `env:"MAX_EVENT_SIZE_BYTES" envDefault:"1048576"` // 1MB
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	IngestServerAddr   string        `env:"INGEST_SERVER_ADDR" envDefault:":5000"`
	AdminServerAddr    string        `env:"ADMIN_SERVER_ADDR" envDefault:":9091"`
	RedisAddr          string        `env:"REDIS_ADDR"` // empty disables fan-out
	RedisStream        string        `env:"REDIS_STREAM" envDefault:"bbf_events"`
	RedisStreamMaxLen  int64         `env:"REDIS_STREAM_MAXLEN" envDefault:"100000"`
	PIIRedactionFields string        `env:"PII_REDACTION_FIELDS"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that struct tags cannot express.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("API_KEY must not be blank")
	}
	if strings.ContainsAny(c.APIKey, " \t\r\n") {
		return errors.New("API_KEY must not contain whitespace")
	}
	if c.EventLogPath == "" {
		return errors.New("EVENT_LOG_PATH must not be empty")
	}
	if c.MaxEventSize <= 0 {
		return errors.New("MAX_EVENT_SIZE_BYTES must be positive")
	}
	return nil
}

// RedactionFields splits PIIRedactionFields on commas.
func (c *Config) RedactionFields() []string {
	if c.PIIRedactionFields == "" {
		return nil
	}
	return strings.Split(c.PIIRedactionFields, ",")
}
