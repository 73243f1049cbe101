package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// MemoryDBPath keeps profiles in memory only.
const MemoryDBPath = ":memory:"

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken        string        `envconfig:"BOT_TOKEN" required:"true"`
	TelegramTimeout time.Duration `envconfig:"TELEGRAM_TIMEOUT" default:"60s"` // must exceed the 30s long poll

	OpenAIKey        string        `envconfig:"OPENAI_API_KEY" required:"true"`
	OpenAIModel      string        `envconfig:"OPENAI_MODEL" default:"gpt-4"`
	OpenAIBaseURL    string        `envconfig:"OPENAI_BASE_URL"`
	OpenAIMaxRetries int           `envconfig:"OPENAI_MAX_RETRIES" default:"2"`
	GenerateTimeout  time.Duration `envconfig:"GENERATE_TIMEOUT" default:"90s"`

	DBPath      string `envconfig:"DB_PATH" default:"./data/etymology.db"` // or :memory:
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`              // debug|info|warn|error
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`           // json|console
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`             // healthz + metrics

	TickPeriod            time.Duration `envconfig:"TICK_PERIOD" default:"1h"`
	MaxConcurrency        int           `envconfig:"MAX_CONCURRENCY" default:"4"`
	EnhancedRatio         float64       `envconfig:"ENHANCED_RATIO" default:"0.4"`
	OnDemandResetsCadence bool          `envconfig:"ON_DEMAND_RESETS_CADENCE" default:"true"`
}

// Load reads an optional .env file, then environment variables into Config.
// Variables already set in the environment win over .env values.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges envconfig cannot express.
func (c Config) Validate() error {
	var errs []error
	if c.EnhancedRatio < 0 || c.EnhancedRatio > 1 {
		errs = append(errs, fmt.Errorf("ENHANCED_RATIO must be in [0,1], got %v", c.EnhancedRatio))
	}
	if c.TickPeriod <= 0 {
		errs = append(errs, fmt.Errorf("TICK_PERIOD must be positive, got %s", c.TickPeriod))
	}
	if c.MaxConcurrency < 1 {
		errs = append(errs, fmt.Errorf("MAX_CONCURRENCY must be at least 1, got %d", c.MaxConcurrency))
	}
	if c.GenerateTimeout <= 0 {
		errs = append(errs, fmt.Errorf("GENERATE_TIMEOUT must be positive, got %s", c.GenerateTimeout))
	}
	if c.OpenAIMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("OPENAI_MAX_RETRIES must not be negative, got %d", c.OpenAIMaxRetries))
	}
	if c.LogEncoding != "json" && c.LogEncoding != "console" {
		errs = append(errs, fmt.Errorf("LOG_ENCODING must be json or console, got %q", c.LogEncoding))
	}
	return errors.Join(errs...)
}
