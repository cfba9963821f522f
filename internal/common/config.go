// Package common provides shared utilities for Vista
package common

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	toml "github.com/pelletier/go-toml/v2"
)

// Market data sources
const (
	SourceYahoo = "yahoo"
	SourceEODHD = "eodhd"
)

// Config holds all configuration for Vista
type Config struct {
	Environment     string                `toml:"environment"`
	Source          string                `toml:"source" validate:"oneof=yahoo eodhd"`
	Server          ServerConfig          `toml:"server"`
	Clients         ClientsConfig         `toml:"clients"`
	Recommendations RecommendationsConfig `toml:"recommendations"`
	Logging         LoggingConfig         `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port" validate:"min=1,max=65535"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Yahoo  YahooConfig  `toml:"yahoo"`
	EODHD  EODHDConfig  `toml:"eodhd"`
	Finviz FinvizConfig `toml:"finviz"`
}

// YahooConfig holds Yahoo Finance configuration
type YahooConfig struct {
	BaseURL   string `toml:"base_url" validate:"url"`
	UserAgent string `toml:"user_agent"`
	RateLimit int    `toml:"rate_limit" validate:"min=1"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	return parseTimeout(c.Timeout)
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url" validate:"url"`
	APIKey    string `toml:"api_key"`
	Exchange  string `toml:"exchange"`
	RateLimit int    `toml:"rate_limit" validate:"min=1"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	return parseTimeout(c.Timeout)
}

// FinvizConfig holds news page fetcher configuration
type FinvizConfig struct {
	BaseURL   string `toml:"base_url" validate:"url"`
	UserAgent string `toml:"user_agent"`
	RateLimit int    `toml:"rate_limit" validate:"min=1"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *FinvizConfig) GetTimeout() time.Duration {
	return parseTimeout(c.Timeout)
}

func parseTimeout(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// RecommendationsConfig controls how analyst grades become outcomes
type RecommendationsConfig struct {
	// Outcomes shown on the timeline when a request names none
	Outcomes []string `toml:"outcomes" validate:"min=1"`
	// Grades maps raw grades ("Outperform") to outcomes ("Buy")
	Grades map[string]string `toml:"grades"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level" validate:"oneof=trace debug info warn error"`
	Outputs  []string `toml:"outputs" validate:"dive,oneof=console stdout file"`
	FilePath string   `toml:"file_path"`
}

// envOverrides are read from VISTA_* environment variables
type envOverrides struct {
	Environment     string `envconfig:"ENV"`
	Source          string `envconfig:"SOURCE"`
	Host            string `envconfig:"HOST"`
	Port            int    `envconfig:"PORT"`
	LogLevel        string `envconfig:"LOG_LEVEL"`
	EODHDAPIKey     string `envconfig:"EODHD_API_KEY"`
	YahooBaseURL    string `envconfig:"YAHOO_BASE_URL"`
	FinvizUserAgent string `envconfig:"FINVIZ_USER_AGENT"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Source:      SourceYahoo,
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Clients: ClientsConfig{
			Yahoo: YahooConfig{
				BaseURL:   "https://query2.finance.yahoo.com",
				RateLimit: 5,
				Timeout:   "30s",
			},
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				Exchange:  "US",
				RateLimit: 10,
				Timeout:   "30s",
			},
			Finviz: FinvizConfig{
				BaseURL:   "https://finviz.com",
				UserAgent: "vista/1.0",
				RateLimit: 1,
				Timeout:   "30s",
			},
		},
		Recommendations: RecommendationsConfig{
			Outcomes: []string{"Buy", "Sell", "Neutral"},
			Grades: map[string]string{
				"Strong Buy":        "Buy",
				"Outperform":        "Buy",
				"Overweight":        "Buy",
				"Market Outperform": "Buy",
				"Sector Outperform": "Buy",
				"Positive":          "Buy",
				"Accumulate":        "Buy",
				"Hold":              "Neutral",
				"Equal-Weight":      "Neutral",
				"Market Perform":    "Neutral",
				"Sector Perform":    "Neutral",
				"Peer Perform":      "Neutral",
				"In-Line":           "Neutral",
				"Underperform":      "Sell",
				"Underweight":       "Sell",
				"Reduce":            "Sell",
				"Strong Sell":       "Sell",
				"Negative":          "Sell",
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Outputs:  []string{"console"},
			FilePath: "logs/vista.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// A .env file in the working directory is loaded first when present.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	_ = godotenv.Load()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies VISTA_* environment variables to config
func applyEnvOverrides(config *Config) error {
	var env envOverrides
	if err := envconfig.Process("VISTA", &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if env.Environment != "" {
		config.Environment = env.Environment
	}
	if env.Source != "" {
		config.Source = strings.ToLower(env.Source)
	}
	if env.Host != "" {
		config.Server.Host = env.Host
	}
	if env.Port != 0 {
		config.Server.Port = env.Port
	}
	if env.LogLevel != "" {
		config.Logging.Level = env.LogLevel
	}
	if env.YahooBaseURL != "" {
		config.Clients.Yahoo.BaseURL = env.YahooBaseURL
	}
	if env.FinvizUserAgent != "" {
		config.Clients.Finviz.UserAgent = env.FinvizUserAgent
	}

	// the provider's own variable name is accepted too
	if env.EODHDAPIKey != "" {
		config.Clients.EODHD.APIKey = env.EODHDAPIKey
	} else if key := os.Getenv("EODHD_API_KEY"); key != "" {
		config.Clients.EODHD.APIKey = key
	}
	return nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Source == SourceEODHD && c.Clients.EODHD.APIKey == "" {
		return fmt.Errorf("invalid configuration: source %q requires clients.eodhd.api_key or EODHD_API_KEY", c.Source)
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
