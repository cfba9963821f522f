package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/vista/internal/cache"
	"github.com/bobmcallan/vista/internal/clients/eodhd"
	"github.com/bobmcallan/vista/internal/clients/finviz"
	"github.com/bobmcallan/vista/internal/clients/yahoo"
	"github.com/bobmcallan/vista/internal/common"
	"github.com/bobmcallan/vista/internal/interfaces"
	"github.com/bobmcallan/vista/internal/services/views"
)

// App holds the configured clients and the view service.
// It is the shared core used by cmd/vista-server and tests.
type App struct {
	Config      *common.Config
	Logger      arbor.ILogger
	Source      interfaces.MarketDataSource
	News        interfaces.NewsFetcher
	Cache       *cache.Cache
	Views       interfaces.ViewService
	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp loads configuration and initializes all clients and services.
// configPath may be empty, in which case VISTA_CONFIG, the binary directory
// and config/vista.toml are tried in that order.
func NewApp(configPath string) (*App, error) {
	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("VISTA_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "vista.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/vista.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative log file path to binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLogger(config.Logging)
	logger.Debug().Str("config", configPath).Msg("Configuration loaded")

	return New(config, logger)
}

// New wires clients and services from an already loaded configuration.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	start := time.Now()
	if logger == nil {
		logger = arbor.NewNoOpLogger()
	}

	source, err := newMarketDataSource(config, logger)
	if err != nil {
		return nil, err
	}

	finvizCfg := config.Clients.Finviz
	news := finviz.NewClient(
		finviz.WithBaseURL(finvizCfg.BaseURL),
		finviz.WithUserAgent(finvizCfg.UserAgent),
		finviz.WithRateLimit(finvizCfg.RateLimit),
		finviz.WithTimeout(finvizCfg.GetTimeout()),
		finviz.WithLogger(logger),
	)

	viewCache := cache.New()
	viewService := views.NewService(source, news, viewCache, views.Options{
		Outcomes: config.Recommendations.Outcomes,
		Grades:   config.Recommendations.Grades,
	}, logger)

	a := &App{
		Config:      config,
		Logger:      logger,
		Source:      source,
		News:        news,
		Cache:       viewCache,
		Views:       viewService,
		StartupTime: start,
	}

	logger.Info().
		Str("source", config.Source).
		Int64("startup_ms", time.Since(start).Milliseconds()).
		Msg("App initialized")

	return a, nil
}

// newMarketDataSource builds the client selected by config.Source.
func newMarketDataSource(config *common.Config, logger arbor.ILogger) (interfaces.MarketDataSource, error) {
	switch config.Source {
	case common.SourceYahoo, "":
		yc := config.Clients.Yahoo
		opts := []yahoo.ClientOption{
			yahoo.WithBaseURL(yc.BaseURL),
			yahoo.WithRateLimit(yc.RateLimit),
			yahoo.WithTimeout(yc.GetTimeout()),
			yahoo.WithLogger(logger),
		}
		if yc.UserAgent != "" {
			opts = append(opts, yahoo.WithUserAgent(yc.UserAgent))
		}
		return yahoo.NewClient(opts...), nil

	case common.SourceEODHD:
		ec := config.Clients.EODHD
		if ec.APIKey == "" {
			return nil, fmt.Errorf("eodhd source requires an API key")
		}
		opts := []eodhd.ClientOption{
			eodhd.WithBaseURL(ec.BaseURL),
			eodhd.WithRateLimit(ec.RateLimit),
			eodhd.WithTimeout(ec.GetTimeout()),
			eodhd.WithLogger(logger),
		}
		if ec.Exchange != "" {
			opts = append(opts, eodhd.WithExchange(ec.Exchange))
		}
		return eodhd.NewClient(ec.APIKey, opts...), nil

	default:
		return nil, fmt.Errorf("unknown market data source %q", config.Source)
	}
}

// Close releases resources held by the App.
func (a *App) Close() {
	if a.Views != nil {
		a.Views.Purge()
	}
}
