// Command execution for CLI commands.
//
// Information Hiding:
// - Settings, logger and provider wiring hidden
// - Storage backend selection hidden
// - Output formatting hidden

package cli

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/richinex/tinytales/config"
	"github.com/richinex/tinytales/dedup"
	"github.com/richinex/tinytales/generator"
	"github.com/richinex/tinytales/internal/logging"
	"github.com/richinex/tinytales/internal/metrics"
	"github.com/richinex/tinytales/llm"
	"github.com/richinex/tinytales/storage"
)

// Options holds CLI execution options.
type Options struct {
	Provider   string
	ConfigPath string
	Verbose    bool
	NoColor    bool
}

// App bundles everything a command needs. Build one with Setup, or by hand
// in tests.
type App struct {
	Settings config.Settings
	Logger   *zap.Logger
	Metrics  *metrics.Collector
	Printer  *Printer
	Store    storage.Store
	Counter  storage.Counter
	// Client sends prompts to the configured model.
	Client       generator.TextGenerator
	ProviderName string
	// Out receives story text; defaults to the printer's output.
	Out io.Writer
}

// Setup loads settings and builds the logger, metrics, model client and
// store. Callers must Close the returned App.
func Setup(opts Options) (*App, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Provider != "" {
		settings.LLM.Provider = config.NormalizeProvider(opts.Provider)
		if err := settings.Validate(); err != nil {
			return nil, err
		}
	}
	if opts.Verbose {
		settings.Log.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:      settings.Log.Level,
		Encoding:   settings.Log.Encoding,
		OutputPath: settings.Log.OutputPath,
	})
	if err != nil {
		return nil, err
	}

	collector := metrics.New()

	provider, err := createProvider(settings, logger)
	if err != nil {
		return nil, err
	}
	client := llm.NewClient(provider,
		llm.WithTimeout(settings.LLM.Timeout.Std()),
		llm.WithLogger(logger),
		llm.WithObserver(collector),
	)

	store, counter, err := storage.Open(settings.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open story store: %w", err)
	}

	printer := NewPrinter(os.Stdout, os.Stderr, !opts.NoColor)
	logger.Debug("cli ready",
		zap.String("provider", provider.Name()),
		zap.String("model", provider.Model()),
		zap.String("storage", settings.Storage.Backend))

	return &App{
		Settings:     settings,
		Logger:       logger,
		Metrics:      collector,
		Printer:      printer,
		Store:        store,
		Counter:      counter,
		Client:       client,
		ProviderName: provider.Name(),
	}, nil
}

// Close releases the store and flushes the logger.
func (a *App) Close() error {
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// Generator builds an orchestrator sharing history. A nil history gets a
// fresh one sized by the settings.
func (a *App) Generator(history *dedup.History, seed bool) *generator.Generator {
	if history == nil {
		history = dedup.NewHistory(dedup.WithLimit(a.Settings.Generation.HistoryLimit))
	}

	opts := []generator.Option{
		generator.WithLogger(a.logger()),
		generator.WithThreshold(a.Settings.Generation.DuplicateThreshold),
	}
	if a.Metrics != nil {
		opts = append(opts, generator.WithMetrics(a.Metrics))
	}
	if !seed || !a.Settings.Generation.Seed {
		opts = append(opts, generator.WithoutSeed())
	}
	return generator.New(a.Client, a.Counter, history, opts...)
}

func (a *App) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

func (a *App) out() io.Writer {
	if a.Out != nil {
		return a.Out
	}
	return a.Printer.out
}

// createProvider builds the model provider from settings. A missing API key
// is not an error here: the provider reports it on first use.
func createProvider(settings config.Settings, logger *zap.Logger) (llm.Provider, error) {
	providerType, err := llm.ParseProviderType(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}

	apiKey, err := config.APIKeyFor(settings.LLM.Provider)
	if err != nil {
		logger.Debug("no API key configured", zap.String("provider", settings.LLM.Provider), zap.Error(err))
	}

	s := settings.Sampling
	return providerType.
		Model(settings.Model()).
		BaseURL(settings.LLM.BaseURL).
		Sampling(llm.Sampling{
			Temperature:     s.Temperature,
			TopP:            s.TopP,
			TopK:            s.TopK,
			MaxOutputTokens: s.MaxOutputTokens,
			CandidateCount:  s.CandidateCount,
		}).
		APIKey(apiKey)
}
