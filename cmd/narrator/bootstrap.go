package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"crypto-narrator/internal/api"
	"crypto-narrator/internal/challenge"
	"crypto-narrator/internal/engine"
	"crypto-narrator/internal/engine/engineobs"
	"crypto-narrator/internal/interfaces"
	"crypto-narrator/internal/llm/claude"
	"crypto-narrator/internal/llm/llmobs"
	"crypto-narrator/internal/llm/noop"
	"crypto-narrator/internal/llm/openai"
	"crypto-narrator/internal/logger"
	"crypto-narrator/internal/market/coingecko"
	"crypto-narrator/internal/market/marketobs"
	"crypto-narrator/internal/narrative"
	"crypto-narrator/internal/store"
	"crypto-narrator/internal/webhook"
	"crypto-narrator/internal/webhook/webhookobs"
)

// initializeSystem loads .env and initializes the logger and tracer.
// defaultLogFile is used when LOG_FILE is unset.
func initializeSystem(defaultLogFile string) error {
	// Load environment variables
	_ = godotenv.Load()

	if os.Getenv("LOG_FILE") == "" {
		_ = os.Setenv("LOG_FILE", defaultLogFile)
	}
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

func logConfigSummary(ctx context.Context, cfg *store.Config) {
	logger.Info(ctx, "Configuration loaded",
		"primary", cfg.Assets.Primary.ID,
		"secondary", cfg.Assets.Secondary.ID,
		"window_days", cfg.MarketData.WindowDays,
		"rsi_period", cfg.Indicators.RSIPeriod,
		"llm_provider", cfg.LLM.Provider,
		"llm_model", cfg.LLM.Model,
		"openai_key", logger.Mask(cfg.Secrets.OpenAIAPIKey),
		"anthropic_key", logger.Mask(cfg.Secrets.AnthropicAPIKey),
		"coingecko_key", logger.Mask(cfg.Secrets.CoinGeckoAPIKey),
		"webhook", logger.MaskURL(cfg.Webhook.DefaultURL),
	)
}

// initializeFetcher returns the CoinGecko fetcher with observability
func initializeFetcher(cfg *store.Config) interfaces.SeriesFetcher {
	return marketobs.Wrap(coingecko.NewFromConfig(cfg))
}

// initializeGenerator returns the configured LLM generator with observability
func initializeGenerator(ctx context.Context, cfg *store.Config) interfaces.Generator {
	var gen interfaces.Generator
	timeout := api.WithTimeout(time.Duration(cfg.LLM.TimeoutSeconds) * time.Second)

	switch cfg.LLM.Provider {
	case "OPENAI":
		gen = openai.New(cfg.Secrets.OpenAIAPIKey, cfg.LLM.Endpoint, timeout)
	case "CLAUDE":
		gen = claude.New(cfg.Secrets.AnthropicAPIKey, cfg.LLM.Endpoint, timeout)
	default:
		gen = noop.New()
		logger.Warn(ctx, "No LLM provider configured - using Noop generator (placeholder text)")
	}

	// Wrap with observability middleware
	return llmobs.Wrap(gen)
}

func initializeComposer(ctx context.Context, cfg *store.Config) *narrative.Composer {
	return narrative.New(initializeGenerator(ctx, cfg), narrative.Settings{
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Decimals:    [2]int{cfg.Assets.Primary.PriceDecimals, cfg.Assets.Secondary.PriceDecimals},
	})
}

// initializeSink returns the webhook sink with observability
func initializeSink(cfg *store.Config) interfaces.Sink {
	return webhookobs.Wrap(webhook.New(cfg.Webhook.MaxChars))
}

// initializeEngine initializes and returns the pipeline engine with observability
func initializeEngine(cfg *store.Config, gate *challenge.Gate, fetcher interfaces.SeriesFetcher, composer *narrative.Composer, sink interfaces.Sink) interfaces.Engine {
	// Create base engine
	eng := engine.New(cfg, gate, fetcher, composer, sink)

	// Wrap with observability middleware
	return engineobs.Wrap(eng)
}
