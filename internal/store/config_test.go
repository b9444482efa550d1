package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "COINGECKO_API_KEY", "DISCORD_WEBHOOK_URL", "LLM_PROVIDER", "LLM_MODEL", "MARKET_DATA_URL"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "bitcoin", cfg.Assets.Primary.ID)
	assert.Equal(t, "cardano", cfg.Assets.Secondary.ID)
	assert.Equal(t, 3, cfg.Assets.Secondary.PriceDecimals)
	assert.Equal(t, 90, cfg.MarketData.WindowDays)
	assert.Equal(t, 14, cfg.Indicators.RSIPeriod)
	assert.Equal(t, "OPENAI", cfg.LLM.Provider)
	assert.Equal(t, 350, cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.9, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, 60, cfg.LLM.TimeoutSeconds)
}

func TestLoadConfigFileAndEnvOverlay(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
assets:
  primary: {id: ethereum, symbol: ETH, name: Ethereum, price_decimals: 2}
llm:
  provider: claude
  model: claude-3-5-haiku-latest
`), 0o644))
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DISCORD_WEBHOOK_URL", "https://example.test/hook")
	t.Setenv("LLM_MODEL", "claude-sonnet")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "ethereum", cfg.Assets.Primary.ID)
	assert.Equal(t, "cardano", cfg.Assets.Secondary.ID)
	assert.Equal(t, "CLAUDE", cfg.LLM.Provider)
	assert.Equal(t, "claude-sonnet", cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.Secrets.OpenAIAPIKey)
	assert.Equal(t, "https://example.test/hook", cfg.Webhook.DefaultURL)
}

func TestLoadConfigKeepsExplicitZeroTemperature(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	zero := filepath.Join(dir, "zero.yaml")
	require.NoError(t, os.WriteFile(zero, []byte("llm:\n  temperature: 0\n"), 0o644))
	cfg, err := LoadConfig(zero)
	require.NoError(t, err)
	assert.Zero(t, cfg.LLM.Temperature)

	absent := filepath.Join(dir, "absent.yaml")
	require.NoError(t, os.WriteFile(absent, []byte("llm:\n  max_tokens: 200\n"), 0o644))
	cfg, err = LoadConfig(absent)
	require.NoError(t, err)
	assert.InDelta(t, DefaultTemperature, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, 200, cfg.LLM.MaxTokens)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"same assets", func(c *Config) { c.Assets.Secondary.ID = c.Assets.Primary.ID }},
		{"short window", func(c *Config) { c.MarketData.WindowDays = 1 }},
		{"bad period", func(c *Config) { c.Indicators.RSIPeriod = -1 }},
		{"bad provider", func(c *Config) { c.LLM.Provider = "GEMINI" }},
		{"hot temperature", func(c *Config) { c.LLM.Temperature = 3 }},
		{"no timeout", func(c *Config) { c.LLM.TimeoutSeconds = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("assets: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
