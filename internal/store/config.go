package store

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Asset describes one of the two narrated assets.
type Asset struct {
	ID            string `yaml:"id"`
	Symbol        string `yaml:"symbol"`
	Name          string `yaml:"name"`
	PriceDecimals int    `yaml:"price_decimals"`
}

type Config struct {
	Assets struct {
		Primary   Asset `yaml:"primary"`
		Secondary Asset `yaml:"secondary"`
	} `yaml:"assets"`
	MarketData struct {
		BaseURL           string  `yaml:"base_url"`
		VsCurrency        string  `yaml:"vs_currency"`
		WindowDays        int     `yaml:"window_days"`
		Interval          string  `yaml:"interval"`
		RequestsPerMinute float64 `yaml:"requests_per_minute"`
	} `yaml:"market_data"`
	Indicators struct {
		RSIPeriod int `yaml:"rsi_period"`
	} `yaml:"indicators"`
	LLM struct {
		Provider    string  `yaml:"provider"`
		Model       string  `yaml:"model"`
		Endpoint    string  `yaml:"endpoint"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`

		// Request timeout for the generation service.
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"llm"`
	Webhook struct {
		DefaultURL string `yaml:"default_url"`
		MaxChars   int    `yaml:"max_chars"`
	} `yaml:"webhook"`
	UI struct {
		ChartWidth int `yaml:"chart_width"`
	} `yaml:"ui"`

	// Secrets never come from the YAML file.
	Secrets Secrets `yaml:"-"`
}

// Secrets and overrides read from the process environment.
type Secrets struct {
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	CoinGeckoAPIKey string `envconfig:"COINGECKO_API_KEY"`
	WebhookURL      string `envconfig:"DISCORD_WEBHOOK_URL"`
	LLMProvider     string `envconfig:"LLM_PROVIDER"`
	LLMModel        string `envconfig:"LLM_MODEL"`
	MarketDataURL   string `envconfig:"MARKET_DATA_URL"`
}

func (c *Config) Validate() error {
	if c.Assets.Primary.ID == "" || c.Assets.Secondary.ID == "" {
		return errors.New("assets.primary.id and assets.secondary.id are required")
	}
	if c.Assets.Primary.ID == c.Assets.Secondary.ID {
		return fmt.Errorf("assets must differ, both are '%s'", c.Assets.Primary.ID)
	}
	if c.MarketData.WindowDays < 2 {
		return fmt.Errorf("market_data.window_days must be at least 2, got %d", c.MarketData.WindowDays)
	}
	if c.Indicators.RSIPeriod <= 0 {
		return fmt.Errorf("indicators.rsi_period must be positive, got %d", c.Indicators.RSIPeriod)
	}
	switch c.LLM.Provider {
	case "OPENAI", "CLAUDE", "NOOP":
	default:
		return fmt.Errorf("llm.provider must be 'OPENAI', 'CLAUDE' or 'NOOP', got '%s'", c.LLM.Provider)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0-2, got %.2f", c.LLM.Temperature)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return fmt.Errorf("llm.timeout_seconds must be positive, got %d", c.LLM.TimeoutSeconds)
	}
	return nil
}

// DefaultTemperature is used when the config file has no llm.temperature key.
const DefaultTemperature float32 = 0.9

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := seeded()
	c.applyDefaults()
	return c
}

// seeded returns a Config holding defaults for keys where zero is a valid
// setting. The YAML decoder only overwrites keys present in the file, so an
// explicit zero survives.
func seeded() *Config {
	var c Config
	c.LLM.Temperature = DefaultTemperature
	return &c
}

func (c *Config) applyDefaults() {
	if c.Assets.Primary.ID == "" {
		c.Assets.Primary = Asset{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin", PriceDecimals: 0}
	}
	if c.Assets.Secondary.ID == "" {
		c.Assets.Secondary = Asset{ID: "cardano", Symbol: "ADA", Name: "Cardano", PriceDecimals: 3}
	}
	if c.MarketData.BaseURL == "" {
		c.MarketData.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if c.MarketData.VsCurrency == "" {
		c.MarketData.VsCurrency = "usd"
	}
	if c.MarketData.WindowDays == 0 {
		c.MarketData.WindowDays = 90
	}
	if c.MarketData.Interval == "" {
		c.MarketData.Interval = "daily"
	}
	if c.MarketData.RequestsPerMinute == 0 {
		c.MarketData.RequestsPerMinute = 25
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "OPENAI"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 350
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 60
	}
	if c.Webhook.MaxChars == 0 {
		c.Webhook.MaxChars = 2000
	}
	if c.UI.ChartWidth == 0 {
		c.UI.ChartWidth = 60
	}
}

// applyEnv overlays the environment onto the file configuration.
func (c *Config) applyEnv() error {
	if err := envconfig.Process("", &c.Secrets); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	if v := c.Secrets.LLMProvider; v != "" {
		c.LLM.Provider = v
	}
	if v := c.Secrets.LLMModel; v != "" {
		c.LLM.Model = v
	}
	if v := c.Secrets.MarketDataURL; v != "" {
		c.MarketData.BaseURL = v
	}
	if v := c.Secrets.WebhookURL; v != "" {
		c.Webhook.DefaultURL = v
	}
	c.LLM.Provider = strings.ToUpper(c.LLM.Provider)
	return nil
}

// LoadConfig reads path (missing file means defaults), applies environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	c := seeded()
	b, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if len(b) > 0 {
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	c.applyDefaults()
	if err := c.applyEnv(); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}
