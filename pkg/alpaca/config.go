package alpaca

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Default endpoints.
const (
	DefaultTradingBaseURL    = "https://paper-api.alpaca.markets"
	LiveTradingBaseURL       = "https://api.alpaca.markets"
	DefaultMarketDataBaseURL = "https://data.alpaca.markets"
	DefaultStreamBaseURL     = "wss://stream.data.alpaca.markets"
)

// Config represents client configuration for building an alpaca.Client.
//
// Credentials are sent as static headers on every REST request and in the
// handshake payload of every stream. They never appear in URLs or logs.
type Config struct {
	APIKeyID          string        `env:"APCA_API_KEY_ID"           json:"api_key_id"           yaml:"api_key_id"`
	APISecretKey      string        `env:"APCA_API_SECRET_KEY"       json:"-"                    yaml:"-"`
	TradingBaseURL    string        `env:"APCA_TRADING_BASE_URL"     envDefault:"https://paper-api.alpaca.markets" json:"trading_base_url"     yaml:"trading_base_url"`
	MarketDataBaseURL string        `env:"APCA_MARKET_DATA_BASE_URL" envDefault:"https://data.alpaca.markets"      json:"market_data_base_url" yaml:"market_data_base_url"`
	StreamBaseURL     string        `env:"APCA_STREAM_BASE_URL"      envDefault:"wss://stream.data.alpaca.markets" json:"stream_base_url"      yaml:"stream_base_url"`
	HTTPTimeout       time.Duration `env:"APCA_HTTP_TIMEOUT"         envDefault:"30s"                              json:"http_timeout"         yaml:"http_timeout"`
	// RequestsPerSecond paces outgoing REST requests on the client side.
	// Zero disables pacing.
	RequestsPerSecond float64 `env:"APCA_REQUESTS_PER_SECOND" json:"requests_per_second" yaml:"requests_per_second"`
	StreamBufferSize  int     `env:"APCA_STREAM_BUFFER_SIZE"  envDefault:"256"          json:"stream_buffer_size"  yaml:"stream_buffer_size"`
	UserAgent         string  `env:"APCA_USER_AGENT"          json:"user_agent"          yaml:"user_agent"`
	Debug             bool    `env:"APCA_DEBUG"               json:"debug"               yaml:"debug"`

	Logger               Logger                `json:"-" yaml:"-"`
	RequestInterceptors  []RequestInterceptor  `json:"-" yaml:"-"`
	ResponseInterceptors []ResponseInterceptor `json:"-" yaml:"-"`
}

// ConfigFromEnv reads the configuration from APCA_* environment variables,
// filling defaults for unset endpoints.
func ConfigFromEnv() (*Config, error) {
	cfg := &Config{}

	err := env.Parse(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing environment: %w", ErrConfig, err)
	}

	return cfg, nil
}

// Validate checks that the configuration can build a client.
func (c *Config) Validate() error {
	if c.APIKeyID == "" || c.APISecretKey == "" {
		return fmt.Errorf("%w: %w", ErrConfig, ErrCredentialsRequired)
	}

	if c.TradingBaseURL == "" || c.MarketDataBaseURL == "" {
		return fmt.Errorf("%w: %w", ErrConfig, ErrBaseURLRequired)
	}

	return nil
}

// WithDefaults returns a copy with empty endpoints and limits set to their
// defaults.
func (c Config) WithDefaults() *Config {
	if c.TradingBaseURL == "" {
		c.TradingBaseURL = DefaultTradingBaseURL
	}

	if c.MarketDataBaseURL == "" {
		c.MarketDataBaseURL = DefaultMarketDataBaseURL
	}

	if c.StreamBaseURL == "" {
		c.StreamBaseURL = DefaultStreamBaseURL
	}

	return &c
}
