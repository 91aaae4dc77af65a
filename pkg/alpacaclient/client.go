package alpacaclient

import (
	"fmt"

	"github.com/fivetwenty-io/alpaca-client/internal/client"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
)

// New creates a client from config. Empty endpoints take their defaults;
// config itself is not modified.
func New(config *alpaca.Config) (alpaca.Client, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: %w", alpaca.ErrConfig, alpaca.ErrConfigRequired)
	}

	resolved := config.WithDefaults()

	err := resolved.Validate()
	if err != nil {
		return nil, err
	}

	c, err := client.New(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewFromEnv creates a client from APCA_* environment variables.
func NewFromEnv() (alpaca.Client, error) {
	config, err := alpaca.ConfigFromEnv()
	if err != nil {
		return nil, err
	}

	return New(config)
}

// NewPaper creates a client for the paper trading environment.
func NewPaper(keyID, secretKey string) (alpaca.Client, error) {
	return New(&alpaca.Config{
		APIKeyID:       keyID,
		APISecretKey:   secretKey,
		TradingBaseURL: alpaca.DefaultTradingBaseURL,
	})
}

// NewLive creates a client for the live trading environment.
func NewLive(keyID, secretKey string) (alpaca.Client, error) {
	return New(&alpaca.Config{
		APIKeyID:       keyID,
		APISecretKey:   secretKey,
		TradingBaseURL: alpaca.LiveTradingBaseURL,
	})
}
