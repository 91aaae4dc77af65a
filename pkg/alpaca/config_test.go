package alpaca_test

import (
	"testing"
	"time"

	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("APCA_API_KEY_ID", "key")
		t.Setenv("APCA_API_SECRET_KEY", "secret")

		cfg, err := alpaca.ConfigFromEnv()
		require.NoError(t, err)

		assert.Equal(t, "key", cfg.APIKeyID)
		assert.Equal(t, "secret", cfg.APISecretKey)
		assert.Equal(t, alpaca.DefaultTradingBaseURL, cfg.TradingBaseURL)
		assert.Equal(t, alpaca.DefaultMarketDataBaseURL, cfg.MarketDataBaseURL)
		assert.Equal(t, alpaca.DefaultStreamBaseURL, cfg.StreamBaseURL)
		assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
		assert.Equal(t, 256, cfg.StreamBufferSize)
		require.NoError(t, cfg.Validate())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("APCA_TRADING_BASE_URL", "https://api.alpaca.markets")
		t.Setenv("APCA_HTTP_TIMEOUT", "5s")
		t.Setenv("APCA_REQUESTS_PER_SECOND", "2.5")
		t.Setenv("APCA_DEBUG", "true")

		cfg, err := alpaca.ConfigFromEnv()
		require.NoError(t, err)

		assert.Equal(t, "https://api.alpaca.markets", cfg.TradingBaseURL)
		assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
		assert.InDelta(t, 2.5, cfg.RequestsPerSecond, 0.0001)
		assert.True(t, cfg.Debug)
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("APCA_HTTP_TIMEOUT", "soon")

		_, err := alpaca.ConfigFromEnv()
		require.ErrorIs(t, err, alpaca.ErrConfig)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := alpaca.Config{APIKeyID: "k", APISecretKey: "s"}.WithDefaults()
	require.NoError(t, valid.Validate())

	missingSecret := alpaca.Config{APIKeyID: "k"}.WithDefaults()
	err := missingSecret.Validate()
	require.ErrorIs(t, err, alpaca.ErrConfig)
	require.ErrorIs(t, err, alpaca.ErrCredentialsRequired)

	missingURL := &alpaca.Config{APIKeyID: "k", APISecretKey: "s"}
	err = missingURL.Validate()
	require.ErrorIs(t, err, alpaca.ErrBaseURLRequired)
}

func TestConfig_WithDefaults(t *testing.T) {
	t.Parallel()

	original := alpaca.Config{MarketDataBaseURL: "http://localhost:9000"}
	withDefaults := original.WithDefaults()

	assert.Equal(t, alpaca.DefaultTradingBaseURL, withDefaults.TradingBaseURL)
	assert.Equal(t, "http://localhost:9000", withDefaults.MarketDataBaseURL)
	assert.Equal(t, alpaca.DefaultStreamBaseURL, withDefaults.StreamBaseURL)
	assert.Empty(t, original.TradingBaseURL, "original must not be modified")
}
