package alpacaclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpacaclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil config", func(t *testing.T) {
		t.Parallel()

		_, err := alpacaclient.New(nil)
		require.ErrorIs(t, err, alpaca.ErrConfigRequired)
		assert.Equal(t, alpaca.KindConfig, alpaca.KindOf(err))
	})

	t.Run("missing credentials", func(t *testing.T) {
		t.Parallel()

		_, err := alpacaclient.New(&alpaca.Config{APIKeyID: "key"})
		require.ErrorIs(t, err, alpaca.ErrCredentialsRequired)
	})

	t.Run("fills defaults without modifying config", func(t *testing.T) {
		t.Parallel()

		config := &alpaca.Config{APIKeyID: "key", APISecretKey: "secret"}

		client, err := alpacaclient.New(config)
		require.NoError(t, err)
		assert.NotNil(t, client)
		assert.Empty(t, config.TradingBaseURL)
	})

	t.Run("talks to the configured endpoint", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v2/clock", r.URL.Path)
			assert.Equal(t, "key", r.Header.Get("APCA-API-KEY-ID"))
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"is_open": false})
		}))
		defer server.Close()

		client, err := alpacaclient.New(&alpaca.Config{
			APIKeyID:       "key",
			APISecretKey:   "secret",
			TradingBaseURL: server.URL,
		})
		require.NoError(t, err)

		clock, err := client.Clock().Get(context.Background())
		require.NoError(t, err)
		assert.False(t, clock.IsOpen)
	})
}

func TestNewPaperAndLive(t *testing.T) {
	t.Parallel()

	paper, err := alpacaclient.NewPaper("key", "secret")
	require.NoError(t, err)
	assert.NotNil(t, paper.Account())

	live, err := alpacaclient.NewLive("key", "secret")
	require.NoError(t, err)
	assert.NotNil(t, live.Streams())

	_, err = alpacaclient.NewPaper("", "")
	require.ErrorIs(t, err, alpaca.ErrConfig)
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("APCA_API_KEY_ID", "env-key")
	t.Setenv("APCA_API_SECRET_KEY", "env-secret")

	client, err := alpacaclient.NewFromEnv()
	require.NoError(t, err)
	assert.NotNil(t, client)
}
