//go:build integration

package integration

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/alpaca-client/internal/export"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
)

func TestAccountWorkflow(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	var account alpaca.Account
	runner.RunJSON(&account, "account")
	assert.NotEmpty(t, account.ID)
	assert.NotEmpty(t, account.Status)

	var clock alpaca.Clock
	runner.RunJSON(&clock, "clock")
	assert.False(t, clock.Timestamp.IsZero())

	var days []alpaca.CalendarDay
	runner.RunJSON(&days, "calendar", "--start", "2024-07-01", "--end", "2024-07-05")
	require.NotEmpty(t, days)

	for _, day := range days {
		assert.NotEqual(t, "2024-07-04", day.Date.String(), "market holiday listed as open")
	}
}

func TestMarketDataWorkflow(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	var quotes []alpaca.LatestQuote
	runner.RunJSON(&quotes, "quote", "AAPL", "MSFT")
	require.Len(t, quotes, 2)
	assert.Equal(t, "AAPL", quotes[0].Symbol)
	assert.Equal(t, "MSFT", quotes[1].Symbol)

	path := filepath.Join(t.TempDir(), "spy.parquet")
	start := time.Now().AddDate(0, 0, -30).Format(time.DateOnly)

	stdout, stderr, err := runner.Run("bars", "SPY", "--start", start, "--feed", "iex", "--parquet", path)
	require.NoError(t, err, "bars failed: %s", stderr)
	assert.Contains(t, stdout, "Wrote")

	records, err := export.ReadBars(path)
	require.NoError(t, err)
	require.NotEmpty(t, records)

	for i := 1; i < len(records); i++ {
		assert.LessOrEqual(t, records[i-1].Timestamp, records[i].Timestamp)
	}
}

func TestOrderWorkflow_SubmitAndCancel(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)
	clientOrderID := GenerateClientOrderID("integration")

	// A limit far below the market stays open until canceled.
	var order alpaca.Order
	runner.RunJSON(&order, "orders", "submit", "AAPL",
		"--qty", "1",
		"--type", "limit",
		"--limit-price", "1.00",
		"--time-in-force", "gtc",
		"--client-order-id", clientOrderID)
	require.NotEmpty(t, order.ID)
	assert.Equal(t, clientOrderID, order.ClientOrderID)

	defer func() {
		_, _, _ = runner.Run("orders", "cancel", order.ID)
	}()

	var fetched alpaca.Order
	runner.RunJSON(&fetched, "orders", "get", order.ID)
	assert.Equal(t, "AAPL", fetched.Symbol)

	stdout, stderr, err := runner.Run("orders", "cancel", order.ID)
	require.NoError(t, err, "cancel failed: %s", stderr)
	assert.Contains(t, stdout, order.ID)

	WaitForCondition(t, func() bool {
		var current alpaca.Order
		runner.RunJSON(&current, "orders", "get", order.ID)

		return current.Status == "canceled"
	}, 30*time.Second, "order "+order.ID+" canceled")
}
