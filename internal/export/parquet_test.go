package export_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/alpaca-client/internal/export"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
)

func TestWriteBars(t *testing.T) {
	t.Parallel()

	day1 := time.Date(2024, 1, 2, 5, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	bars := []alpaca.Bar{
		{Timestamp: day2, Open: decimal.RequireFromString("2"), Close: decimal.RequireFromString("2.5"), Volume: 20},
		{Timestamp: day1, Open: decimal.RequireFromString("1"), Close: decimal.RequireFromString("1.25"), Volume: 10, TradeCount: 3},
	}

	path := filepath.Join(t.TempDir(), "nested", "spy.parquet")

	require.NoError(t, export.WriteBars(path, "SPY", bars))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	records, err := export.ReadBars(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "SPY", records[0].Symbol)
	assert.Equal(t, day1.UnixMilli(), records[0].Timestamp)
	assert.InDelta(t, 1.25, records[0].Close, 1e-9)
	assert.Equal(t, int64(3), records[0].TradeCount)
	assert.Equal(t, int64(20), records[1].Volume)
}

func TestWriteTrades(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 1, 2, 15, 30, 0, 0, time.UTC)

	trades := []alpaca.Trade{
		{Timestamp: ts, Price: decimal.RequireFromString("190.5"), Size: 100, Exchange: "V", ID: 42, Tape: "C", Conditions: []string{"@", "I"}},
	}

	path := filepath.Join(t.TempDir(), "aapl.parquet")

	require.NoError(t, export.WriteTrades(path, "AAPL", trades))

	records, err := export.ReadTrades(path)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, export.TradeRecord{
		Symbol:     "AAPL",
		Timestamp:  ts.UnixMilli(),
		Price:      190.5,
		Size:       100,
		Exchange:   "V",
		ID:         42,
		Tape:       "C",
		Conditions: "@,I",
	}, records[0])
}

func TestWriteTrades_Empty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.parquet")

	require.NoError(t, export.WriteTrades(path, "AAPL", nil))

	records, err := export.ReadTrades(path)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBarRecords_Sorted(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	records := export.BarRecords("QQQ", []alpaca.Bar{
		{Timestamp: base.Add(2 * time.Hour)},
		{Timestamp: base},
		{Timestamp: base.Add(time.Hour)},
	})

	require.Len(t, records, 3)
	assert.Equal(t, base.UnixMilli(), records[0].Timestamp)
	assert.Equal(t, base.Add(2*time.Hour).UnixMilli(), records[2].Timestamp)
}
