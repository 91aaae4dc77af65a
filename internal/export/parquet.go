// Package export writes historical market data to Parquet files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/fivetwenty-io/alpaca-client/internal/constants"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
)

// BarRecord is the on-disk schema for one bar.
type BarRecord struct {
	Symbol     string  `parquet:"symbol"`
	Timestamp  int64   `parquet:"timestamp,timestamp(millisecond)"`
	Open       float64 `parquet:"open"`
	High       float64 `parquet:"high"`
	Low        float64 `parquet:"low"`
	Close      float64 `parquet:"close"`
	Volume     int64   `parquet:"volume"`
	TradeCount int64   `parquet:"trade_count"`
	VWAP       float64 `parquet:"vwap"`
}

// TradeRecord is the on-disk schema for one trade.
type TradeRecord struct {
	Symbol     string  `parquet:"symbol"`
	Timestamp  int64   `parquet:"timestamp,timestamp(millisecond)"`
	Price      float64 `parquet:"price"`
	Size       int64   `parquet:"size"`
	Exchange   string  `parquet:"exchange"`
	ID         int64   `parquet:"id"`
	Tape       string  `parquet:"tape"`
	Conditions string  `parquet:"conditions"`
}

// BarRecords converts bars for symbol into records ordered by timestamp.
func BarRecords(symbol string, bars []alpaca.Bar) []BarRecord {
	records := make([]BarRecord, 0, len(bars))
	for _, b := range bars {
		records = append(records, BarRecord{
			Symbol:     symbol,
			Timestamp:  b.Timestamp.UnixMilli(),
			Open:       b.Open.InexactFloat64(),
			High:       b.High.InexactFloat64(),
			Low:        b.Low.InexactFloat64(),
			Close:      b.Close.InexactFloat64(),
			Volume:     b.Volume,
			TradeCount: b.TradeCount,
			VWAP:       b.VWAP.InexactFloat64(),
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})

	return records
}

// TradeRecords converts trades for symbol into records ordered by timestamp.
// Conditions are joined into one comma separated column.
func TradeRecords(symbol string, trades []alpaca.Trade) []TradeRecord {
	records := make([]TradeRecord, 0, len(trades))
	for _, t := range trades {
		records = append(records, TradeRecord{
			Symbol:     symbol,
			Timestamp:  t.Timestamp.UnixMilli(),
			Price:      t.Price.InexactFloat64(),
			Size:       t.Size,
			Exchange:   t.Exchange,
			ID:         t.ID,
			Tape:       t.Tape,
			Conditions: strings.Join(t.Conditions, ","),
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})

	return records
}

// WriteBars writes bars for symbol to path, replacing any existing file.
func WriteBars(path, symbol string, bars []alpaca.Bar) error {
	err := writeFile(path, BarRecords(symbol, bars))
	if err != nil {
		return fmt.Errorf("writing bars for %s: %w", symbol, err)
	}

	return nil
}

// WriteTrades writes trades for symbol to path, replacing any existing file.
func WriteTrades(path, symbol string, trades []alpaca.Trade) error {
	err := writeFile(path, TradeRecords(symbol, trades))
	if err != nil {
		return fmt.Errorf("writing trades for %s: %w", symbol, err)
	}

	return nil
}

// ReadBars reads every bar record stored at path.
func ReadBars(path string) ([]BarRecord, error) {
	return parquet.ReadFile[BarRecord](path)
}

// ReadTrades reads every trade record stored at path.
func ReadTrades(path string) ([]TradeRecord, error) {
	return parquet.ReadFile[TradeRecord](path)
}

func writeFile[T any](path string, records []T) error {
	dir := filepath.Dir(path)

	err := os.MkdirAll(dir, constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	file, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.ExportFilePerm)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}

	err = parquet.Write(file, records)
	if err != nil {
		_ = file.Close()

		return err
	}

	return file.Close()
}
