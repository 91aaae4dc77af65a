package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/alpaca-client/internal/export"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
)

// NewQuoteCommand creates the quote command.
func NewQuoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "quote SYMBOL...",
		Short: "Display the latest quote",
		Long:  "Display the latest bid and ask for one or more symbols",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			quotes, err := fetchAll(cmd.Context(), splitSymbols(args), client.MarketData().LatestQuote)
			if err != nil {
				return fmt.Errorf("failed to get quote: %w", err)
			}

			if len(quotes) == 1 {
				return render(cmd.OutOrStdout(), quotes[0], func(w io.Writer, q *alpaca.LatestQuote) error {
					return renderProperties(w, [][]string{
						{"Symbol", q.Symbol},
						{"Bid", fmt.Sprintf("%s x %d", q.Quote.BidPrice, q.Quote.BidSize)},
						{"Ask", fmt.Sprintf("%s x %d", q.Quote.AskPrice, q.Quote.AskSize)},
						{"Time", formatTime(q.Quote.Timestamp)},
					})
				})
			}

			return render(cmd.OutOrStdout(), quotes, renderQuotesTable)
		},
	}
}

func renderQuotesTable(w io.Writer, quotes []*alpaca.LatestQuote) error {
	table := tablewriter.NewWriter(w)
	table.Header("Symbol", "Bid", "Ask", "Time")

	for _, q := range quotes {
		_ = table.Append(
			q.Symbol,
			fmt.Sprintf("%s x %d", q.Quote.BidPrice, q.Quote.BidSize),
			fmt.Sprintf("%s x %d", q.Quote.AskPrice, q.Quote.AskSize),
			formatTime(q.Quote.Timestamp),
		)
	}

	return table.Render()
}

// NewTradeCommand creates the trade command.
func NewTradeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "trade SYMBOL",
		Short: "Display the latest trade",
		Long:  "Display the most recent trade for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			trade, err := client.MarketData().LatestTrade(cmd.Context(), strings.ToUpper(args[0]))
			if err != nil {
				return fmt.Errorf("failed to get trade: %w", err)
			}

			return render(cmd.OutOrStdout(), trade, func(w io.Writer, t *alpaca.LatestTrade) error {
				return renderProperties(w, [][]string{
					{"Symbol", t.Symbol},
					{"Price", t.Trade.Price.String()},
					{"Size", strconv.FormatInt(t.Trade.Size, 10)},
					{"Exchange", formatValue(t.Trade.Exchange)},
					{"Time", formatTime(t.Trade.Timestamp)},
				})
			})
		},
	}
}

// NewSnapshotCommand creates the snapshot command.
func NewSnapshotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot SYMBOL...",
		Short: "Display a market snapshot",
		Long:  "Display the latest trade, quote and bars for one or more symbols",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			symbols := splitSymbols(args)

			snapshots, err := fetchAll(cmd.Context(), symbols, client.MarketData().Snapshot)
			if err != nil {
				return fmt.Errorf("failed to get snapshot: %w", err)
			}

			if len(snapshots) == 1 {
				return render(cmd.OutOrStdout(), snapshots[0], renderSnapshot)
			}

			bySymbol := make(map[string]*alpaca.Snapshot, len(symbols))
			for i, symbol := range symbols {
				bySymbol[symbol] = snapshots[i]
			}

			return render(cmd.OutOrStdout(), bySymbol, func(w io.Writer, bySymbol map[string]*alpaca.Snapshot) error {
				for _, symbol := range symbols {
					_, _ = fmt.Fprintln(w, symbol)

					err := renderSnapshot(w, bySymbol[symbol])
					if err != nil {
						return err
					}
				}

				return nil
			})
		},
	}
}

func renderSnapshot(w io.Writer, s *alpaca.Snapshot) error {
	var rows [][]string

	if s.LatestTrade != nil {
		rows = append(rows, []string{"Last Trade", fmt.Sprintf("%s x %d", s.LatestTrade.Price, s.LatestTrade.Size)})
	}

	if s.LatestQuote != nil {
		rows = append(rows, []string{"Bid / Ask", fmt.Sprintf("%s / %s", s.LatestQuote.BidPrice, s.LatestQuote.AskPrice)})
	}

	for _, bar := range []struct {
		name string
		bar  *alpaca.Bar
	}{
		{"Minute Bar", s.MinuteBar},
		{"Daily Bar", s.DailyBar},
		{"Previous Daily Bar", s.PrevDailyBar},
	} {
		if bar.bar == nil {
			continue
		}

		rows = append(rows, []string{bar.name, fmt.Sprintf("O %s H %s L %s C %s V %d",
			bar.bar.Open, bar.bar.High, bar.bar.Low, bar.bar.Close, bar.bar.Volume)})
	}

	return renderProperties(w, rows)
}

type historicalFlags struct {
	start     string
	end       string
	timeframe string
	feed      string
	parquet   string
}

func (f historicalFlags) params() (*alpaca.HistoricalParams, error) {
	start, err := parseTimeFlag("start", f.start)
	if err != nil {
		return nil, err
	}

	end, err := parseTimeFlag("end", f.end)
	if err != nil {
		return nil, err
	}

	params := &alpaca.HistoricalParams{
		Start:     start,
		End:       end,
		TimeFrame: f.timeframe,
	}

	feed := f.feed
	if feed == "" {
		feed = viper.GetString(keyFeed)
	}

	if feed != "" {
		params.Feed = alpaca.Feed(feed)
	}

	return params, nil
}

func addHistoricalFlags(cmd *cobra.Command, flags *historicalFlags) {
	cmd.Flags().StringVar(&flags.start, "start", "", "start time (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.end, "end", "", "end time (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.feed, "feed", "", "data feed (iex, sip)")
	cmd.Flags().StringVar(&flags.parquet, "parquet", "", "write results to this Parquet file instead of printing")
}

// NewBarsCommand creates the bars command.
func NewBarsCommand() *cobra.Command {
	var flags historicalFlags

	cmd := &cobra.Command{
		Use:   "bars SYMBOL",
		Short: "Display historical bars",
		Long:  "Fetch every bar in the time range, following pagination",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := strings.ToUpper(args[0])

			params, err := flags.params()
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			bars, err := client.MarketData().Bars(cmd.Context(), symbol, params)
			if err != nil {
				return fmt.Errorf("failed to get bars: %w", err)
			}

			if flags.parquet != "" {
				err = export.WriteBars(flags.parquet, symbol, bars)
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bars to %s\n", len(bars), flags.parquet)

				return nil
			}

			return render(cmd.OutOrStdout(), bars, renderBarsTable)
		},
	}

	addHistoricalFlags(cmd, &flags)
	cmd.Flags().StringVar(&flags.timeframe, "timeframe", alpaca.TimeFrameDay, "bar timeframe (1Min, 1Hour, 1Day, 1Week, 1Month)")

	return cmd
}

func renderBarsTable(w io.Writer, bars []alpaca.Bar) error {
	table := tablewriter.NewWriter(w)
	table.Header("Time", "Open", "High", "Low", "Close", "Volume", "VWAP")

	for _, bar := range bars {
		_ = table.Append(
			formatTime(bar.Timestamp),
			bar.Open.String(),
			bar.High.String(),
			bar.Low.String(),
			bar.Close.String(),
			strconv.FormatInt(bar.Volume, 10),
			bar.VWAP.String(),
		)
	}

	return table.Render()
}

// NewTradesCommand creates the trades command.
func NewTradesCommand() *cobra.Command {
	var flags historicalFlags

	cmd := &cobra.Command{
		Use:   "trades SYMBOL",
		Short: "Display historical trades",
		Long:  "Fetch every trade in the time range, following pagination",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := strings.ToUpper(args[0])

			params, err := flags.params()
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			trades, err := client.MarketData().Trades(cmd.Context(), symbol, params)
			if err != nil {
				return fmt.Errorf("failed to get trades: %w", err)
			}

			if flags.parquet != "" {
				err = export.WriteTrades(flags.parquet, symbol, trades)
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d trades to %s\n", len(trades), flags.parquet)

				return nil
			}

			return render(cmd.OutOrStdout(), trades, renderTradesTable)
		},
	}

	addHistoricalFlags(cmd, &flags)

	return cmd
}

func renderTradesTable(w io.Writer, trades []alpaca.Trade) error {
	table := tablewriter.NewWriter(w)
	table.Header("Time", "Price", "Size", "Exchange", "ID", "Conditions")

	for _, trade := range trades {
		_ = table.Append(
			formatTime(trade.Timestamp),
			trade.Price.String(),
			strconv.FormatInt(trade.Size, 10),
			trade.Exchange,
			strconv.FormatInt(trade.ID, 10),
			strings.Join(trade.Conditions, ","),
		)
	}

	return table.Render()
}
