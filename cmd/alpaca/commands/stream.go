package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/alpaca-client/internal/constants"
	"github.com/fivetwenty-io/alpaca-client/internal/relay"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
)

type streamFlags struct {
	feed       string
	trades     []string
	quotes     []string
	bars       []string
	natsURL    string
	natsPrefix string
	limit      int
}

func (f streamFlags) subscription() (alpaca.Subscription, error) {
	sub := alpaca.Subscription{
		Trades: splitSymbols(f.trades),
		Quotes: splitSymbols(f.quotes),
		Bars:   splitSymbols(f.bars),
	}

	if sub.IsEmpty() {
		return sub, constants.ErrNoSymbols
	}

	return sub, nil
}

func (f streamFlags) resolveNATSURL() string {
	if f.natsURL != "" {
		return f.natsURL
	}

	return viper.GetString(keyNATSURL)
}

// NewStreamCommand creates the stream command.
func NewStreamCommand() *cobra.Command {
	var flags streamFlags

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Stream real-time market data",
		Long: "Subscribe to trades, quotes and bars and print each message, or republish them " +
			"to NATS with --nats-url. Symbols may be repeated or comma separated.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := flags.subscription()
			if err != nil {
				return err
			}

			feedName := flags.feed
			if feedName == "" {
				feedName = viper.GetString(keyFeed)
			}

			if feedName == "" {
				feedName = string(alpaca.FeedIEX)
			}

			feed, err := alpaca.ParseFeed(feedName)
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			conn, err := client.Streams().MarketData(ctx, feed)
			if err != nil {
				return fmt.Errorf("failed to open market data stream: %w", err)
			}
			defer conn.Close()

			err = conn.Subscribe(ctx, sub)
			if err != nil {
				return fmt.Errorf("failed to subscribe: %w", err)
			}

			if natsURL := flags.resolveNATSURL(); natsURL != "" {
				return relayMarketData(ctx, conn, natsURL, flags.natsPrefix)
			}

			return printMarketData(ctx, cmd.OutOrStdout(), conn, flags.limit)
		},
	}

	cmd.Flags().StringVar(&flags.feed, "feed", "", "market data feed (iex, sip, test)")
	cmd.Flags().StringSliceVar(&flags.trades, "trades", nil, "symbols to receive trades for")
	cmd.Flags().StringSliceVar(&flags.quotes, "quotes", nil, "symbols to receive quotes for")
	cmd.Flags().StringSliceVar(&flags.bars, "bars", nil, "symbols to receive minute bars for")
	cmd.Flags().StringVar(&flags.natsURL, "nats-url", "", "republish messages to this NATS server")
	cmd.Flags().StringVar(&flags.natsPrefix, "nats-prefix", constants.RelaySubjectPrefix, "subject prefix for republished messages")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "stop after this many trades, quotes or bars (0 for no limit)")

	return cmd
}

func relayMarketData(ctx context.Context, source relay.MarketDataSource, natsURL, prefix string) error {
	nc, err := relay.Connect(natsURL)
	if err != nil {
		return err
	}
	defer nc.Close()

	r := relay.New(nc, relay.WithPrefix(prefix), relay.WithLogger(Logger()))

	Logger().Info("Relaying market data", map[string]interface{}{"nats_url": natsURL, "prefix": prefix})

	err = r.Run(ctx, source)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	flushErr := nc.Flush()

	Logger().Info("Relay stopped", map[string]interface{}{"published": r.Published()})

	if err != nil {
		return err
	}

	return flushErr
}

func printMarketData(ctx context.Context, w io.Writer, source relay.MarketDataSource, limit int) error {
	format := viper.GetString("output")
	received := 0

	for {
		msg, err := source.Recv(ctx)
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return nil
		}

		if errors.Is(err, alpaca.ErrDeserialize) {
			Logger().Warn("Skipping undecodable stream frame", map[string]interface{}{"error": err.Error()})

			continue
		}

		if err != nil {
			return err
		}

		if streamErr, ok := msg.(*alpaca.ErrorMessage); ok {
			return fmt.Errorf("stream rejected request: %w", streamErr)
		}

		err = writeStreamMessage(w, format, msg.MessageType(), msg, describeMarketMessage(msg))
		if err != nil {
			return err
		}

		switch msg.(type) {
		case *alpaca.StreamTrade, *alpaca.StreamQuote, *alpaca.StreamBar:
			received++
		}

		if limit > 0 && received >= limit {
			return nil
		}
	}
}

// writeStreamMessage prints one message per line for JSON, one document per
// message for YAML and a short summary line otherwise.
func writeStreamMessage(w io.Writer, format, kind string, msg interface{}, summary string) error {
	switch format {
	case constants.FormatJSON:
		data, err := json.Marshal(map[string]interface{}{"type": kind, "data": msg})
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(w, string(data))

		return err
	case constants.FormatYAML:
		data, err := yaml.Marshal(map[string]interface{}{"type": kind, "data": msg})
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(w, "---\n%s", data)

		return err
	default:
		_, err := fmt.Fprintln(w, summary)

		return err
	}
}

func describeMarketMessage(msg alpaca.StreamMessage) string {
	switch m := msg.(type) {
	case *alpaca.StreamTrade:
		return fmt.Sprintf("%s trade %-6s %s x %d", formatTime(m.Timestamp), m.Symbol, m.Price, m.Size)
	case *alpaca.StreamQuote:
		return fmt.Sprintf("%s quote %-6s %s x %d / %s x %d", formatTime(m.Timestamp), m.Symbol,
			m.BidPrice, m.BidSize, m.AskPrice, m.AskSize)
	case *alpaca.StreamBar:
		return fmt.Sprintf("%s bar   %-6s O %s H %s L %s C %s V %d", formatTime(m.Timestamp), m.Symbol,
			m.Open, m.High, m.Low, m.Close, m.Volume)
	case *alpaca.SuccessMessage:
		return "success: " + m.Msg
	case *alpaca.SubscriptionMessage:
		return fmt.Sprintf("subscribed: trades=%s quotes=%s bars=%s",
			strings.Join(m.Trades, ","), strings.Join(m.Quotes, ","), strings.Join(m.Bars, ","))
	default:
		return msg.MessageType()
	}
}

// NewTradeUpdatesCommand creates the trade-updates command.
func NewTradeUpdatesCommand() *cobra.Command {
	var (
		natsURL    string
		natsPrefix string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "trade-updates",
		Short: "Stream order updates",
		Long:  "Listen to the account stream and print order lifecycle events as they happen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			conn, err := client.Streams().TradeUpdates(ctx)
			if err != nil {
				return fmt.Errorf("failed to open trade updates stream: %w", err)
			}
			defer conn.Close()

			err = conn.Listen(ctx)
			if err != nil {
				return fmt.Errorf("failed to listen: %w", err)
			}

			if natsURL == "" {
				natsURL = viper.GetString(keyNATSURL)
			}

			if natsURL != "" {
				return relayTradeUpdates(ctx, conn, natsURL, natsPrefix)
			}

			return printTradeUpdates(ctx, cmd.OutOrStdout(), conn, limit)
		},
	}

	cmd.Flags().StringVar(&natsURL, "nats-url", "", "republish updates to this NATS server")
	cmd.Flags().StringVar(&natsPrefix, "nats-prefix", constants.RelaySubjectPrefix, "subject prefix for republished updates")
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many order updates (0 for no limit)")

	return cmd
}

func relayTradeUpdates(ctx context.Context, source relay.AccountSource, natsURL, prefix string) error {
	nc, err := relay.Connect(natsURL)
	if err != nil {
		return err
	}
	defer nc.Close()

	r := relay.New(nc, relay.WithPrefix(prefix), relay.WithLogger(Logger()))

	err = r.RunAccount(ctx, source)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	flushErr := nc.Flush()

	if err != nil {
		return err
	}

	return flushErr
}

func printTradeUpdates(ctx context.Context, w io.Writer, source relay.AccountSource, limit int) error {
	format := viper.GetString("output")
	received := 0

	for {
		msg, err := source.Recv(ctx)
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return nil
		}

		if err != nil {
			return err
		}

		var summary string

		switch m := msg.(type) {
		case *alpaca.AuthorizationMessage:
			if !m.Authorized() {
				return fmt.Errorf("%w: account stream status %q", alpaca.ErrStreaming, m.Status)
			}

			summary = "authorized"
		case *alpaca.ListeningMessage:
			if m.Error != "" {
				return fmt.Errorf("%w: listen failed: %s", alpaca.ErrStreaming, m.Error)
			}

			summary = "listening: " + strings.Join(m.Streams, ",")
		case *alpaca.TradeUpdate:
			received++
			summary = fmt.Sprintf("%s %-6s %s %s qty=%s filled=%s", m.Event, m.Order.Symbol, m.Order.Side,
				m.Order.ID, formatNullDecimal(m.Order.Qty), formatNullDecimal(m.Order.FilledQty))
		}

		err = writeStreamMessage(w, format, msg.StreamName(), msg, summary)
		if err != nil {
			return err
		}

		if limit > 0 && received >= limit {
			return nil
		}
	}
}
