package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/alpaca-client/internal/constants"
	"github.com/fivetwenty-io/alpaca-client/internal/stream"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
)

// StreamsClient implements alpaca.StreamsClient.
type StreamsClient struct {
	config *alpaca.Config
	dialer stream.Dialer
}

// NewStreamsClient creates a streams client. A nil dialer uses
// gorilla/websocket.
func NewStreamsClient(config *alpaca.Config, dialer stream.Dialer) *StreamsClient {
	return &StreamsClient{
		config: config,
		dialer: dialer,
	}
}

func (c *StreamsClient) streamOptions() []stream.Option {
	opts := []stream.Option{
		stream.WithLogger(c.config.Logger),
		stream.WithBufferSize(c.config.StreamBufferSize),
	}

	if c.dialer != nil {
		opts = append(opts, stream.WithDialer(c.dialer))
	}

	return opts
}

// MarketDataURL returns the websocket endpoint for feed.
func MarketDataURL(streamBaseURL string, feed alpaca.Feed) (string, error) {
	parsed, err := alpaca.ParseFeed(string(feed))
	if err != nil {
		return "", fmt.Errorf("%w: %w", alpaca.ErrConfig, err)
	}

	base := streamBaseURL
	if base == "" {
		base = alpaca.DefaultStreamBaseURL
	}

	return strings.TrimSuffix(base, "/") + constants.StreamPathMarketData + string(parsed), nil
}

// TradeUpdatesURL derives the account stream endpoint from the trading base
// URL by switching http(s) to ws(s).
func TradeUpdatesURL(tradingBaseURL string) (string, error) {
	parsed, err := url.Parse(tradingBaseURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", alpaca.ErrConfig, err)
	}

	switch parsed.Scheme {
	case "https":
		parsed.Scheme = "wss"
	case "http":
		parsed.Scheme = "ws"
	default:
		return "", fmt.Errorf("%w: %w: %q", alpaca.ErrConfig, alpaca.ErrInvalidStreamBaseURL, tradingBaseURL)
	}

	parsed.Path = strings.TrimSuffix(parsed.Path, "/") + constants.StreamPathTradeUpdates

	return parsed.String(), nil
}

// MarketData implements alpaca.StreamsClient.MarketData. ctx governs the
// stream's whole lifetime: once it is done the stream is closed, so do not
// pass a context with a short dial timeout.
func (c *StreamsClient) MarketData(ctx context.Context, feed alpaca.Feed) (alpaca.MarketDataStream, error) {
	endpoint, err := MarketDataURL(c.config.StreamBaseURL, feed)
	if err != nil {
		return nil, err
	}

	auth := alpaca.NewMarketAuthMessage(c.config.APIKeyID, c.config.APISecretKey)

	conn, err := stream.Connect(ctx, endpoint, auth, c.streamOptions()...)
	if err != nil {
		return nil, fmt.Errorf("connecting market data stream: %w", err)
	}

	return &MarketDataStream{stream: conn, logger: c.config.Logger}, nil
}

// TradeUpdates implements alpaca.StreamsClient.TradeUpdates. As with
// MarketData, ctx governs the stream's whole lifetime.
func (c *StreamsClient) TradeUpdates(ctx context.Context) (alpaca.TradeUpdatesStream, error) {
	endpoint, err := TradeUpdatesURL(c.config.TradingBaseURL)
	if err != nil {
		return nil, err
	}

	auth := alpaca.NewAccountAuthMessage(c.config.APIKeyID, c.config.APISecretKey)

	conn, err := stream.Connect(ctx, endpoint, auth, c.streamOptions()...)
	if err != nil {
		return nil, fmt.Errorf("connecting trade updates stream: %w", err)
	}

	return &TradeUpdatesStream{stream: conn}, nil
}

// MarketDataStream implements alpaca.MarketDataStream. Frames that carry an
// array of messages are delivered one message per Recv.
type MarketDataStream struct {
	stream  *stream.Stream
	logger  alpaca.Logger
	pending []alpaca.StreamMessage
}

// Subscribe implements alpaca.MarketDataStream.Subscribe.
func (s *MarketDataStream) Subscribe(ctx context.Context, sub alpaca.Subscription) error {
	return s.stream.Subscribe(ctx, sub)
}

// Unsubscribe implements alpaca.MarketDataStream.Unsubscribe.
func (s *MarketDataStream) Unsubscribe(ctx context.Context, sub alpaca.Subscription) error {
	return s.stream.Unsubscribe(ctx, sub)
}

// Recv implements alpaca.MarketDataStream.Recv. It returns io.EOF when the
// stream has ended. Elements of a frame that cannot be decoded are logged
// and skipped; the error is returned only when nothing in the frame decoded.
func (s *MarketDataStream) Recv(ctx context.Context) (alpaca.StreamMessage, error) {
	for len(s.pending) == 0 {
		data, err := s.stream.Recv(ctx)
		if err != nil {
			return nil, err
		}

		msgs, err := alpaca.DecodeStreamMessages(data)
		if err != nil {
			if len(msgs) == 0 {
				return nil, err
			}

			if s.logger != nil {
				s.logger.Warn("Skipping undecodable stream messages", map[string]interface{}{
					"url":   s.stream.URL(),
					"error": err.Error(),
				})
			}
		}

		s.pending = msgs
	}

	msg := s.pending[0]
	s.pending = s.pending[1:]

	return msg, nil
}

// Close implements alpaca.MarketDataStream.Close.
func (s *MarketDataStream) Close() error {
	return s.stream.Close()
}

// TradeUpdatesStream implements alpaca.TradeUpdatesStream.
type TradeUpdatesStream struct {
	stream *stream.Stream
}

// Listen implements alpaca.TradeUpdatesStream.Listen. With no arguments it
// listens on trade_updates.
func (s *TradeUpdatesStream) Listen(ctx context.Context, streams ...string) error {
	if len(streams) == 0 {
		streams = []string{alpaca.TradeUpdatesChannel}
	}

	return s.stream.Listen(ctx, streams...)
}

// Recv implements alpaca.TradeUpdatesStream.Recv.
func (s *TradeUpdatesStream) Recv(ctx context.Context) (alpaca.AccountStreamMessage, error) {
	data, err := s.stream.Recv(ctx)
	if err != nil {
		return nil, err
	}

	return alpaca.DecodeAccountStreamMessage(data)
}

// Close implements alpaca.TradeUpdatesStream.Close.
func (s *TradeUpdatesStream) Close() error {
	return s.stream.Close()
}
