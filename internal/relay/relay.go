// Package relay republishes decoded stream messages to NATS subjects.
//
// Market data messages go to <prefix>.stream.<channel>.<symbol>, where the
// channel is trades, quotes, bars or control. Account messages go to
// <prefix>.account.<stream>[.<symbol>].
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fivetwenty-io/alpaca-client/internal/constants"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
	"github.com/nats-io/nats.go"
)

// Publisher sends one payload to a subject. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// MarketDataSource yields market data messages until io.EOF.
type MarketDataSource interface {
	Recv(ctx context.Context) (alpaca.StreamMessage, error)
}

// AccountSource yields account stream messages until io.EOF.
type AccountSource interface {
	Recv(ctx context.Context) (alpaca.AccountStreamMessage, error)
}

// Relay publishes stream messages as JSON.
type Relay struct {
	publisher Publisher
	prefix    string
	logger    alpaca.Logger
	published uint64
}

// Option configures a Relay.
type Option func(*Relay)

// WithPrefix replaces the subject root.
func WithPrefix(prefix string) Option {
	return func(r *Relay) {
		if prefix != "" {
			r.prefix = strings.TrimSuffix(prefix, ".")
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger alpaca.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

// New creates a relay that publishes through publisher.
func New(publisher Publisher, opts ...Option) *Relay {
	relay := &Relay{
		publisher: publisher,
		prefix:    constants.RelaySubjectPrefix,
	}

	for _, opt := range opts {
		opt(relay)
	}

	return relay
}

// Published returns the number of messages published so far.
func (r *Relay) Published() uint64 {
	return r.published
}

// Subject returns the subject a market data message is published to.
func (r *Relay) Subject(msg alpaca.StreamMessage) string {
	switch m := msg.(type) {
	case *alpaca.StreamTrade:
		return r.join("stream", "trades", m.Symbol)
	case *alpaca.StreamQuote:
		return r.join("stream", "quotes", m.Symbol)
	case *alpaca.StreamBar:
		return r.join("stream", "bars", m.Symbol)
	default:
		return r.join("stream", "control", msg.MessageType())
	}
}

// AccountSubject returns the subject an account stream message is published to.
func (r *Relay) AccountSubject(msg alpaca.AccountStreamMessage) string {
	if update, ok := msg.(*alpaca.TradeUpdate); ok && update.Order.Symbol != "" {
		return r.join("account", msg.StreamName(), update.Order.Symbol)
	}

	return r.join("account", msg.StreamName())
}

// join builds a subject; dots inside a token (BRK.B) would split it, so they
// become underscores.
func (r *Relay) join(tokens ...string) string {
	parts := make([]string, 0, len(tokens)+1)
	parts = append(parts, r.prefix)

	for _, token := range tokens {
		parts = append(parts, strings.ReplaceAll(token, ".", "_"))
	}

	return strings.Join(parts, ".")
}

// Publish sends one market data message.
func (r *Relay) Publish(msg alpaca.StreamMessage) error {
	return r.publish(r.Subject(msg), msg)
}

// PublishAccount sends one account stream message.
func (r *Relay) PublishAccount(msg alpaca.AccountStreamMessage) error {
	return r.publish(r.AccountSubject(msg), msg)
}

func (r *Relay) publish(subject string, msg interface{}) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding message for %s: %w", subject, err)
	}

	err = r.publisher.Publish(subject, data)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}

	r.published++

	if r.logger != nil {
		r.logger.Debug("Relayed message", map[string]interface{}{
			"subject": subject,
			"bytes":   len(data),
		})
	}

	return nil
}

// Run publishes every message from source until it ends. A clean end of
// stream returns nil.
func (r *Relay) Run(ctx context.Context, source MarketDataSource) error {
	for {
		msg, err := source.Recv(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		err = r.Publish(msg)
		if err != nil {
			return err
		}
	}
}

// RunAccount publishes every message from an account stream until it ends.
func (r *Relay) RunAccount(ctx context.Context, source AccountSource) error {
	for {
		msg, err := source.Recv(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		err = r.PublishAccount(msg)
		if err != nil {
			return err
		}
	}
}

// Connect opens a NATS connection for a relay.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(constants.RelayClientName),
		nats.Timeout(constants.RelayConnectTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	return conn, nil
}
