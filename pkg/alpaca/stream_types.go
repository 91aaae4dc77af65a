package alpaca

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Feed selects a market data stream endpoint.
type Feed string

// Market data feeds.
const (
	FeedSIP  Feed = "sip"
	FeedIEX  Feed = "iex"
	FeedTest Feed = "test"
)

// ParseFeed validates a feed name.
func ParseFeed(s string) (Feed, error) {
	switch Feed(s) {
	case FeedSIP, FeedIEX, FeedTest:
		return Feed(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFeed, s)
	}
}

// Stream actions used in outbound control messages.
const (
	ActionAuth         = "auth"
	ActionAuthenticate = "authenticate"
	ActionSubscribe    = "subscribe"
	ActionUnsubscribe  = "unsubscribe"
	ActionListen       = "listen"
)

// TradeUpdatesChannel is the account stream channel for order events.
const TradeUpdatesChannel = "trade_updates"

// Subscription is the set of symbols per market data channel.
type Subscription struct {
	Trades []string `json:"trades" yaml:"trades"`
	Quotes []string `json:"quotes" yaml:"quotes"`
	Bars   []string `json:"bars"   yaml:"bars"`
}

// IsEmpty reports whether no channel has any symbol.
func (s Subscription) IsEmpty() bool {
	return len(s.Trades) == 0 && len(s.Quotes) == 0 && len(s.Bars) == 0
}

// MarketAuthMessage authenticates a market data stream.
type MarketAuthMessage struct {
	Action string `json:"action"`
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

// AccountAuthMessage authenticates the account stream.
type AccountAuthMessage struct {
	Action string          `json:"action"`
	Data   AccountAuthData `json:"data"`
}

// AccountAuthData carries account stream credentials.
type AccountAuthData struct {
	KeyID     string `json:"key_id"`
	SecretKey string `json:"secret_key"`
}

// ListenMessage selects account stream channels.
type ListenMessage struct {
	Action string     `json:"action"`
	Data   ListenData `json:"data"`
}

// ListenData lists account stream channels.
type ListenData struct {
	Streams []string `json:"streams"`
}

// NewMarketAuthMessage builds the market data handshake payload.
func NewMarketAuthMessage(key, secret string) MarketAuthMessage {
	return MarketAuthMessage{Action: ActionAuth, Key: key, Secret: secret}
}

// NewAccountAuthMessage builds the account stream handshake payload.
func NewAccountAuthMessage(keyID, secretKey string) AccountAuthMessage {
	return AccountAuthMessage{
		Action: ActionAuthenticate,
		Data:   AccountAuthData{KeyID: keyID, SecretKey: secretKey},
	}
}

// NewListenMessage builds a listen message for streams.
func NewListenMessage(streams ...string) ListenMessage {
	if streams == nil {
		streams = []string{}
	}

	return ListenMessage{Action: ActionListen, Data: ListenData{Streams: streams}}
}

// Market data message types carried in the "T" field.
const (
	MessageTypeSuccess      = "success"
	MessageTypeError        = "error"
	MessageTypeSubscription = "subscription"
	MessageTypeTrade        = "t"
	MessageTypeQuote        = "q"
	MessageTypeBar          = "b"
)

// StreamMessage is one decoded market data stream message. The concrete
// type is one of *SuccessMessage, *ErrorMessage, *SubscriptionMessage,
// *StreamTrade, *StreamQuote, *StreamBar or *UnknownMessage.
type StreamMessage interface {
	MessageType() string
}

// SuccessMessage acknowledges connection or authentication.
type SuccessMessage struct {
	Msg string `json:"msg" yaml:"msg"`
}

// ErrorMessage reports a handshake or protocol error.
type ErrorMessage struct {
	Code int    `json:"code" yaml:"code"`
	Msg  string `json:"msg"  yaml:"msg"`
}

// Error implements the error interface.
func (m *ErrorMessage) Error() string {
	return fmt.Sprintf("stream error %d: %s", m.Code, m.Msg)
}

// SubscriptionMessage confirms the effective subscription.
type SubscriptionMessage struct {
	Trades []string `json:"trades" yaml:"trades"`
	Quotes []string `json:"quotes" yaml:"quotes"`
	Bars   []string `json:"bars"   yaml:"bars"`
}

// UnknownMessage carries a message whose type this package does not model,
// such as trade corrections ("c") or cancel errors ("x").
type UnknownMessage struct {
	Type string          `json:"T"    yaml:"type"`
	Raw  json.RawMessage `json:"data" yaml:"-"`
}

// The tick structs hold the "T" discriminator in an exact-match field.
// Without it encoding/json would fold "T" onto the "t" timestamp key.

// StreamTrade is a real-time trade.
type StreamTrade struct {
	Type       string          `json:"T" yaml:"-"`
	Symbol     string          `json:"S" yaml:"symbol"`
	Price      decimal.Decimal `json:"p" yaml:"price"`
	Size       int64           `json:"s" yaml:"size"`
	Timestamp  time.Time       `json:"t" yaml:"timestamp"`
	Exchange   string          `json:"x" yaml:"exchange"`
	ID         int64           `json:"i" yaml:"id"`
	Conditions []string        `json:"c" yaml:"conditions,omitempty"`
	Tape       string          `json:"z" yaml:"tape"`
}

// StreamQuote is a real-time quote.
type StreamQuote struct {
	Type        string          `json:"T"  yaml:"-"`
	Symbol      string          `json:"S"  yaml:"symbol"`
	AskPrice    decimal.Decimal `json:"ap" yaml:"ask_price"`
	AskSize     int64           `json:"as" yaml:"ask_size"`
	AskExchange string          `json:"ax" yaml:"ask_exchange"`
	BidPrice    decimal.Decimal `json:"bp" yaml:"bid_price"`
	BidSize     int64           `json:"bs" yaml:"bid_size"`
	BidExchange string          `json:"bx" yaml:"bid_exchange"`
	Conditions  []string        `json:"c"  yaml:"conditions,omitempty"`
	Timestamp   time.Time       `json:"t"  yaml:"timestamp"`
	Tape        string          `json:"z"  yaml:"tape"`
}

// StreamBar is a real-time minute bar.
type StreamBar struct {
	Type       string          `json:"T"  yaml:"-"`
	Symbol     string          `json:"S"  yaml:"symbol"`
	Open       decimal.Decimal `json:"o"  yaml:"open"`
	High       decimal.Decimal `json:"h"  yaml:"high"`
	Low        decimal.Decimal `json:"l"  yaml:"low"`
	Close      decimal.Decimal `json:"c"  yaml:"close"`
	Volume     int64           `json:"v"  yaml:"volume"`
	Timestamp  time.Time       `json:"t"  yaml:"timestamp"`
	TradeCount int64           `json:"n"  yaml:"trade_count,omitempty"`
	VWAP       decimal.Decimal `json:"vw" yaml:"vwap,omitempty"`
}

// MessageType implements StreamMessage.
func (*SuccessMessage) MessageType() string { return MessageTypeSuccess }

// MessageType implements StreamMessage.
func (*ErrorMessage) MessageType() string { return MessageTypeError }

// MessageType implements StreamMessage.
func (*SubscriptionMessage) MessageType() string { return MessageTypeSubscription }

// MessageType implements StreamMessage.
func (*StreamTrade) MessageType() string { return MessageTypeTrade }

// MessageType implements StreamMessage.
func (*StreamQuote) MessageType() string { return MessageTypeQuote }

// MessageType implements StreamMessage.
func (*StreamBar) MessageType() string { return MessageTypeBar }

// MessageType implements StreamMessage.
func (m *UnknownMessage) MessageType() string { return m.Type }

// MarshalJSON writes the message back out as it was received.
func (m *UnknownMessage) MarshalJSON() ([]byte, error) {
	if len(m.Raw) == 0 {
		return json.Marshal(map[string]string{"T": m.Type})
	}

	return m.Raw, nil
}

// messageType reads the "T" discriminator by exact key.
func messageType(data []byte) (string, error) {
	var fields map[string]json.RawMessage

	err := json.Unmarshal(data, &fields)
	if err != nil {
		return "", err
	}

	raw, ok := fields["T"]
	if !ok {
		return "", nil
	}

	var kind string

	err = json.Unmarshal(raw, &kind)
	if err != nil {
		return "", err
	}

	return kind, nil
}

// DecodeStreamMessage decodes a single market data message by inspecting its
// "T" discriminator before the full parse. Types it does not model come back
// as *UnknownMessage.
func DecodeStreamMessage(data []byte) (StreamMessage, error) {
	kind, err := messageType(data)
	if err != nil {
		return nil, fmt.Errorf("%w: reading message type: %w", ErrDeserialize, err)
	}

	if kind == "" {
		return nil, fmt.Errorf("%w: %w: missing \"T\" field", ErrDeserialize, ErrUnknownMessageType)
	}

	var msg StreamMessage

	switch kind {
	case MessageTypeSuccess:
		msg = &SuccessMessage{}
	case MessageTypeError:
		msg = &ErrorMessage{}
	case MessageTypeSubscription:
		msg = &SubscriptionMessage{}
	case MessageTypeTrade:
		msg = &StreamTrade{}
	case MessageTypeQuote:
		msg = &StreamQuote{}
	case MessageTypeBar:
		msg = &StreamBar{}
	default:
		return &UnknownMessage{Type: kind, Raw: append(json.RawMessage(nil), data...)}, nil
	}

	err = json.Unmarshal(data, msg)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %q message: %w", ErrDeserialize, kind, err)
	}

	return msg, nil
}

// DecodeStreamMessages decodes a frame that holds either one message object
// or an array of them, preserving order. Elements of an array are decoded
// independently: the ones that fail are left out and reported together in
// the error, next to the messages that did decode.
func DecodeStreamMessages(data []byte) ([]StreamMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		msg, err := DecodeStreamMessage(trimmed)
		if err != nil {
			return nil, err
		}

		return []StreamMessage{msg}, nil
	}

	var raw []json.RawMessage

	err := json.Unmarshal(trimmed, &raw)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing message batch: %w", ErrDeserialize, err)
	}

	msgs := make([]StreamMessage, 0, len(raw))

	var errs []error

	for index, item := range raw {
		msg, err := DecodeStreamMessage(item)
		if err != nil {
			errs = append(errs, fmt.Errorf("message %d: %w", index, err))

			continue
		}

		msgs = append(msgs, msg)
	}

	return msgs, errors.Join(errs...)
}

// Account stream names carried in the "stream" field.
const (
	AccountStreamAuthorization = "authorization"
	AccountStreamListening     = "listening"
	AccountStreamTradeUpdates  = TradeUpdatesChannel
)

// AccountStreamMessage is one decoded account stream message. The concrete
// type is one of *AuthorizationMessage, *ListeningMessage or *TradeUpdate.
type AccountStreamMessage interface {
	StreamName() string
}

// AuthorizationMessage is the account stream handshake result.
type AuthorizationMessage struct {
	Status string `json:"status" yaml:"status"`
	Action string `json:"action" yaml:"action"`
}

// Authorized reports whether the handshake succeeded.
func (m *AuthorizationMessage) Authorized() bool {
	return m.Status == "authorized"
}

// ListeningMessage confirms the channels the account stream delivers.
type ListeningMessage struct {
	Streams []string `json:"streams"         yaml:"streams"`
	Error   string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// TradeUpdate is an order lifecycle event.
type TradeUpdate struct {
	Event       string              `json:"event"        yaml:"event"`
	Order       Order               `json:"order"        yaml:"order"`
	Timestamp   *time.Time          `json:"timestamp"    yaml:"timestamp,omitempty"`
	PositionQty decimal.NullDecimal `json:"position_qty" yaml:"position_qty"`
	Price       decimal.NullDecimal `json:"price"        yaml:"price"`
	Qty         decimal.NullDecimal `json:"qty"          yaml:"qty"`
}

// StreamName implements AccountStreamMessage.
func (*AuthorizationMessage) StreamName() string { return AccountStreamAuthorization }

// StreamName implements AccountStreamMessage.
func (*ListeningMessage) StreamName() string { return AccountStreamListening }

// StreamName implements AccountStreamMessage.
func (*TradeUpdate) StreamName() string { return AccountStreamTradeUpdates }

type accountEnvelope struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// DecodeAccountStreamMessage decodes an account stream envelope by its
// "stream" field.
func DecodeAccountStreamMessage(data []byte) (AccountStreamMessage, error) {
	var env accountEnvelope

	err := json.Unmarshal(data, &env)
	if err != nil {
		return nil, fmt.Errorf("%w: reading stream envelope: %w", ErrDeserialize, err)
	}

	var msg AccountStreamMessage

	switch env.Stream {
	case AccountStreamAuthorization:
		msg = &AuthorizationMessage{}
	case AccountStreamListening:
		msg = &ListeningMessage{}
	case AccountStreamTradeUpdates:
		msg = &TradeUpdate{}
	default:
		return nil, fmt.Errorf("%w: %w %q", ErrDeserialize, ErrUnknownMessageType, env.Stream)
	}

	if len(env.Data) == 0 {
		return nil, fmt.Errorf("%w: %q message has no data", ErrDeserialize, env.Stream)
	}

	err = json.Unmarshal(env.Data, msg)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %q message: %w", ErrDeserialize, env.Stream, err)
	}

	return msg, nil
}
