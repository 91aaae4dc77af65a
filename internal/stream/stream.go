package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/fivetwenty-io/alpaca-client/internal/constants"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
	"github.com/gorilla/websocket"
)

type item struct {
	data []byte
	err  error
}

// Stream is one websocket connection. A single reader goroutine owns the
// read side and feeds a bounded channel; the caller owns the write side.
type Stream struct {
	url    string
	conn   Conn
	logger alpaca.Logger

	items chan item
	done  chan struct{}
	stop  chan struct{}

	writeMu sync.Mutex
	closed  atomic.Bool

	closeOnce  sync.Once
	closeErr   error
	closeGrace time.Duration
	stopAfter  func() bool
}

type settings struct {
	dialer     Dialer
	logger     alpaca.Logger
	bufferSize int
	closeGrace time.Duration
}

// Option configures Connect.
type Option func(*settings)

// WithDialer replaces the websocket dialer.
func WithDialer(dialer Dialer) Option {
	return func(s *settings) {
		s.dialer = dialer
	}
}

// WithLogger sets the logger.
func WithLogger(logger alpaca.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithBufferSize sets the capacity of the receive channel.
func WithBufferSize(size int) Option {
	return func(s *settings) {
		if size > 0 {
			s.bufferSize = size
		}
	}
}

// WithCloseGracePeriod sets how long Close waits for the server's close frame.
func WithCloseGracePeriod(grace time.Duration) Option {
	return func(s *settings) {
		if grace > 0 {
			s.closeGrace = grace
		}
	}
}

// Connect opens a stream to url. When auth is non-nil it is sent as the
// first frame before Connect returns; the server's answer arrives later
// through Recv.
//
// ctx bounds the whole life of the stream, not only the dial: when it is
// done the stream is closed as if by Close. Pass a context that outlives the
// stream; the dialer's handshake timeout bounds the dial itself.
func Connect(ctx context.Context, url string, auth interface{}, opts ...Option) (*Stream, error) {
	cfg := settings{
		bufferSize: constants.DefaultStreamBufferSize,
		closeGrace: constants.StreamCloseGracePeriod,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.dialer == nil {
		cfg.dialer = NewWebsocketDialer()
	}

	conn, err := cfg.dialer.Dial(ctx, url)
	if err != nil {
		if errors.Is(err, alpaca.ErrStreaming) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: dialing %s: %w", alpaca.ErrStreaming, url, err)
	}

	stream := &Stream{
		url:        url,
		conn:       conn,
		logger:     cfg.logger,
		items:      make(chan item, cfg.bufferSize),
		done:       make(chan struct{}),
		stop:       make(chan struct{}),
		closeGrace: cfg.closeGrace,
	}

	if auth != nil {
		err = stream.Send(ctx, auth)
		if err != nil {
			_ = conn.Close()

			return nil, fmt.Errorf("sending handshake: %w", err)
		}
	}

	go stream.readLoop()

	stream.stopAfter = context.AfterFunc(ctx, func() {
		_ = stream.shutdown()
	})

	stream.logDebug("Stream connected", map[string]interface{}{"url": url})

	return stream, nil
}

// URL returns the endpoint the stream is connected to.
func (s *Stream) URL() string {
	return s.url
}

// Done is closed when the reader goroutine has exited.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

func (s *Stream) readLoop() {
	defer close(s.done)
	defer close(s.items)

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.endedCleanly(err) {
				return
			}

			s.forward(item{err: fmt.Errorf("%w: reading frame: %w", alpaca.ErrStreaming, err)})

			return
		}

		switch messageType {
		case websocket.TextMessage:
		case websocket.BinaryMessage:
			if !utf8.Valid(data) {
				s.logWarn("Dropping binary frame with invalid UTF-8", map[string]interface{}{
					"url":   s.url,
					"bytes": len(data),
				})

				continue
			}
		default:
			continue
		}

		if !s.forward(item{data: data}) {
			return
		}
	}
}

// endedCleanly reports whether a read error is the normal end of the
// connection: a close frame from the server, or our own Close.
func (s *Stream) endedCleanly(err error) bool {
	closeErr := &websocket.CloseError{}
	if errors.As(err, &closeErr) {
		s.logDebug("Stream closed by server", map[string]interface{}{
			"url":  s.url,
			"code": closeErr.Code,
		})

		return true
	}

	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// forward blocks until the consumer takes it or the stream is closed.
func (s *Stream) forward(it item) bool {
	select {
	case s.items <- it:
		return true
	case <-s.stop:
		return false
	}
}

// Send serializes v as JSON and writes it as one text frame. Concurrent
// calls are serialized.
func (s *Stream) Send(ctx context.Context, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encoding message: %w", alpaca.ErrStreaming, err)
	}

	return s.SendText(ctx, data)
}

// SendText writes data as one text frame.
func (s *Stream) SendText(ctx context.Context, data []byte) error {
	err := ctx.Err()
	if err != nil {
		return fmt.Errorf("%w: %w", alpaca.ErrStreaming, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed.Load() {
		return fmt.Errorf("%w: %w", alpaca.ErrStreaming, alpaca.ErrStreamClosed)
	}

	err = s.conn.SetWriteDeadline(time.Now().Add(constants.StreamWriteTimeout))
	if err != nil {
		return fmt.Errorf("%w: setting write deadline: %w", alpaca.ErrStreaming, err)
	}

	err = s.conn.WriteMessage(websocket.TextMessage, data)
	if err != nil {
		return fmt.Errorf("%w: writing frame: %w", alpaca.ErrStreaming, err)
	}

	return nil
}

// Recv returns the next frame. It returns io.EOF once the reader has exited
// and every buffered frame has been delivered. A read failure is delivered
// once as an alpaca.ErrStreaming error, followed by io.EOF.
func (s *Stream) Recv(ctx context.Context) ([]byte, error) {
	select {
	case it, ok := <-s.items:
		if !ok {
			return nil, io.EOF
		}

		if it.err != nil {
			return nil, it.err
		}

		return it.data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// RecvJSON receives the next frame and decodes it into T.
func RecvJSON[T any](ctx context.Context, s *Stream) (T, error) {
	var value T

	data, err := s.Recv(ctx)
	if err != nil {
		return value, err
	}

	err = json.Unmarshal(data, &value)
	if err != nil {
		return value, fmt.Errorf("%w: parsing %T: %w", alpaca.ErrDeserialize, value, err)
	}

	return value, nil
}

type subscriptionRequest struct {
	Action string   `json:"action"`
	Trades []string `json:"trades"`
	Quotes []string `json:"quotes"`
	Bars   []string `json:"bars"`
}

func newSubscriptionRequest(action string, sub alpaca.Subscription) subscriptionRequest {
	return subscriptionRequest{
		Action: action,
		Trades: nonNil(sub.Trades),
		Quotes: nonNil(sub.Quotes),
		Bars:   nonNil(sub.Bars),
	}
}

func nonNil(symbols []string) []string {
	if symbols == nil {
		return []string{}
	}

	return symbols
}

// Subscribe sends one subscribe message carrying all three symbol lists.
func (s *Stream) Subscribe(ctx context.Context, sub alpaca.Subscription) error {
	return s.Send(ctx, newSubscriptionRequest(alpaca.ActionSubscribe, sub))
}

// Unsubscribe sends one unsubscribe message carrying all three symbol lists.
func (s *Stream) Unsubscribe(ctx context.Context, sub alpaca.Subscription) error {
	return s.Send(ctx, newSubscriptionRequest(alpaca.ActionUnsubscribe, sub))
}

// Listen selects account stream channels.
func (s *Stream) Listen(ctx context.Context, streams ...string) error {
	return s.Send(ctx, alpaca.NewListenMessage(streams...))
}

// Close sends a close frame, waits briefly for the server to answer, then
// closes the socket and waits for the reader goroutine to exit. It does not
// wait for a Send in progress: closing the socket fails that write. It is
// safe to call more than once; the stream cannot be used afterwards.
func (s *Stream) Close() error {
	if s.stopAfter != nil {
		s.stopAfter()
	}

	return s.shutdown()
}

func (s *Stream) shutdown() error {
	s.closeOnce.Do(func() {
		readerAlive := true

		select {
		case <-s.done:
			readerAlive = false
		default:
		}

		close(s.stop)
		s.closed.Store(true)

		// WriteControl may run alongside WriteMessage, so a stuck Send
		// holding writeMu cannot hold up the close frame.
		writeErr := s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(s.closeGrace),
		)

		timer := time.NewTimer(s.closeGrace)
		select {
		case <-s.done:
		case <-timer.C:
		}
		timer.Stop()

		closeErr := s.conn.Close()

		<-s.done

		switch {
		case writeErr != nil && readerAlive && !errors.Is(writeErr, websocket.ErrCloseSent):
			s.closeErr = fmt.Errorf("%w: sending close frame: %w", alpaca.ErrStreaming, writeErr)
		case closeErr != nil && readerAlive:
			s.closeErr = fmt.Errorf("%w: closing connection: %w", alpaca.ErrStreaming, closeErr)
		}

		s.logDebug("Stream closed", map[string]interface{}{"url": s.url})
	})

	return s.closeErr
}

func (s *Stream) logDebug(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, fields)
	}
}

func (s *Stream) logWarn(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, fields)
	}
}
