package stream

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fivetwenty-io/alpaca-client/internal/constants"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
	"github.com/gorilla/websocket"
)

// Conn is the subset of *websocket.Conn the stream needs. Tests substitute
// an in-memory implementation.
type Conn interface {
	ReadMessage() (messageType int, data []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(deadline time.Time) error
	Close() error
}

// Dialer opens a Conn to a websocket URL.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WebsocketDialer dials with gorilla/websocket.
type WebsocketDialer struct {
	HandshakeTimeout time.Duration
	Header           http.Header
}

// NewWebsocketDialer creates a dialer with the default handshake timeout.
func NewWebsocketDialer() *WebsocketDialer {
	return &WebsocketDialer{HandshakeTimeout: constants.StreamHandshakeTimeout}
}

// Dial implements Dialer.
func (d *WebsocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: d.HandshakeTimeout,
	}

	conn, resp, err := dialer.DialContext(ctx, url, d.Header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: dialing %s (status %d): %w", alpaca.ErrStreaming, url, resp.StatusCode, err)
		}

		return nil, fmt.Errorf("%w: dialing %s: %w", alpaca.ErrStreaming, url, err)
	}

	return conn, nil
}
