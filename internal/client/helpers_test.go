package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

const (
	testKeyID  = "test-key"
	testSecret = "test-secret"
)

// newTestClient builds a client whose trading and market data APIs are both
// served by handler.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	serverURL := newTestServer(t, handler)

	return newTestClientFor(t, serverURL, serverURL)
}

func newTestServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return server.URL
}

func newTestClientFor(t *testing.T, tradingURL, marketDataURL string, opts ...Option) *Client {
	t.Helper()

	config := alpaca.Config{
		APIKeyID:          testKeyID,
		APISecretKey:      testSecret,
		TradingBaseURL:    tradingURL,
		MarketDataBaseURL: marketDataURL,
	}.WithDefaults()

	client, err := New(config, opts...)
	require.NoError(t, err)

	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body interface{}) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

// wsServer is a scripted websocket endpoint. It records the request path,
// answers the first client frame with the greeting frames and forwards every
// later client frame to received.
type wsServer struct {
	server   *httptest.Server
	paths    chan string
	received chan string
	greeting []string
}

func newWSServer(t *testing.T, greeting ...string) *wsServer {
	t.Helper()

	ws := &wsServer{
		paths:    make(chan string, 4),
		received: make(chan string, 16),
		greeting: greeting,
	}

	upgrader := websocket.Upgrader{}

	ws.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ws.paths <- r.URL.Path

		_, auth, err := conn.ReadMessage()
		if err != nil {
			return
		}

		ws.received <- string(auth)

		for _, frame := range ws.greeting {
			if conn.WriteMessage(websocket.TextMessage, []byte(frame)) != nil {
				return
			}
		}

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}

			ws.received <- string(data)
		}
	}))

	t.Cleanup(ws.server.Close)

	return ws
}

func (ws *wsServer) httpURL() string {
	return ws.server.URL
}

func (ws *wsServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ws.server.URL, "http")
}
