package client

import (
	"fmt"

	"github.com/fivetwenty-io/alpaca-client/internal/constants"
	"github.com/fivetwenty-io/alpaca-client/internal/http"
	"github.com/fivetwenty-io/alpaca-client/internal/stream"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
)

// Client implements the alpaca.Client interface.
type Client struct {
	trading    *http.Client
	marketData *http.Client
	config     *alpaca.Config

	account    alpaca.AccountClient
	orders     alpaca.OrdersClient
	positions  alpaca.PositionsClient
	assets     alpaca.AssetsClient
	calendar   alpaca.CalendarClient
	clock      alpaca.ClockClient
	marketInfo alpaca.MarketDataClient
	streams    *StreamsClient
}

// Option customizes a Client beyond what alpaca.Config expresses.
type Option func(*options)

type options struct {
	dialer stream.Dialer
}

// WithStreamDialer replaces the websocket dialer used by Streams.
func WithStreamDialer(dialer stream.Dialer) Option {
	return func(o *options) {
		o.dialer = dialer
	}
}

// New creates a client from config. Both REST clients share the credential
// headers; an invalid header fails here with alpaca.ErrConfig.
func New(config *alpaca.Config, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: %w", alpaca.ErrConfig, alpaca.ErrConfigRequired)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	httpOpts := createHTTPClientOptions(config)

	trading, err := http.NewClient(config.TradingBaseURL, httpOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating trading client: %w", err)
	}

	marketData, err := http.NewClient(config.MarketDataBaseURL, httpOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating market data client: %w", err)
	}

	client := &Client{
		trading:    trading,
		marketData: marketData,
		config:     config,
	}

	client.initializeResourceClients(o)

	return client, nil
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *alpaca.Config) []http.Option {
	httpOpts := []http.Option{
		http.WithHeader(constants.HeaderAPIKeyID, config.APIKeyID),
		http.WithHeader(constants.HeaderAPISecretKey, config.APISecretKey),
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.RequestsPerSecond > 0 {
		httpOpts = append(httpOpts, http.WithRateLimit(config.RequestsPerSecond))
	}

	if len(config.RequestInterceptors) > 0 || len(config.ResponseInterceptors) > 0 {
		chain := alpaca.NewInterceptorChain()

		for _, interceptor := range config.RequestInterceptors {
			chain.AddRequestInterceptor(interceptor)
		}

		for _, interceptor := range config.ResponseInterceptors {
			chain.AddResponseInterceptor(interceptor)
		}

		httpOpts = append(httpOpts, http.WithInterceptors(chain))
	}

	return httpOpts
}

func (c *Client) initializeResourceClients(o options) {
	c.account = NewAccountClient(c.trading)
	c.orders = NewOrdersClient(c.trading)
	c.positions = NewPositionsClient(c.trading)
	c.assets = NewAssetsClient(c.trading)
	c.calendar = NewCalendarClient(c.trading)
	c.clock = NewClockClient(c.trading)
	c.marketInfo = NewMarketDataClient(c.marketData)
	c.streams = NewStreamsClient(c.config, o.dialer)
}

// Account implements alpaca.Client.Account.
func (c *Client) Account() alpaca.AccountClient {
	return c.account
}

// Orders implements alpaca.Client.Orders.
func (c *Client) Orders() alpaca.OrdersClient {
	return c.orders
}

// Positions implements alpaca.Client.Positions.
func (c *Client) Positions() alpaca.PositionsClient {
	return c.positions
}

// Assets implements alpaca.Client.Assets.
func (c *Client) Assets() alpaca.AssetsClient {
	return c.assets
}

// Calendar implements alpaca.Client.Calendar.
func (c *Client) Calendar() alpaca.CalendarClient {
	return c.calendar
}

// Clock implements alpaca.Client.Clock.
func (c *Client) Clock() alpaca.ClockClient {
	return c.clock
}

// MarketData implements alpaca.Client.MarketData.
func (c *Client) MarketData() alpaca.MarketDataClient {
	return c.marketInfo
}

// Streams implements alpaca.Client.Streams.
func (c *Client) Streams() alpaca.StreamsClient {
	return c.streams
}
