package alpaca

import (
	"context"

	"cloud.google.com/go/civil"
)

// AccountClient reads the brokerage account.
type AccountClient interface {
	Get(ctx context.Context) (*Account, error)
}

// OrdersClient manages orders.
type OrdersClient interface {
	Submit(ctx context.Context, request *OrderRequest) (*Order, error)
	List(ctx context.Context, status string) ([]Order, error)
	Get(ctx context.Context, orderID string) (*Order, error)
	Replace(ctx context.Context, orderID string, request *ReplaceOrderRequest) (*Order, error)
	Cancel(ctx context.Context, orderID string) error
	CancelAll(ctx context.Context) ([]CancelOrderResult, error)
}

// PositionsClient manages open positions.
type PositionsClient interface {
	List(ctx context.Context) ([]Position, error)
	Get(ctx context.Context, symbol string) (*Position, error)
	Close(ctx context.Context, symbol string) (*Order, error)
}

// AssetsClient looks up tradable assets.
type AssetsClient interface {
	List(ctx context.Context, params *ListAssetsParams) ([]Asset, error)
	Get(ctx context.Context, symbol string) (*Asset, error)
}

// CalendarClient reads the market calendar.
type CalendarClient interface {
	List(ctx context.Context, start, end civil.Date) ([]CalendarDay, error)
}

// ClockClient reads the market clock.
type ClockClient interface {
	Get(ctx context.Context) (*Clock, error)
}

// MarketDataClient reads historical and latest market data.
type MarketDataClient interface {
	LatestQuote(ctx context.Context, symbol string) (*LatestQuote, error)
	LatestTrade(ctx context.Context, symbol string) (*LatestTrade, error)
	Snapshot(ctx context.Context, symbol string) (*Snapshot, error)
	Bars(ctx context.Context, symbol string, params *HistoricalParams) ([]Bar, error)
	Trades(ctx context.Context, symbol string, params *HistoricalParams) ([]Trade, error)
	BarsIterator(ctx context.Context, symbol string, params *HistoricalParams) *PageIterator[Bar]
	TradesIterator(ctx context.Context, symbol string, params *HistoricalParams) *PageIterator[Trade]
}

// MarketDataStream is an open real-time market data connection.
type MarketDataStream interface {
	Subscribe(ctx context.Context, sub Subscription) error
	Unsubscribe(ctx context.Context, sub Subscription) error
	Recv(ctx context.Context) (StreamMessage, error)
	Close() error
}

// TradeUpdatesStream is an open account stream connection.
type TradeUpdatesStream interface {
	Listen(ctx context.Context, streams ...string) error
	Recv(ctx context.Context) (AccountStreamMessage, error)
	Close() error
}

// StreamsClient opens streaming connections. The handshake payload is sent
// before the stream is returned; its acknowledgement arrives through Recv.
// The ctx given to MarketData or TradeUpdates bounds the stream's lifetime,
// not just the dial: the stream is closed when that ctx is done.
type StreamsClient interface {
	MarketData(ctx context.Context, feed Feed) (MarketDataStream, error)
	TradeUpdates(ctx context.Context) (TradeUpdatesStream, error)
}

// Client provides access to every API area.
type Client interface {
	Account() AccountClient
	Orders() OrdersClient
	Positions() PositionsClient
	Assets() AssetsClient
	Calendar() CalendarClient
	Clock() ClockClient
	MarketData() MarketDataClient
	Streams() StreamsClient
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}
