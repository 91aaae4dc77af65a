package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600

	// ExportFilePerm is the permission for exported data files.
	ExportFilePerm = 0644
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// StreamHandshakeTimeout bounds the websocket opening handshake.
	StreamHandshakeTimeout = 10 * time.Second

	// StreamCloseGracePeriod is how long Close waits for the server's close
	// frame before tearing the socket down.
	StreamCloseGracePeriod = 2 * time.Second

	// StreamWriteTimeout bounds a single frame write.
	StreamWriteTimeout = 10 * time.Second

	// RelayConnectTimeout bounds the initial NATS connection.
	RelayConnectTimeout = 5 * time.Second
)

// DefaultBatchConcurrency caps in-flight requests of a batch executor.
const DefaultBatchConcurrency = 5

// Channel sizes.
const (
	// DefaultStreamBufferSize is the capacity of the channel between a
	// stream's reader goroutine and its consumer.
	DefaultStreamBufferSize = 256
)

// Authentication headers.
const (
	// HeaderAPIKeyID carries the API key identifier.
	HeaderAPIKeyID = "APCA-API-KEY-ID"

	// HeaderAPISecretKey carries the API secret.
	HeaderAPISecretKey = "APCA-API-SECRET-KEY"

	// HeaderRetryAfter is read from 429 responses.
	HeaderRetryAfter = "Retry-After"
)

// Trading API paths.
const (
	APIPathAccount   = "/v2/account"
	APIPathOrders    = "/v2/orders"
	APIPathPositions = "/v2/positions"
	APIPathAssets    = "/v2/assets"
	APIPathCalendar  = "/v2/calendar"
	APIPathClock     = "/v2/clock"
	APIPathStocks    = "/v2/stocks"

	// StreamPathTradeUpdates is appended to the websocket form of the
	// trading base URL.
	StreamPathTradeUpdates = "/stream"

	// StreamPathMarketData prefixes the feed name on the market data stream.
	StreamPathMarketData = "/v2/"
)

// Relay subjects.
const (
	// RelaySubjectPrefix is the default root of published subjects.
	RelaySubjectPrefix = "alpaca"

	// RelayClientName identifies the relay connection to the NATS server.
	RelayClientName = "alpaca-relay"
)

// Market data query defaults.
const (
	// HistoricalPageLimit is the page size requested from bars and trades.
	HistoricalPageLimit = 10000

	// DefaultAdjustment applies split adjustment to bars.
	DefaultAdjustment = "split"

	// DefaultFeed is the historical data feed.
	DefaultFeed = "iex"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// Date layouts.
const (
	// DateLayout is the calendar date format used by the API and CLI flags.
	DateLayout = "2006-01-02"
)
