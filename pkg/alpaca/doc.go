// Package alpaca provides types, interfaces, and helpers for working with the
// Alpaca trading, market data and streaming APIs.
//
// # Overview
//
// The alpaca package defines the domain types (Account, Order, Position,
// Asset, Quote, Trade, Bar) and the interfaces for the per-area clients
// (AccountClient, OrdersClient, MarketDataClient, StreamsClient). A concrete
// implementation is provided by the alpacaclient package, which wires
// configuration, transport and credentials. Most consumers import
// alpacaclient to construct a client and then use the interfaces exposed
// here.
//
// Getting a client
//
//	cli, err := alpacaclient.New(&alpaca.Config{
//	  APIKeyID:     "AK...",
//	  APISecretKey: "secret",
//	})
//	if err != nil { log.Fatal(err) }
//
//	orders, err := cli.Orders().List(ctx, alpaca.OrderStatusOpen)
//
// # Pagination
//
// Historical bars and trades are returned one page at a time by the server.
// MarketDataClient.Bars and Trades follow the page tokens and return every
// item; BarsIterator and TradesIterator walk them lazily. Paginate and
// PageIterator work with any PageFetcher:
//
//	all, err := alpaca.Paginate(ctx, func(ctx context.Context, token string) ([]Item, string, error) {
//	  page, err := fetchPage(ctx, token)
//	  if err != nil { return nil, "", err }
//	  return page.Items, page.NextPageToken, nil
//	})
//
// # Errors
//
// Every error returned by a client belongs to one kind, reported by KindOf:
// a transport failure (ErrTransport), a non-2xx response (*APIError), a 429
// response (*RateLimitError), an unparsable body (ErrDeserialize), invalid
// configuration (ErrConfig) or a websocket failure (ErrStreaming). Helpers
// such as IsNotFound, IsUnauthorized and RetryAfter branch on common cases.
// Nothing is retried automatically.
//
// # Streams
//
// StreamsClient opens the real-time market data stream for a Feed and the
// account stream for trade updates. The credentials are sent as the first
// frame; the server's answer is the first message returned by Recv. Recv
// returns io.EOF once the stream has ended.
package alpaca
