// Package alpacaclient is the entry point for constructing a client that
// implements alpaca.Client.
//
// It validates the configuration, fills default endpoints and wires the
// trading and market data REST clients plus the websocket streams defined in
// the alpaca package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/alpaca-client/pkg/alpacaclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Paper trading with explicit credentials.
//	  cli, err := alpacaclient.NewPaper("AK...", "secret")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or from APCA_* environment variables.
//	  cli, err = alpacaclient.NewFromEnv()
//	  if err != nil { log.Fatal(err) }
//
//	  account, err := cli.Account().Get(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = account
//	}
//
// Streams
//
//	stream, err := cli.Streams().MarketData(ctx, alpaca.FeedIEX)
//	if err != nil { log.Fatal(err) }
//	defer stream.Close()
//
//	_ = stream.Subscribe(ctx, alpaca.Subscription{Trades: []string{"AAPL"}})
//	for {
//	  msg, err := stream.Recv(ctx)
//	  if err != nil { break } // io.EOF when the server closes the stream
//	  _ = msg
//	}
package alpacaclient
