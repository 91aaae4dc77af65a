package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/fivetwenty-io/alpaca-client/internal/constants"
	"github.com/fivetwenty-io/alpaca-client/internal/http"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
)

// MarketDataClient implements alpaca.MarketDataClient against the market
// data base URL.
type MarketDataClient struct {
	httpClient *http.Client
}

// NewMarketDataClient creates a new market data client.
func NewMarketDataClient(httpClient *http.Client) *MarketDataClient {
	return &MarketDataClient{
		httpClient: httpClient,
	}
}

func stockPath(symbol, suffix string) string {
	return constants.APIPathStocks + "/" + url.PathEscape(symbol) + suffix
}

// LatestQuote implements alpaca.MarketDataClient.LatestQuote.
func (c *MarketDataClient) LatestQuote(ctx context.Context, symbol string) (*alpaca.LatestQuote, error) {
	quote, err := http.Get[alpaca.LatestQuote](ctx, c.httpClient, stockPath(symbol, "/quotes/latest"))
	if err != nil {
		return nil, fmt.Errorf("getting latest quote: %w", err)
	}

	return &quote, nil
}

// LatestTrade implements alpaca.MarketDataClient.LatestTrade.
func (c *MarketDataClient) LatestTrade(ctx context.Context, symbol string) (*alpaca.LatestTrade, error) {
	trade, err := http.Get[alpaca.LatestTrade](ctx, c.httpClient, stockPath(symbol, "/trades/latest"))
	if err != nil {
		return nil, fmt.Errorf("getting latest trade: %w", err)
	}

	return &trade, nil
}

// Snapshot implements alpaca.MarketDataClient.Snapshot.
func (c *MarketDataClient) Snapshot(ctx context.Context, symbol string) (*alpaca.Snapshot, error) {
	snapshot, err := http.Get[alpaca.Snapshot](ctx, c.httpClient, stockPath(symbol, "/snapshot"))
	if err != nil {
		return nil, fmt.Errorf("getting snapshot: %w", err)
	}

	return &snapshot, nil
}

// Bars implements alpaca.MarketDataClient.Bars, following page tokens until
// the range is exhausted.
func (c *MarketDataClient) Bars(ctx context.Context, symbol string, params *alpaca.HistoricalParams) ([]alpaca.Bar, error) {
	bars, err := alpaca.Paginate(ctx, c.barsFetcher(symbol, params))
	if err != nil {
		return nil, fmt.Errorf("getting bars: %w", err)
	}

	return bars, nil
}

// Trades implements alpaca.MarketDataClient.Trades.
func (c *MarketDataClient) Trades(ctx context.Context, symbol string, params *alpaca.HistoricalParams) ([]alpaca.Trade, error) {
	trades, err := alpaca.Paginate(ctx, c.tradesFetcher(symbol, params))
	if err != nil {
		return nil, fmt.Errorf("getting trades: %w", err)
	}

	return trades, nil
}

// BarsIterator implements alpaca.MarketDataClient.BarsIterator.
func (c *MarketDataClient) BarsIterator(ctx context.Context, symbol string, params *alpaca.HistoricalParams) *alpaca.PageIterator[alpaca.Bar] {
	return alpaca.NewPageIterator(ctx, c.barsFetcher(symbol, params))
}

// TradesIterator implements alpaca.MarketDataClient.TradesIterator.
func (c *MarketDataClient) TradesIterator(ctx context.Context, symbol string, params *alpaca.HistoricalParams) *alpaca.PageIterator[alpaca.Trade] {
	return alpaca.NewPageIterator(ctx, c.tradesFetcher(symbol, params))
}

func (c *MarketDataClient) barsFetcher(symbol string, params *alpaca.HistoricalParams) alpaca.PageFetcher[alpaca.Bar] {
	query := historicalQuery(params)

	timeframe := alpaca.TimeFrameDay
	if params != nil && params.TimeFrame != "" {
		timeframe = params.TimeFrame
	}

	query.Set("timeframe", timeframe)
	query.Set("adjustment", constants.DefaultAdjustment)

	path := stockPath(symbol, "/bars")

	return func(ctx context.Context, pageToken string) ([]alpaca.Bar, string, error) {
		page, err := http.GetWithQuery[alpaca.BarsPage](ctx, c.httpClient, path, withPageToken(query, pageToken))
		if err != nil {
			return nil, "", err
		}

		return page.Bars, page.Token(), nil
	}
}

func (c *MarketDataClient) tradesFetcher(symbol string, params *alpaca.HistoricalParams) alpaca.PageFetcher[alpaca.Trade] {
	query := historicalQuery(params)
	path := stockPath(symbol, "/trades")

	return func(ctx context.Context, pageToken string) ([]alpaca.Trade, string, error) {
		page, err := http.GetWithQuery[alpaca.TradesPage](ctx, c.httpClient, path, withPageToken(query, pageToken))
		if err != nil {
			return nil, "", err
		}

		return page.Trades, page.Token(), nil
	}
}

func historicalQuery(params *alpaca.HistoricalParams) url.Values {
	query := url.Values{}

	feed := constants.DefaultFeed

	if params != nil {
		if !params.Start.IsZero() {
			query.Set("start", params.Start.UTC().Format(time.RFC3339))
		}

		if !params.End.IsZero() {
			query.Set("end", params.End.UTC().Format(time.RFC3339))
		}

		if params.Feed != "" {
			feed = string(params.Feed)
		}
	}

	query.Set("feed", feed)
	query.Set("limit", strconv.Itoa(constants.HistoricalPageLimit))

	return query
}

// withPageToken returns a copy of base carrying the cursor, if any.
func withPageToken(base url.Values, pageToken string) url.Values {
	query := make(url.Values, len(base)+1)
	for key, values := range base {
		query[key] = values
	}

	if pageToken != "" {
		query.Set("page_token", pageToken)
	}

	return query
}
