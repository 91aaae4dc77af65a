package client

import (
	"context"
	"fmt"
	"net/url"

	"cloud.google.com/go/civil"
	"github.com/fivetwenty-io/alpaca-client/internal/constants"
	"github.com/fivetwenty-io/alpaca-client/internal/http"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
)

// AssetsClient implements alpaca.AssetsClient.
type AssetsClient struct {
	httpClient *http.Client
}

// NewAssetsClient creates a new assets client.
func NewAssetsClient(httpClient *http.Client) *AssetsClient {
	return &AssetsClient{
		httpClient: httpClient,
	}
}

// List implements alpaca.AssetsClient.List.
func (c *AssetsClient) List(ctx context.Context, params *alpaca.ListAssetsParams) ([]alpaca.Asset, error) {
	query := url.Values{}

	if params != nil {
		if params.Status != "" {
			query.Set("status", params.Status)
		}

		if params.AssetClass != "" {
			query.Set("asset_class", params.AssetClass)
		}
	}

	assets, err := http.GetWithQuery[[]alpaca.Asset](ctx, c.httpClient, constants.APIPathAssets, query)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}

	return assets, nil
}

// Get implements alpaca.AssetsClient.Get.
func (c *AssetsClient) Get(ctx context.Context, symbol string) (*alpaca.Asset, error) {
	asset, err := http.Get[alpaca.Asset](ctx, c.httpClient, constants.APIPathAssets+"/"+url.PathEscape(symbol))
	if err != nil {
		return nil, fmt.Errorf("getting asset: %w", err)
	}

	return &asset, nil
}

// CalendarClient implements alpaca.CalendarClient.
type CalendarClient struct {
	httpClient *http.Client
}

// NewCalendarClient creates a new calendar client.
func NewCalendarClient(httpClient *http.Client) *CalendarClient {
	return &CalendarClient{
		httpClient: httpClient,
	}
}

// List implements alpaca.CalendarClient.List. A zero date leaves that end
// of the range to the server.
func (c *CalendarClient) List(ctx context.Context, start, end civil.Date) ([]alpaca.CalendarDay, error) {
	query := url.Values{}

	if !start.IsZero() {
		query.Set("start", start.String())
	}

	if !end.IsZero() {
		query.Set("end", end.String())
	}

	days, err := http.GetWithQuery[[]alpaca.CalendarDay](ctx, c.httpClient, constants.APIPathCalendar, query)
	if err != nil {
		return nil, fmt.Errorf("getting calendar: %w", err)
	}

	return days, nil
}
