package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/alpaca-client/internal/constants"
	"github.com/fivetwenty-io/alpaca-client/internal/http"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
)

// PositionsClient implements alpaca.PositionsClient.
type PositionsClient struct {
	httpClient *http.Client
}

// NewPositionsClient creates a new positions client.
func NewPositionsClient(httpClient *http.Client) *PositionsClient {
	return &PositionsClient{
		httpClient: httpClient,
	}
}

// List implements alpaca.PositionsClient.List.
func (c *PositionsClient) List(ctx context.Context) ([]alpaca.Position, error) {
	positions, err := http.Get[[]alpaca.Position](ctx, c.httpClient, constants.APIPathPositions)
	if err != nil {
		return nil, fmt.Errorf("listing positions: %w", err)
	}

	return positions, nil
}

// Get implements alpaca.PositionsClient.Get.
func (c *PositionsClient) Get(ctx context.Context, symbol string) (*alpaca.Position, error) {
	position, err := http.Get[alpaca.Position](ctx, c.httpClient, positionPath(symbol))
	if err != nil {
		return nil, fmt.Errorf("getting position: %w", err)
	}

	return &position, nil
}

// Close implements alpaca.PositionsClient.Close. The response is the order
// that liquidates the position.
func (c *PositionsClient) Close(ctx context.Context, symbol string) (*alpaca.Order, error) {
	order, err := http.DeleteParsed[alpaca.Order](ctx, c.httpClient, positionPath(symbol))
	if err != nil {
		return nil, fmt.Errorf("closing position: %w", err)
	}

	return &order, nil
}

func positionPath(symbol string) string {
	return constants.APIPathPositions + "/" + url.PathEscape(symbol)
}
