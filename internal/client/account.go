package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/alpaca-client/internal/constants"
	"github.com/fivetwenty-io/alpaca-client/internal/http"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
)

// AccountClient implements alpaca.AccountClient.
type AccountClient struct {
	httpClient *http.Client
}

// NewAccountClient creates a new account client.
func NewAccountClient(httpClient *http.Client) *AccountClient {
	return &AccountClient{
		httpClient: httpClient,
	}
}

// Get implements alpaca.AccountClient.Get.
func (c *AccountClient) Get(ctx context.Context) (*alpaca.Account, error) {
	account, err := http.Get[alpaca.Account](ctx, c.httpClient, constants.APIPathAccount)
	if err != nil {
		return nil, fmt.Errorf("getting account: %w", err)
	}

	return &account, nil
}

// ClockClient implements alpaca.ClockClient.
type ClockClient struct {
	httpClient *http.Client
}

// NewClockClient creates a new clock client.
func NewClockClient(httpClient *http.Client) *ClockClient {
	return &ClockClient{
		httpClient: httpClient,
	}
}

// Get implements alpaca.ClockClient.Get.
func (c *ClockClient) Get(ctx context.Context) (*alpaca.Clock, error) {
	clock, err := http.Get[alpaca.Clock](ctx, c.httpClient, constants.APIPathClock)
	if err != nil {
		return nil, fmt.Errorf("getting clock: %w", err)
	}

	return &clock, nil
}
