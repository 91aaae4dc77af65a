package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/alpaca-client/internal/constants"
	"github.com/fivetwenty-io/alpaca-client/internal/http"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
	"github.com/google/uuid"
)

// OrdersClient implements alpaca.OrdersClient.
type OrdersClient struct {
	httpClient *http.Client
}

// NewOrdersClient creates a new orders client.
func NewOrdersClient(httpClient *http.Client) *OrdersClient {
	return &OrdersClient{
		httpClient: httpClient,
	}
}

// Submit implements alpaca.OrdersClient.Submit. A client order ID is
// generated when the request has none; the caller's request is not modified.
func (c *OrdersClient) Submit(ctx context.Context, request *alpaca.OrderRequest) (*alpaca.Order, error) {
	body := *request
	if body.ClientOrderID == "" {
		body.ClientOrderID = uuid.NewString()
	}

	order, err := http.Post[alpaca.Order](ctx, c.httpClient, constants.APIPathOrders, &body)
	if err != nil {
		return nil, fmt.Errorf("submitting order: %w", err)
	}

	return &order, nil
}

// List implements alpaca.OrdersClient.List. An empty status uses the
// server default.
func (c *OrdersClient) List(ctx context.Context, status string) ([]alpaca.Order, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}

	orders, err := http.GetWithQuery[[]alpaca.Order](ctx, c.httpClient, constants.APIPathOrders, query)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	return orders, nil
}

// Get implements alpaca.OrdersClient.Get.
func (c *OrdersClient) Get(ctx context.Context, orderID string) (*alpaca.Order, error) {
	order, err := http.Get[alpaca.Order](ctx, c.httpClient, orderPath(orderID))
	if err != nil {
		return nil, fmt.Errorf("getting order: %w", err)
	}

	return &order, nil
}

// Replace implements alpaca.OrdersClient.Replace.
func (c *OrdersClient) Replace(ctx context.Context, orderID string, request *alpaca.ReplaceOrderRequest) (*alpaca.Order, error) {
	order, err := http.Patch[alpaca.Order](ctx, c.httpClient, orderPath(orderID), request)
	if err != nil {
		return nil, fmt.Errorf("replacing order: %w", err)
	}

	return &order, nil
}

// Cancel implements alpaca.OrdersClient.Cancel.
func (c *OrdersClient) Cancel(ctx context.Context, orderID string) error {
	_, err := c.httpClient.Delete(ctx, orderPath(orderID))
	if err != nil {
		return fmt.Errorf("canceling order: %w", err)
	}

	return nil
}

// CancelAll implements alpaca.OrdersClient.CancelAll. The server answers
// with one entry per open order; an empty body means nothing was open.
func (c *OrdersClient) CancelAll(ctx context.Context) ([]alpaca.CancelOrderResult, error) {
	resp, err := c.httpClient.Delete(ctx, constants.APIPathOrders)
	if err != nil {
		return nil, fmt.Errorf("canceling all orders: %w", err)
	}

	if len(resp.Body) == 0 {
		return []alpaca.CancelOrderResult{}, nil
	}

	results, err := http.Decode[[]alpaca.CancelOrderResult](resp)
	if err != nil {
		return nil, fmt.Errorf("canceling all orders: %w", err)
	}

	return results, nil
}

func orderPath(orderID string) string {
	return constants.APIPathOrders + "/" + url.PathEscape(orderID)
}
