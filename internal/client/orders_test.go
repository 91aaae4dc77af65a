package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdersClient_Submit(t *testing.T) {
	t.Parallel()

	t.Run("generates a client order id", func(t *testing.T) {
		t.Parallel()

		var sent map[string]interface{}

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v2/orders", r.URL.Path)
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			body, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(body, &sent))

			writeJSON(t, w, http.StatusOK, map[string]interface{}{
				"id":              "order-1",
				"client_order_id": sent["client_order_id"],
				"symbol":          "AAPL",
				"qty":             "10",
				"limit_price":     "150.25",
				"status":          "accepted",
			})
		})

		qty := decimal.NewFromInt(10)
		limit := decimal.RequireFromString("150.25")
		request := &alpaca.OrderRequest{
			Symbol:      "AAPL",
			Qty:         &qty,
			Side:        alpaca.SideBuy,
			Type:        alpaca.OrderTypeLimit,
			TimeInForce: alpaca.TimeInForceDay,
			LimitPrice:  &limit,
		}

		order, err := client.Orders().Submit(context.Background(), request)
		require.NoError(t, err)

		assert.Equal(t, "order-1", order.ID)
		assert.Equal(t, "accepted", order.Status)
		assert.True(t, order.LimitPrice.Valid)
		assert.True(t, limit.Equal(order.LimitPrice.Decimal))
		assert.False(t, order.Notional.Valid)

		assert.Equal(t, "AAPL", sent["symbol"])
		assert.Equal(t, "limit", sent["type"])
		assert.Equal(t, "10", sent["qty"])
		assert.NotContains(t, sent, "notional")
		assert.NotContains(t, sent, "stop_price")

		generated, ok := sent["client_order_id"].(string)
		require.True(t, ok)
		_, err = uuid.Parse(generated)
		require.NoError(t, err)
		assert.Equal(t, generated, order.ClientOrderID)
		assert.Empty(t, request.ClientOrderID, "caller's request must not be modified")
	})

	t.Run("keeps a caller supplied id", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var sent alpaca.OrderRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
			assert.Equal(t, "my-id", sent.ClientOrderID)
			writeJSON(t, w, http.StatusOK, map[string]interface{}{"id": "order-2", "client_order_id": "my-id"})
		})

		notional := decimal.NewFromInt(500)

		order, err := client.Orders().Submit(context.Background(), &alpaca.OrderRequest{
			Symbol:        "SPY",
			Notional:      &notional,
			Side:          alpaca.SideBuy,
			Type:          alpaca.OrderTypeMarket,
			TimeInForce:   alpaca.TimeInForceDay,
			ClientOrderID: "my-id",
		})
		require.NoError(t, err)
		assert.Equal(t, "my-id", order.ClientOrderID)
	})

	t.Run("rejection carries the body", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"code":40310000,"message":"insufficient buying power"}`))
		})

		qty := decimal.NewFromInt(1)

		_, err := client.Orders().Submit(context.Background(), &alpaca.OrderRequest{
			Symbol: "AAPL", Qty: &qty, Side: alpaca.SideBuy, Type: alpaca.OrderTypeMarket, TimeInForce: alpaca.TimeInForceDay,
		})
		require.Error(t, err)
		assert.Equal(t, alpaca.KindAPI, alpaca.KindOf(err))
		assert.Contains(t, err.Error(), "insufficient buying power")
		assert.Contains(t, err.Error(), "submitting order")
	})
}

func TestOrdersClient_List(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status string
		query  string
	}{
		{name: "no filter", status: "", query: ""},
		{name: "open", status: alpaca.OrderStatusOpen, query: "status=open"},
		{name: "all", status: alpaca.OrderStatusAll, query: "status=all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v2/orders", r.URL.Path)
				assert.Equal(t, tt.query, r.URL.RawQuery)
				writeJSON(t, w, http.StatusOK, []map[string]interface{}{{"id": "a"}, {"id": "b"}})
			})

			orders, err := client.Orders().List(context.Background(), tt.status)
			require.NoError(t, err)
			require.Len(t, orders, 2)
			assert.Equal(t, "b", orders[1].ID)
		})
	}
}

func TestOrdersClient_GetReplaceCancel(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/orders/order-1", r.URL.Path)

		switch r.Method {
		case "GET":
			writeJSON(t, w, http.StatusOK, map[string]interface{}{"id": "order-1", "status": "new"})
		case "PATCH":
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"qty":"5","time_in_force":"gtc"}`, string(body))
			writeJSON(t, w, http.StatusOK, map[string]interface{}{"id": "order-2", "replaces": "order-1"})
		case "DELETE":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	ctx := context.Background()

	order, err := client.Orders().Get(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, "new", order.Status)

	qty := decimal.NewFromInt(5)
	replaced, err := client.Orders().Replace(ctx, "order-1", &alpaca.ReplaceOrderRequest{Qty: &qty, TimeInForce: alpaca.TimeInForceGTC})
	require.NoError(t, err)
	assert.Equal(t, "order-2", replaced.ID)
	require.NotNil(t, replaced.Replaces)
	assert.Equal(t, "order-1", *replaced.Replaces)

	require.NoError(t, client.Orders().Cancel(ctx, "order-1"))
}

func TestOrdersClient_CancelMissing(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"order not found"}`))
	})

	err := client.Orders().Cancel(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, alpaca.IsNotFound(err))
}

func TestOrdersClient_CancelAll(t *testing.T) {
	t.Parallel()

	t.Run("multi status response", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "DELETE", r.Method)
			assert.Equal(t, "/v2/orders", r.URL.Path)
			writeJSON(t, w, http.StatusMultiStatus, []map[string]interface{}{
				{"id": "a", "status": 200, "body": map[string]interface{}{"id": "a", "status": "pending_cancel"}},
				{"id": "b", "status": 500},
			})
		})

		results, err := client.Orders().CancelAll(context.Background())
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, 200, results[0].Status)
		require.NotNil(t, results[0].Body)
		assert.Equal(t, "pending_cancel", results[0].Body.Status)
		assert.Nil(t, results[1].Body)
	})

	t.Run("nothing open", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		results, err := client.Orders().CancelAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
