package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	alpacahttp "github.com/fivetwenty-io/alpaca-client/internal/http"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	t.Parallel()

	t.Run("parses body into the target shape", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte(`{"symbol":"AAPL","tradable":true}`))
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)

		asset, err := alpacahttp.Get[testAsset](context.Background(), client, "/v2/assets/AAPL")
		require.NoError(t, err)
		assert.Equal(t, testAsset{Symbol: "AAPL", Tradable: true}, asset)
	})

	t.Run("unparsable body is a deserialization error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte(`{"symbol":`))
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)

		_, err := alpacahttp.Get[testAsset](context.Background(), client, "/v2/assets/AAPL")
		require.ErrorIs(t, err, alpaca.ErrDeserialize)
		assert.Equal(t, alpaca.KindDeserialize, alpaca.KindOf(err))
	})

	t.Run("wrong shape is a deserialization error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte(`["AAPL"]`))
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)

		_, err := alpacahttp.Get[testAsset](context.Background(), client, "/v2/assets/AAPL")
		require.ErrorIs(t, err, alpaca.ErrDeserialize)
	})

	t.Run("error status is not parsed", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusForbidden)
			_, _ = writer.Write([]byte(`{"message":"forbidden"}`))
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)

		_, err := alpacahttp.Get[testAsset](context.Background(), client, "/v2/assets/AAPL")

		apiErr := &alpaca.APIError{}
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, `{"message":"forbidden"}`, apiErr.Body)
		assert.True(t, alpaca.IsUnauthorized(err))
	})
}

func TestGetWithQuery(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "active", request.URL.Query().Get("status"))
		assert.Equal(t, "us_equity", request.URL.Query().Get("asset_class"))
		_, _ = writer.Write([]byte(`[{"symbol":"AAPL","tradable":true},{"symbol":"SPY","tradable":false}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	assets, err := alpacahttp.GetWithQuery[[]testAsset](context.Background(), client, "/v2/assets", url.Values{
		"status":      []string{"active"},
		"asset_class": []string{"us_equity"},
	})
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "SPY", assets[1].Symbol)
}

func TestPostAndPatch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		body, _ := io.ReadAll(request.Body)
		assert.JSONEq(t, `{"symbol":"TSLA","tradable":true}`, string(body))
		_, _ = writer.Write(body)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	payload := testAsset{Symbol: "TSLA", Tradable: true}

	posted, err := alpacahttp.Post[testAsset](context.Background(), client, "/v2/orders", payload)
	require.NoError(t, err)
	assert.Equal(t, payload, posted)

	patched, err := alpacahttp.Patch[testAsset](context.Background(), client, "/v2/orders/1", payload)
	require.NoError(t, err)
	assert.Equal(t, payload, patched)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	t.Run("delete ignores the body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "DELETE", request.Method)
			writer.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)

		resp, err := client.Delete(context.Background(), "/v2/orders/1")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("delete parsed decodes the closed resource", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "DELETE", request.Method)
			_, _ = writer.Write([]byte(`{"symbol":"AAPL","tradable":true}`))
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)

		closed, err := alpacahttp.DeleteParsed[testAsset](context.Background(), client, "/v2/positions/AAPL")
		require.NoError(t, err)
		assert.Equal(t, "AAPL", closed.Symbol)
	})

	t.Run("delete parsed with empty body fails to parse", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)

		_, err := alpacahttp.DeleteParsed[testAsset](context.Background(), client, "/v2/positions/AAPL")
		require.ErrorIs(t, err, alpaca.ErrDeserialize)
	})
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint64(7), alpacahttp.ParseRetryAfter("7"))
	assert.Equal(t, uint64(7), alpacahttp.ParseRetryAfter(" 7 "))
	assert.Equal(t, uint64(1), alpacahttp.ParseRetryAfter(""))
	assert.Equal(t, uint64(1), alpacahttp.ParseRetryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
}
