package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
)

// Get issues a GET and decodes the body into T.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	return GetWithQuery[T](ctx, c, path, nil)
}

// GetWithQuery issues a GET with query parameters and decodes the body into T.
func GetWithQuery[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	resp, err := c.Get(ctx, path, query)
	if err != nil {
		var zero T

		return zero, err
	}

	return Decode[T](resp)
}

// Post issues a POST with a JSON body and decodes the response into T.
func Post[T any](ctx context.Context, c *Client, path string, body interface{}) (T, error) {
	resp, err := c.Post(ctx, path, body)
	if err != nil {
		var zero T

		return zero, err
	}

	return Decode[T](resp)
}

// Patch issues a PATCH with a JSON body and decodes the response into T.
func Patch[T any](ctx context.Context, c *Client, path string, body interface{}) (T, error) {
	resp, err := c.Patch(ctx, path, body)
	if err != nil {
		var zero T

		return zero, err
	}

	return Decode[T](resp)
}

// DeleteParsed issues a DELETE and decodes the representation of the deleted
// or closed resource into T.
func DeleteParsed[T any](ctx context.Context, c *Client, path string) (T, error) {
	resp, err := c.Delete(ctx, path)
	if err != nil {
		var zero T

		return zero, err
	}

	return Decode[T](resp)
}

// Decode parses a successful response body into T. A parse failure is
// reported as alpaca.ErrDeserialize.
func Decode[T any](resp *Response) (T, error) {
	var value T

	err := json.Unmarshal(resp.Body, &value)
	if err != nil {
		return value, fmt.Errorf("%w: parsing %T: %w", alpaca.ErrDeserialize, value, err)
	}

	return value, nil
}
