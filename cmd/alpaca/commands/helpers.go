package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/alpaca-client/internal/constants"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
)

// OutputRenderer writes one value in the selected output format.
type OutputRenderer[T any] struct {
	RenderTable func(w io.Writer, data T) error
}

// Render outputs data in the specified format. JSON and YAML use the
// value's own tags; table output is delegated to RenderTable.
func (o *OutputRenderer[T]) Render(w io.Writer, data T, format string) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		return encoder.Encode(data)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()

		return encoder.Encode(data)
	case constants.FormatTable, "":
		return o.RenderTable(w, data)
	default:
		return fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, format)
	}
}

func render[T any](w io.Writer, data T, table func(w io.Writer, data T) error) error {
	renderer := &OutputRenderer[T]{RenderTable: table}

	return renderer.Render(w, data, viper.GetString("output"))
}

// renderProperties writes a two column Property/Value table.
func renderProperties(w io.Writer, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	for _, row := range rows {
		_ = table.Append(row)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func validateOutputFormat(format string) error {
	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return nil
	default:
		return fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, format)
	}
}

func formatNullDecimal(value decimal.NullDecimal) string {
	if !value.Valid {
		return "-"
	}

	return value.Decimal.String()
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return "-"
	}

	return value.Format(time.RFC3339)
}

func formatTimePtr(value *time.Time) string {
	if value == nil {
		return "-"
	}

	return formatTime(*value)
}

func formatBool(value bool) string {
	if value {
		return "yes"
	}

	return "no"
}

func formatValue(value string) string {
	if value == "" {
		return "-"
	}

	return value
}

// parseDecimalFlag parses a decimal flag value; empty means unset.
func parseDecimalFlag(name, value string) (*decimal.Decimal, error) {
	if value == "" {
		return nil, nil
	}

	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("%w for --%s: %q", constants.ErrInvalidDecimal, name, value)
	}

	return &parsed, nil
}

// parseDateFlag parses a YYYY-MM-DD flag value; empty means the zero date.
func parseDateFlag(name, value string) (civil.Date, error) {
	if value == "" {
		return civil.Date{}, nil
	}

	date, err := civil.ParseDate(value)
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w for --%s: %q", constants.ErrInvalidDate, name, value)
	}

	return date, nil
}

// parseTimeFlag accepts RFC3339 timestamps or YYYY-MM-DD dates, which are
// read as midnight UTC. Empty means the zero time.
func parseTimeFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	parsed, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return parsed, nil
	}

	parsed, err = time.Parse(constants.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w for --%s: %q", constants.ErrInvalidDate, name, value)
	}

	return parsed, nil
}

func splitSymbols(values []string) []string {
	var symbols []string

	for _, value := range values {
		for _, symbol := range strings.Split(value, ",") {
			symbol = strings.ToUpper(strings.TrimSpace(symbol))
			if symbol != "" {
				symbols = append(symbols, symbol)
			}
		}
	}

	return symbols
}

// fetchAll calls fetch once per key through a batch executor and returns the
// values in key order. Failed keys are reported together.
func fetchAll[T any](ctx context.Context, keys []string, fetch func(context.Context, string) (T, error)) ([]T, error) {
	operations := make([]alpaca.BatchOperation[T], len(keys))

	for i, key := range keys {
		operations[i] = alpaca.BatchOperation[T]{
			ID: key,
			Run: func(ctx context.Context) (T, error) {
				value, err := fetch(ctx, key)
				if err != nil {
					return value, fmt.Errorf("%s: %w", key, err)
				}

				return value, nil
			},
		}
	}

	results, err := alpaca.NewBatchExecutor[T](constants.DefaultBatchConcurrency).Execute(ctx, operations)
	if err != nil {
		return nil, err
	}

	if err := alpaca.BatchErrors(results); err != nil {
		return nil, err
	}

	values := make([]T, len(results))
	for i, result := range results {
		values[i] = result.Data
	}

	return values, nil
}
