package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/alpaca-client/internal/constants"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
)

// NewOrdersCommand creates the orders command group.
func NewOrdersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"order"},
		Short:   "Manage orders",
		Long:    "Submit, list, replace and cancel orders",
	}

	cmd.AddCommand(newOrdersListCommand())
	cmd.AddCommand(newOrdersGetCommand())
	cmd.AddCommand(newOrdersSubmitCommand())
	cmd.AddCommand(newOrdersReplaceCommand())
	cmd.AddCommand(newOrdersCancelCommand())
	cmd.AddCommand(newOrdersCancelAllCommand())

	return cmd
}

func renderOrdersTable(w io.Writer, orders []alpaca.Order) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Symbol", "Side", "Type", "Qty", "Filled", "Limit", "Status", "Submitted")

	for _, order := range orders {
		qty := formatNullDecimal(order.Qty)
		if !order.Qty.Valid && order.Notional.Valid {
			qty = "$" + order.Notional.Decimal.String()
		}

		_ = table.Append(
			order.ID,
			order.Symbol,
			order.Side,
			order.Type,
			qty,
			formatNullDecimal(order.FilledQty),
			formatNullDecimal(order.LimitPrice),
			order.Status,
			formatTimePtr(order.SubmittedAt),
		)
	}

	return table.Render()
}

func renderOrder(w io.Writer, order *alpaca.Order) error {
	return render(w, order, func(w io.Writer, o *alpaca.Order) error {
		return renderProperties(w, [][]string{
			{"ID", o.ID},
			{"Client Order ID", o.ClientOrderID},
			{"Symbol", o.Symbol},
			{"Side", o.Side},
			{"Type", o.Type},
			{"Time In Force", o.TimeInForce},
			{"Qty", formatNullDecimal(o.Qty)},
			{"Notional", formatNullDecimal(o.Notional)},
			{"Limit Price", formatNullDecimal(o.LimitPrice)},
			{"Stop Price", formatNullDecimal(o.StopPrice)},
			{"Filled Qty", formatNullDecimal(o.FilledQty)},
			{"Filled Avg Price", formatNullDecimal(o.FilledAvgPrice)},
			{"Status", o.Status},
			{"Extended Hours", formatBool(o.ExtendedHours)},
			{"Created", formatTime(o.CreatedAt)},
			{"Filled At", formatTimePtr(o.FilledAt)},
		})
	})
}

func newOrdersListCommand() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders",
		Long:  "List orders filtered by status (open, closed or all)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			orders, err := client.Orders().List(cmd.Context(), status)
			if err != nil {
				return fmt.Errorf("failed to list orders: %w", err)
			}

			return render(cmd.OutOrStdout(), orders, renderOrdersTable)
		},
	}

	cmd.Flags().StringVar(&status, "status", alpaca.OrderStatusOpen, "order status filter (open, closed, all)")

	return cmd
}

func newOrdersGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ORDER_ID",
		Short: "Get order details",
		Long:  "Display detailed information about a specific order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			order, err := client.Orders().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get order: %w", err)
			}

			return renderOrder(cmd.OutOrStdout(), order)
		},
	}
}

type submitFlags struct {
	side          string
	orderType     string
	timeInForce   string
	qty           string
	notional      string
	limitPrice    string
	stopPrice     string
	clientOrderID string
	extendedHours bool
}

func buildOrderRequest(symbol string, flags submitFlags) (*alpaca.OrderRequest, error) {
	qty, err := parseDecimalFlag("qty", flags.qty)
	if err != nil {
		return nil, err
	}

	notional, err := parseDecimalFlag("notional", flags.notional)
	if err != nil {
		return nil, err
	}

	if (qty == nil) == (notional == nil) {
		return nil, constants.ErrQtyOrNotional
	}

	limitPrice, err := parseDecimalFlag("limit-price", flags.limitPrice)
	if err != nil {
		return nil, err
	}

	stopPrice, err := parseDecimalFlag("stop-price", flags.stopPrice)
	if err != nil {
		return nil, err
	}

	orderType := strings.ToLower(flags.orderType)

	switch orderType {
	case alpaca.OrderTypeLimit, alpaca.OrderTypeStopLimit:
		if limitPrice == nil {
			return nil, constants.ErrLimitPriceRequired
		}
	}

	switch orderType {
	case alpaca.OrderTypeStop, alpaca.OrderTypeStopLimit:
		if stopPrice == nil {
			return nil, constants.ErrStopPriceRequired
		}
	}

	return &alpaca.OrderRequest{
		Symbol:        strings.ToUpper(symbol),
		Qty:           qty,
		Notional:      notional,
		Side:          strings.ToLower(flags.side),
		Type:          orderType,
		TimeInForce:   strings.ToLower(flags.timeInForce),
		LimitPrice:    limitPrice,
		StopPrice:     stopPrice,
		ExtendedHours: flags.extendedHours,
		ClientOrderID: flags.clientOrderID,
	}, nil
}

func newOrdersSubmitCommand() *cobra.Command {
	var flags submitFlags

	cmd := &cobra.Command{
		Use:   "submit SYMBOL",
		Short: "Submit an order",
		Long:  "Submit a new order. Exactly one of --qty or --notional is required",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := buildOrderRequest(args[0], flags)
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			order, err := client.Orders().Submit(cmd.Context(), request)
			if err != nil {
				return fmt.Errorf("failed to submit order: %w", err)
			}

			return renderOrder(cmd.OutOrStdout(), order)
		},
	}

	cmd.Flags().StringVar(&flags.side, "side", alpaca.SideBuy, "order side (buy, sell)")
	cmd.Flags().StringVar(&flags.orderType, "type", alpaca.OrderTypeMarket, "order type (market, limit, stop, stop_limit)")
	cmd.Flags().StringVar(&flags.timeInForce, "time-in-force", alpaca.TimeInForceDay, "time in force (day, gtc, opg, cls, ioc, fok)")
	cmd.Flags().StringVar(&flags.qty, "qty", "", "number of shares")
	cmd.Flags().StringVar(&flags.notional, "notional", "", "dollar amount to trade")
	cmd.Flags().StringVar(&flags.limitPrice, "limit-price", "", "limit price")
	cmd.Flags().StringVar(&flags.stopPrice, "stop-price", "", "stop price")
	cmd.Flags().StringVar(&flags.clientOrderID, "client-order-id", "", "client order ID (generated when empty)")
	cmd.Flags().BoolVar(&flags.extendedHours, "extended-hours", false, "allow execution in extended hours")

	return cmd
}

type replaceFlags struct {
	qty           string
	limitPrice    string
	stopPrice     string
	timeInForce   string
	clientOrderID string
}

func buildReplaceRequest(flags replaceFlags) (*alpaca.ReplaceOrderRequest, error) {
	qty, err := parseDecimalFlag("qty", flags.qty)
	if err != nil {
		return nil, err
	}

	limitPrice, err := parseDecimalFlag("limit-price", flags.limitPrice)
	if err != nil {
		return nil, err
	}

	stopPrice, err := parseDecimalFlag("stop-price", flags.stopPrice)
	if err != nil {
		return nil, err
	}

	if qty == nil && limitPrice == nil && stopPrice == nil && flags.timeInForce == "" {
		return nil, constants.ErrNothingToReplace
	}

	return &alpaca.ReplaceOrderRequest{
		Qty:           qty,
		LimitPrice:    limitPrice,
		StopPrice:     stopPrice,
		TimeInForce:   strings.ToLower(flags.timeInForce),
		ClientOrderID: flags.clientOrderID,
	}, nil
}

func newOrdersReplaceCommand() *cobra.Command {
	var flags replaceFlags

	cmd := &cobra.Command{
		Use:   "replace ORDER_ID",
		Short: "Replace an open order",
		Long:  "Change the quantity, prices or time in force of an open order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := buildReplaceRequest(flags)
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			order, err := client.Orders().Replace(cmd.Context(), args[0], request)
			if err != nil {
				return fmt.Errorf("failed to replace order: %w", err)
			}

			return renderOrder(cmd.OutOrStdout(), order)
		},
	}

	cmd.Flags().StringVar(&flags.qty, "qty", "", "new quantity")
	cmd.Flags().StringVar(&flags.limitPrice, "limit-price", "", "new limit price")
	cmd.Flags().StringVar(&flags.stopPrice, "stop-price", "", "new stop price")
	cmd.Flags().StringVar(&flags.timeInForce, "time-in-force", "", "new time in force")
	cmd.Flags().StringVar(&flags.clientOrderID, "client-order-id", "", "client order ID for the replacement")

	return cmd
}

func newOrdersCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ORDER_ID...",
		Short: "Cancel orders",
		Long:  "Request cancellation of one or more open orders",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			_, err = fetchAll(cmd.Context(), args, func(ctx context.Context, orderID string) (struct{}, error) {
				return struct{}{}, client.Orders().Cancel(ctx, orderID)
			})
			if err != nil {
				return fmt.Errorf("failed to cancel order: %w", err)
			}

			for _, orderID := range args {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cancellation requested for order %s\n", orderID)
			}

			return nil
		},
	}
}

func newOrdersCancelAllCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel-all",
		Short: "Cancel all open orders",
		Long:  "Request cancellation of every open order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			results, err := client.Orders().CancelAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to cancel orders: %w", err)
			}

			return render(cmd.OutOrStdout(), results, func(w io.Writer, results []alpaca.CancelOrderResult) error {
				table := tablewriter.NewWriter(w)
				table.Header("Order ID", "Status")

				for _, result := range results {
					_ = table.Append(result.ID, strconv.Itoa(result.Status))
				}

				return table.Render()
			})
		},
	}
}
