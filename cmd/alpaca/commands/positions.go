package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
)

// NewPositionsCommand creates the positions command group.
func NewPositionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "positions",
		Aliases: []string{"position", "pos"},
		Short:   "Manage open positions",
		Long:    "List, inspect and close open positions",
	}

	cmd.AddCommand(newPositionsListCommand())
	cmd.AddCommand(newPositionsGetCommand())
	cmd.AddCommand(newPositionsCloseCommand())

	return cmd
}

func renderPositionsTable(w io.Writer, positions []alpaca.Position) error {
	table := tablewriter.NewWriter(w)
	table.Header("Symbol", "Side", "Qty", "Avg Entry", "Current", "Market Value", "Unrealized P/L")

	for _, position := range positions {
		_ = table.Append(
			position.Symbol,
			position.Side,
			position.Qty.String(),
			position.AvgEntryPrice.String(),
			formatNullDecimal(position.CurrentPrice),
			formatNullDecimal(position.MarketValue),
			formatNullDecimal(position.UnrealizedPL),
		)
	}

	return table.Render()
}

func newPositionsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List open positions",
		Long:  "List every open position in the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			positions, err := client.Positions().List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list positions: %w", err)
			}

			return render(cmd.OutOrStdout(), positions, renderPositionsTable)
		},
	}
}

func newPositionsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get SYMBOL",
		Short: "Get position details",
		Long:  "Display the open position for one symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			position, err := client.Positions().Get(cmd.Context(), strings.ToUpper(args[0]))
			if err != nil {
				if alpaca.IsNotFound(err) {
					return fmt.Errorf("no open position for %s: %w", strings.ToUpper(args[0]), err)
				}

				return fmt.Errorf("failed to get position: %w", err)
			}

			return render(cmd.OutOrStdout(), position, func(w io.Writer, p *alpaca.Position) error {
				return renderPositionsTable(w, []alpaca.Position{*p})
			})
		},
	}
}

func newPositionsCloseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "close SYMBOL",
		Short: "Close a position",
		Long:  "Liquidate the open position for one symbol with a market order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			order, err := client.Positions().Close(cmd.Context(), strings.ToUpper(args[0]))
			if err != nil {
				return fmt.Errorf("failed to close position: %w", err)
			}

			return renderOrder(cmd.OutOrStdout(), order)
		},
	}
}
