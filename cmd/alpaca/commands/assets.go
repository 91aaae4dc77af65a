package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
)

// NewAssetsCommand creates the assets command group.
func NewAssetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assets",
		Aliases: []string{"asset"},
		Short:   "Look up assets",
		Long:    "List and inspect tradable assets",
	}

	cmd.AddCommand(newAssetsListCommand())
	cmd.AddCommand(newAssetsGetCommand())

	return cmd
}

func renderAssetsTable(w io.Writer, assets []alpaca.Asset) error {
	table := tablewriter.NewWriter(w)
	table.Header("Symbol", "Name", "Exchange", "Class", "Status", "Tradable", "Shortable", "Fractionable")

	for _, asset := range assets {
		_ = table.Append(
			asset.Symbol,
			asset.Name,
			asset.Exchange,
			asset.Class,
			asset.Status,
			formatBool(asset.Tradable),
			formatBool(asset.Shortable),
			formatBool(asset.Fractionable),
		)
	}

	return table.Render()
}

func newAssetsListCommand() *cobra.Command {
	var params alpaca.ListAssetsParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assets",
		Long:  "List assets filtered by status and asset class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			assets, err := client.Assets().List(cmd.Context(), &params)
			if err != nil {
				return fmt.Errorf("failed to list assets: %w", err)
			}

			return render(cmd.OutOrStdout(), assets, renderAssetsTable)
		},
	}

	cmd.Flags().StringVar(&params.Status, "status", "active", "asset status (active, inactive)")
	cmd.Flags().StringVar(&params.AssetClass, "asset-class", "", "asset class (us_equity, crypto)")

	return cmd
}

func newAssetsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get SYMBOL",
		Short: "Get asset details",
		Long:  "Display detailed information about one asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			asset, err := client.Assets().Get(cmd.Context(), strings.ToUpper(args[0]))
			if err != nil {
				return fmt.Errorf("failed to get asset: %w", err)
			}

			return render(cmd.OutOrStdout(), asset, func(w io.Writer, a *alpaca.Asset) error {
				return renderProperties(w, [][]string{
					{"ID", a.ID},
					{"Symbol", a.Symbol},
					{"Name", a.Name},
					{"Exchange", a.Exchange},
					{"Class", a.Class},
					{"Status", a.Status},
					{"Tradable", formatBool(a.Tradable)},
					{"Marginable", formatBool(a.Marginable)},
					{"Shortable", formatBool(a.Shortable)},
					{"Easy To Borrow", formatBool(a.EasyToBorrow)},
					{"Fractionable", formatBool(a.Fractionable)},
				})
			})
		},
	}
}
