package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
)

// NewAccountCommand creates the account command.
func NewAccountCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "account",
		Aliases: []string{"acct"},
		Short:   "Display account details",
		Long:    "Display balances, buying power and status of the brokerage account",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			account, err := client.Account().Get(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get account: %w", err)
			}

			return render(cmd.OutOrStdout(), account, func(w io.Writer, a *alpaca.Account) error {
				return renderProperties(w, [][]string{
					{"ID", a.ID},
					{"Account Number", a.AccountNumber},
					{"Status", a.Status},
					{"Currency", a.Currency},
					{"Cash", a.Cash.String()},
					{"Buying Power", a.BuyingPower.String()},
					{"Equity", a.Equity.String()},
					{"Portfolio Value", a.PortfolioValue.String()},
					{"Long Market Value", a.LongMarketValue.String()},
					{"Short Market Value", a.ShortMarketValue.String()},
					{"Day Trades", strconv.Itoa(a.DaytradeCount)},
					{"Pattern Day Trader", formatBool(a.PatternDayTrader)},
					{"Trading Blocked", formatBool(a.TradingBlocked)},
					{"Created", formatTime(a.CreatedAt)},
				})
			})
		},
	}
}

// NewClockCommand creates the clock command.
func NewClockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clock",
		Short: "Display the market clock",
		Long:  "Display whether the market is open and the next open and close times",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			clock, err := client.Clock().Get(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get clock: %w", err)
			}

			return render(cmd.OutOrStdout(), clock, func(w io.Writer, c *alpaca.Clock) error {
				return renderProperties(w, [][]string{
					{"Timestamp", formatTime(c.Timestamp)},
					{"Open", formatBool(c.IsOpen)},
					{"Next Open", formatTime(c.NextOpen)},
					{"Next Close", formatTime(c.NextClose)},
				})
			})
		},
	}
}

// NewCalendarCommand creates the calendar command.
func NewCalendarCommand() *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Display the market calendar",
		Long:  "Display trading days with their open and close times",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := parseDateFlag("start", start)
			if err != nil {
				return err
			}

			endDate, err := parseDateFlag("end", end)
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			days, err := client.Calendar().List(cmd.Context(), startDate, endDate)
			if err != nil {
				return fmt.Errorf("failed to get calendar: %w", err)
			}

			return render(cmd.OutOrStdout(), days, func(w io.Writer, days []alpaca.CalendarDay) error {
				table := tablewriter.NewWriter(w)
				table.Header("Date", "Open", "Close")

				for _, day := range days {
					_ = table.Append(day.Date.String(), day.Open, day.Close)
				}

				return table.Render()
			})
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "first date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last date (YYYY-MM-DD)")

	return cmd
}
