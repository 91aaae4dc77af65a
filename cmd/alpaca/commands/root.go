package commands

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/alpaca-client/internal/constants"
)

// NewRootCommand creates the alpaca command with every subcommand attached.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "alpaca",
		Short: "Alpaca trading and market data CLI",
		Long: `A command-line interface for the Alpaca trading and market data APIs.

Credentials are read from ~/.alpaca/config.yml, a .env file or the
APCA_API_KEY_ID and APCA_API_SECRET_KEY environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validateOutputFormat(viper.GetString("output"))
		},
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.alpaca/config.yml)")
	rootCmd.PersistentFlags().StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewAccountCommand())
	rootCmd.AddCommand(NewClockCommand())
	rootCmd.AddCommand(NewCalendarCommand())
	rootCmd.AddCommand(NewOrdersCommand())
	rootCmd.AddCommand(NewPositionsCommand())
	rootCmd.AddCommand(NewAssetsCommand())
	rootCmd.AddCommand(NewQuoteCommand())
	rootCmd.AddCommand(NewTradeCommand())
	rootCmd.AddCommand(NewSnapshotCommand())
	rootCmd.AddCommand(NewBarsCommand())
	rootCmd.AddCommand(NewTradesCommand())
	rootCmd.AddCommand(NewStreamCommand())
	rootCmd.AddCommand(NewTradeUpdatesCommand())

	return rootCmd
}

// InitConfig loads .env, the configuration file and APCA_* environment
// variables into viper. A missing file is not an error.
func InitConfig() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		viper.AddConfigPath(filepath.Join(home, ".alpaca"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("APCA")
	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err == nil {
		Logger().Debug("Using config file", map[string]interface{}{"path": viper.ConfigFileUsed()})

		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}
