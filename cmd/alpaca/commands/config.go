package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/alpaca-client/internal/constants"
	"github.com/fivetwenty-io/alpaca-client/internal/logging"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpacaclient"
)

// Configuration keys. With the APCA environment prefix they match the
// variables read by alpaca.ConfigFromEnv.
const (
	keyAPIKeyID          = "api_key_id"
	keyAPISecretKey      = "api_secret_key"
	keyTradingBaseURL    = "trading_base_url"
	keyMarketDataBaseURL = "market_data_base_url"
	keyStreamBaseURL     = "stream_base_url"
	keyFeed              = "feed"
	keyNATSURL           = "nats_url"
	keyOutput            = "output"
)

// Config represents the CLI configuration file.
type Config struct {
	APIKeyID          string `json:"api_key_id,omitempty"           yaml:"api_key_id,omitempty"`
	APISecretKey      string `json:"api_secret_key,omitempty"       yaml:"api_secret_key,omitempty"`
	TradingBaseURL    string `json:"trading_base_url,omitempty"     yaml:"trading_base_url,omitempty"`
	MarketDataBaseURL string `json:"market_data_base_url,omitempty" yaml:"market_data_base_url,omitempty"`
	StreamBaseURL     string `json:"stream_base_url,omitempty"      yaml:"stream_base_url,omitempty"`
	Feed              string `json:"feed,omitempty"                 yaml:"feed,omitempty"`
	NATSURL           string `json:"nats_url,omitempty"             yaml:"nats_url,omitempty"`
	Output            string `json:"output,omitempty"               yaml:"output,omitempty"`
}

// Masked returns a copy that is safe to print.
func (c Config) Masked() Config {
	if c.APISecretKey != "" {
		c.APISecretKey = constants.MaskedSecret
	}

	return c
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage credentials, endpoints and defaults stored in the configuration file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigConfigureCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration with the secret key masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig().Masked()

			return render(cmd.OutOrStdout(), config, func(w io.Writer, c Config) error {
				return renderProperties(w, [][]string{
					{"Config File", formatValue(configFilePath())},
					{"API Key ID", formatValue(c.APIKeyID)},
					{"API Secret Key", formatValue(c.APISecretKey)},
					{"Trading URL", formatValue(c.TradingBaseURL)},
					{"Market Data URL", formatValue(c.MarketDataBaseURL)},
					{"Stream URL", formatValue(c.StreamBaseURL)},
					{"Feed", formatValue(c.Feed)},
					{"NATS URL", formatValue(c.NATSURL)},
					{"Output", formatValue(c.Output)},
				})
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: "Set a configuration value. Keys: api_key_id, trading_base_url, market_data_base_url, " +
			"stream_base_url, feed, nats_url, output",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigConfigureCommand() *cobra.Command {
	var live bool

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Store API credentials",
		Long:  "Prompt for the API key ID and secret key and store them in the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			reader := bufio.NewReader(cmd.InOrStdin())

			_, _ = fmt.Fprint(cmd.OutOrStdout(), "API key ID: ")

			keyID, err := reader.ReadString('\n')
			if err != nil && keyID == "" {
				return fmt.Errorf("failed to read API key ID: %w", err)
			}

			_, _ = fmt.Fprint(cmd.OutOrStdout(), "API secret key: ")

			secret, err := readSecret(cmd.InOrStdin(), reader)
			if err != nil {
				return fmt.Errorf("failed to read API secret key: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout())

			config.APIKeyID = strings.TrimSpace(keyID)
			config.APISecretKey = strings.TrimSpace(secret)

			if config.APIKeyID == "" || config.APISecretKey == "" {
				return constants.ErrNoCredentials
			}

			if live {
				config.TradingBaseURL = alpaca.LiveTradingBaseURL
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Credentials saved to %s\n", configFilePath())

			return nil
		},
	}

	cmd.Flags().BoolVar(&live, "live", false, "use the live trading endpoint instead of paper trading")

	return cmd
}

// readSecret reads without echo when in is a terminal.
func readSecret(in io.Reader, reader *bufio.Reader) (string, error) {
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		secret, err := term.ReadPassword(int(file.Fd()))
		if err != nil {
			return "", err
		}

		return string(secret), nil
	}

	secret, err := reader.ReadString('\n')
	if err != nil && secret == "" {
		return "", err
	}

	return secret, nil
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case keyAPIKeyID:
		config.APIKeyID = value
	case keyAPISecretKey:
		return constants.ErrSecretOnCommandLine
	case keyTradingBaseURL:
		config.TradingBaseURL = value
	case keyMarketDataBaseURL:
		config.MarketDataBaseURL = value
	case keyStreamBaseURL:
		config.StreamBaseURL = value
	case keyFeed:
		feed, err := alpaca.ParseFeed(value)
		if err != nil {
			return err
		}

		config.Feed = string(feed)
	case keyNATSURL:
		config.NATSURL = value
	case keyOutput:
		err := validateOutputFormat(value)
		if err != nil {
			return err
		}

		config.Output = value
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func loadConfig() *Config {
	return &Config{
		APIKeyID:          viper.GetString(keyAPIKeyID),
		APISecretKey:      viper.GetString(keyAPISecretKey),
		TradingBaseURL:    viper.GetString(keyTradingBaseURL),
		MarketDataBaseURL: viper.GetString(keyMarketDataBaseURL),
		StreamBaseURL:     viper.GetString(keyStreamBaseURL),
		Feed:              viper.GetString(keyFeed),
		NATSURL:           viper.GetString(keyNATSURL),
		Output:            viper.GetString(keyOutput),
	}
}

func configFilePath() string {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".alpaca", "config.yml")
}

func saveConfigStruct(config *Config) error {
	configFile := configFilePath()
	if configFile == "" {
		return fmt.Errorf("failed to locate configuration file: %w", os.ErrNotExist)
	}

	err := os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

var (
	loggerOnce sync.Once
	cliLogger  *logging.Logger
)

// Logger returns the CLI logger, writing to stderr at debug level with
// --verbose and warn level otherwise.
func Logger() *logging.Logger {
	loggerOnce.Do(func() {
		level := logging.WarnLevel
		if viper.GetBool("verbose") {
			level = logging.DebugLevel
		}

		logger, err := logging.New(logging.WithLevel(level), logging.WithDevelopment())
		if err != nil {
			logger = logging.Nop()
		}

		cliLogger = logger
	})

	return cliLogger
}

func buildClientConfig(config *Config) (*alpaca.Config, error) {
	if config.APIKeyID == "" || config.APISecretKey == "" {
		return nil, constants.ErrNoCredentials
	}

	return &alpaca.Config{
		APIKeyID:          config.APIKeyID,
		APISecretKey:      config.APISecretKey,
		TradingBaseURL:    config.TradingBaseURL,
		MarketDataBaseURL: config.MarketDataBaseURL,
		StreamBaseURL:     config.StreamBaseURL,
		Debug:             viper.GetBool("verbose"),
		Logger:            Logger(),
	}, nil
}

func createClient() (alpaca.Client, error) {
	clientConfig, err := buildClientConfig(loadConfig())
	if err != nil {
		return nil, err
	}

	client, err := alpacaclient.New(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}
