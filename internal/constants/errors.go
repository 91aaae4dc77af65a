package constants

import "errors"

// Configuration errors.
var (
	ErrNoCredentials       = errors.New("no API credentials configured, use 'alpaca config configure' or set APCA_API_KEY_ID and APCA_API_SECRET_KEY")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrSecretOnCommandLine = errors.New("secret_key cannot be set on the command line, use 'alpaca config configure'")
)

// Validation errors.
var (
	ErrInvalidOutputFormat = errors.New("invalid output format, expected table, json or yaml")
	ErrInvalidDate         = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidDecimal      = errors.New("invalid decimal value")
	ErrQtyOrNotional       = errors.New("exactly one of --qty or --notional is required")
	ErrLimitPriceRequired  = errors.New("--limit-price is required for limit and stop_limit orders")
	ErrStopPriceRequired   = errors.New("--stop-price is required for stop and stop_limit orders")
	ErrNothingToReplace    = errors.New("at least one of --qty, --limit-price, --stop-price or --time-in-force is required")
	ErrNoSymbols           = errors.New("at least one of --trades, --quotes or --bars is required")
)
