package alpaca

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Order sides.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Order types.
const (
	OrderTypeMarket       = "market"
	OrderTypeLimit        = "limit"
	OrderTypeStop         = "stop"
	OrderTypeStopLimit    = "stop_limit"
	OrderTypeTrailingStop = "trailing_stop"
)

// Time in force values.
const (
	TimeInForceDay = "day"
	TimeInForceGTC = "gtc"
	TimeInForceOPG = "opg"
	TimeInForceCLS = "cls"
	TimeInForceIOC = "ioc"
	TimeInForceFOK = "fok"
)

// Order status filters accepted by ListOrders.
const (
	OrderStatusOpen   = "open"
	OrderStatusClosed = "closed"
	OrderStatusAll    = "all"
)

// Bar timeframes.
const (
	TimeFrameMinute = "1Min"
	TimeFrameHour   = "1Hour"
	TimeFrameDay    = "1Day"
	TimeFrameWeek   = "1Week"
	TimeFrameMonth  = "1Month"
)

// Account represents a brokerage account.
type Account struct {
	ID                 string              `json:"id"                     yaml:"id"`
	AccountNumber      string              `json:"account_number"         yaml:"account_number"`
	Status             string              `json:"status"                 yaml:"status"`
	CryptoStatus       string              `json:"crypto_status,omitempty" yaml:"crypto_status,omitempty"`
	Currency           string              `json:"currency"               yaml:"currency"`
	BuyingPower        decimal.Decimal     `json:"buying_power"           yaml:"buying_power"`
	Cash               decimal.Decimal     `json:"cash"                   yaml:"cash"`
	PortfolioValue     decimal.Decimal     `json:"portfolio_value"        yaml:"portfolio_value"`
	Equity             decimal.Decimal     `json:"equity"                 yaml:"equity"`
	LastEquity         decimal.Decimal     `json:"last_equity"            yaml:"last_equity"`
	LongMarketValue    decimal.Decimal     `json:"long_market_value"      yaml:"long_market_value"`
	ShortMarketValue   decimal.Decimal     `json:"short_market_value"     yaml:"short_market_value"`
	InitialMargin      decimal.Decimal     `json:"initial_margin"         yaml:"initial_margin"`
	MaintenanceMargin  decimal.Decimal     `json:"maintenance_margin"     yaml:"maintenance_margin"`
	Multiplier         decimal.Decimal     `json:"multiplier"             yaml:"multiplier"`
	SMA                decimal.NullDecimal `json:"sma"                    yaml:"sma"`
	DaytradeCount      int                 `json:"daytrade_count"         yaml:"daytrade_count"`
	PatternDayTrader   bool                `json:"pattern_day_trader"     yaml:"pattern_day_trader"`
	TradingBlocked     bool                `json:"trading_blocked"        yaml:"trading_blocked"`
	TransfersBlocked   bool                `json:"transfers_blocked"      yaml:"transfers_blocked"`
	AccountBlocked     bool                `json:"account_blocked"        yaml:"account_blocked"`
	ShortingEnabled    bool                `json:"shorting_enabled"       yaml:"shorting_enabled"`
	CreatedAt          time.Time           `json:"created_at"             yaml:"created_at"`
}

// Order represents an order as returned by the trading API.
type Order struct {
	ID             string              `json:"id"                   yaml:"id"`
	ClientOrderID  string              `json:"client_order_id"      yaml:"client_order_id"`
	CreatedAt      time.Time           `json:"created_at"           yaml:"created_at"`
	UpdatedAt      *time.Time          `json:"updated_at"           yaml:"updated_at,omitempty"`
	SubmittedAt    *time.Time          `json:"submitted_at"         yaml:"submitted_at,omitempty"`
	FilledAt       *time.Time          `json:"filled_at"            yaml:"filled_at,omitempty"`
	ExpiredAt      *time.Time          `json:"expired_at"           yaml:"expired_at,omitempty"`
	CanceledAt     *time.Time          `json:"canceled_at"          yaml:"canceled_at,omitempty"`
	FailedAt       *time.Time          `json:"failed_at"            yaml:"failed_at,omitempty"`
	ReplacedAt     *time.Time          `json:"replaced_at"          yaml:"replaced_at,omitempty"`
	ReplacedBy     *string             `json:"replaced_by"          yaml:"replaced_by,omitempty"`
	Replaces       *string             `json:"replaces"             yaml:"replaces,omitempty"`
	AssetID        string              `json:"asset_id"             yaml:"asset_id"`
	Symbol         string              `json:"symbol"               yaml:"symbol"`
	AssetClass     string              `json:"asset_class"          yaml:"asset_class"`
	Notional       decimal.NullDecimal `json:"notional"             yaml:"notional"`
	Qty            decimal.NullDecimal `json:"qty"                  yaml:"qty"`
	FilledQty      decimal.NullDecimal `json:"filled_qty"           yaml:"filled_qty"`
	FilledAvgPrice decimal.NullDecimal `json:"filled_avg_price"     yaml:"filled_avg_price"`
	OrderClass     string              `json:"order_class"          yaml:"order_class"`
	Type           string              `json:"type"                 yaml:"type"`
	Side           string              `json:"side"                 yaml:"side"`
	TimeInForce    string              `json:"time_in_force"        yaml:"time_in_force"`
	LimitPrice     decimal.NullDecimal `json:"limit_price"          yaml:"limit_price"`
	StopPrice      decimal.NullDecimal `json:"stop_price"           yaml:"stop_price"`
	TrailPercent   decimal.NullDecimal `json:"trail_percent"        yaml:"trail_percent"`
	TrailPrice     decimal.NullDecimal `json:"trail_price"          yaml:"trail_price"`
	HWM            decimal.NullDecimal `json:"hwm"                  yaml:"hwm"`
	Status         string              `json:"status"               yaml:"status"`
	ExtendedHours  bool                `json:"extended_hours"       yaml:"extended_hours"`
	Legs           []Order             `json:"legs"                 yaml:"legs,omitempty"`
}

// OrderRequest is the payload for submitting an order.
type OrderRequest struct {
	Symbol        string           `json:"symbol"                    yaml:"symbol"`
	Qty           *decimal.Decimal `json:"qty,omitempty"             yaml:"qty,omitempty"`
	Notional      *decimal.Decimal `json:"notional,omitempty"        yaml:"notional,omitempty"`
	Side          string           `json:"side"                      yaml:"side"`
	Type          string           `json:"type"                      yaml:"type"`
	TimeInForce   string           `json:"time_in_force"             yaml:"time_in_force"`
	LimitPrice    *decimal.Decimal `json:"limit_price,omitempty"     yaml:"limit_price,omitempty"`
	StopPrice     *decimal.Decimal `json:"stop_price,omitempty"      yaml:"stop_price,omitempty"`
	ExtendedHours bool             `json:"extended_hours"            yaml:"extended_hours"`
	ClientOrderID string           `json:"client_order_id,omitempty" yaml:"client_order_id,omitempty"`
}

// ReplaceOrderRequest is the payload for replacing an open order. Nil fields
// are left unchanged.
type ReplaceOrderRequest struct {
	Qty           *decimal.Decimal `json:"qty,omitempty"             yaml:"qty,omitempty"`
	LimitPrice    *decimal.Decimal `json:"limit_price,omitempty"     yaml:"limit_price,omitempty"`
	StopPrice     *decimal.Decimal `json:"stop_price,omitempty"      yaml:"stop_price,omitempty"`
	TimeInForce   string           `json:"time_in_force,omitempty"   yaml:"time_in_force,omitempty"`
	ClientOrderID string           `json:"client_order_id,omitempty" yaml:"client_order_id,omitempty"`
}

// CancelOrderResult is one entry of the cancel-all response.
type CancelOrderResult struct {
	ID     string `json:"id"     yaml:"id"`
	Status int    `json:"status" yaml:"status"`
	Body   *Order `json:"body"   yaml:"body,omitempty"`
}

// Position represents an open position.
type Position struct {
	AssetID                string              `json:"asset_id"                 yaml:"asset_id"`
	Symbol                 string              `json:"symbol"                   yaml:"symbol"`
	Exchange               string              `json:"exchange"                 yaml:"exchange"`
	AssetClass             string              `json:"asset_class"              yaml:"asset_class"`
	Qty                    decimal.Decimal     `json:"qty"                      yaml:"qty"`
	QtyAvailable           decimal.NullDecimal `json:"qty_available"            yaml:"qty_available"`
	AvgEntryPrice          decimal.Decimal     `json:"avg_entry_price"          yaml:"avg_entry_price"`
	Side                   string              `json:"side"                     yaml:"side"`
	MarketValue            decimal.NullDecimal `json:"market_value"             yaml:"market_value"`
	CostBasis              decimal.Decimal     `json:"cost_basis"               yaml:"cost_basis"`
	UnrealizedPL           decimal.NullDecimal `json:"unrealized_pl"            yaml:"unrealized_pl"`
	UnrealizedPLPC         decimal.NullDecimal `json:"unrealized_plpc"          yaml:"unrealized_plpc"`
	UnrealizedIntradayPL   decimal.NullDecimal `json:"unrealized_intraday_pl"   yaml:"unrealized_intraday_pl"`
	UnrealizedIntradayPLPC decimal.NullDecimal `json:"unrealized_intraday_plpc" yaml:"unrealized_intraday_plpc"`
	CurrentPrice           decimal.NullDecimal `json:"current_price"            yaml:"current_price"`
	LastdayPrice           decimal.NullDecimal `json:"lastday_price"            yaml:"lastday_price"`
	ChangeToday            decimal.NullDecimal `json:"change_today"             yaml:"change_today"`
}

// Asset represents a tradable instrument.
type Asset struct {
	ID                           string              `json:"id"                             yaml:"id"`
	Class                        string              `json:"class"                          yaml:"class"`
	Exchange                     string              `json:"exchange"                       yaml:"exchange"`
	Symbol                       string              `json:"symbol"                         yaml:"symbol"`
	Name                         string              `json:"name"                           yaml:"name"`
	Status                       string              `json:"status"                         yaml:"status"`
	Tradable                     bool                `json:"tradable"                       yaml:"tradable"`
	Marginable                   bool                `json:"marginable"                     yaml:"marginable"`
	Shortable                    bool                `json:"shortable"                      yaml:"shortable"`
	EasyToBorrow                 bool                `json:"easy_to_borrow"                 yaml:"easy_to_borrow"`
	Fractionable                 bool                `json:"fractionable"                   yaml:"fractionable"`
	MaintenanceMarginRequirement decimal.NullDecimal `json:"maintenance_margin_requirement" yaml:"maintenance_margin_requirement"`
}

// ListAssetsParams filters ListAssets. Empty fields are not sent.
type ListAssetsParams struct {
	Status     string
	AssetClass string
}

// CalendarDay is one trading day of the market calendar.
type CalendarDay struct {
	Date         civil.Date `json:"date"                    yaml:"date"`
	Open         string     `json:"open"                    yaml:"open"`
	Close        string     `json:"close"                   yaml:"close"`
	SessionOpen  string     `json:"session_open,omitempty"  yaml:"session_open,omitempty"`
	SessionClose string     `json:"session_close,omitempty" yaml:"session_close,omitempty"`
}

// Clock is the market clock.
type Clock struct {
	Timestamp time.Time `json:"timestamp"  yaml:"timestamp"`
	IsOpen    bool      `json:"is_open"    yaml:"is_open"`
	NextOpen  time.Time `json:"next_open"  yaml:"next_open"`
	NextClose time.Time `json:"next_close" yaml:"next_close"`
}

// Quote is a top-of-book quote.
type Quote struct {
	AskPrice    decimal.Decimal `json:"ap" yaml:"ask_price"`
	AskSize     int64           `json:"as" yaml:"ask_size"`
	AskExchange string          `json:"ax" yaml:"ask_exchange"`
	BidPrice    decimal.Decimal `json:"bp" yaml:"bid_price"`
	BidSize     int64           `json:"bs" yaml:"bid_size"`
	BidExchange string          `json:"bx" yaml:"bid_exchange"`
	Conditions  []string        `json:"c"  yaml:"conditions,omitempty"`
	Timestamp   time.Time       `json:"t"  yaml:"timestamp"`
	Tape        string          `json:"z"  yaml:"tape"`
}

// Trade is a single trade print.
type Trade struct {
	Timestamp  time.Time       `json:"t" yaml:"timestamp"`
	Price      decimal.Decimal `json:"p" yaml:"price"`
	Size       int64           `json:"s" yaml:"size"`
	Exchange   string          `json:"x" yaml:"exchange"`
	ID         int64           `json:"i" yaml:"id"`
	Conditions []string        `json:"c" yaml:"conditions,omitempty"`
	Tape       string          `json:"z" yaml:"tape"`
}

// Bar is an OHLCV aggregate.
type Bar struct {
	Timestamp  time.Time       `json:"t"  yaml:"timestamp"`
	Open       decimal.Decimal `json:"o"  yaml:"open"`
	High       decimal.Decimal `json:"h"  yaml:"high"`
	Low        decimal.Decimal `json:"l"  yaml:"low"`
	Close      decimal.Decimal `json:"c"  yaml:"close"`
	Volume     int64           `json:"v"  yaml:"volume"`
	TradeCount int64           `json:"n"  yaml:"trade_count,omitempty"`
	VWAP       decimal.Decimal `json:"vw" yaml:"vwap,omitempty"`
}

// LatestQuote is the latest quote for one symbol.
type LatestQuote struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Quote  Quote  `json:"quote"  yaml:"quote"`
}

// LatestTrade is the latest trade for one symbol.
type LatestTrade struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Trade  Trade  `json:"trade"  yaml:"trade"`
}

// Snapshot bundles the latest market state for one symbol.
type Snapshot struct {
	LatestTrade  *Trade `json:"latestTrade"  yaml:"latest_trade,omitempty"`
	LatestQuote  *Quote `json:"latestQuote"  yaml:"latest_quote,omitempty"`
	MinuteBar    *Bar   `json:"minuteBar"    yaml:"minute_bar,omitempty"`
	DailyBar     *Bar   `json:"dailyBar"     yaml:"daily_bar,omitempty"`
	PrevDailyBar *Bar   `json:"prevDailyBar" yaml:"prev_daily_bar,omitempty"`
}

// BarsPage is one page of the single-symbol bars endpoint. A null bars array
// decodes as empty.
type BarsPage struct {
	Symbol        string  `json:"symbol"`
	Bars          []Bar   `json:"bars"`
	NextPageToken *string `json:"next_page_token"`
}

// TradesPage is one page of the single-symbol trades endpoint.
type TradesPage struct {
	Symbol        string  `json:"symbol"`
	Trades        []Trade `json:"trades"`
	NextPageToken *string `json:"next_page_token"`
}

// Token returns the next page token, empty at the end of the sequence.
func (p *BarsPage) Token() string {
	if p.NextPageToken == nil {
		return ""
	}

	return *p.NextPageToken
}

// Token returns the next page token, empty at the end of the sequence.
func (p *TradesPage) Token() string {
	if p.NextPageToken == nil {
		return ""
	}

	return *p.NextPageToken
}

// HistoricalParams selects a time range for bars and trades.
type HistoricalParams struct {
	Start time.Time
	End   time.Time
	// TimeFrame applies to bars only; empty means TimeFrameDay.
	TimeFrame string
	// Feed defaults to FeedIEX.
	Feed Feed
}
