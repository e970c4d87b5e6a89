// Package domain defines the entity types shared across the simulator:
// account, position, and order records for the trading API, and quote and
// bar payloads for the market-data API.
//
// Monetary and quantity values are decimal.Decimal throughout. They marshal
// to quoted decimal strings on the wire, matching Alpaca's convention of
// string-encoded numeric fields, so no float drift can leak into payloads.
package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// TimeFormat is the wire format for timestamps: UTC, millisecond precision,
// Z-suffixed. Zero-padded so lexicographic comparison orders chronologically.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// Time wraps time.Time to marshal in TimeFormat.
type Time struct {
	time.Time
}

// NewTime returns a Time normalised to UTC.
func NewTime(t time.Time) Time {
	return Time{t.UTC()}
}

// String returns the timestamp in TimeFormat.
func (t Time) String() string {
	return t.UTC().Format(TimeFormat)
}

// MarshalJSON encodes the timestamp as a quoted TimeFormat string.
func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

// UnmarshalJSON accepts any RFC 3339 timestamp.
func (t *Time) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	t.Time = parsed.UTC()
	return nil
}

// OrderSide is the direction of an order.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderType is the execution type of an order. The set is open: unknown
// strings pass through untouched, and anything other than "market" is
// treated as a resting order.
type OrderType string

const (
	OrderTypeMarket    OrderType = "market"
	OrderTypeLimit     OrderType = "limit"
	OrderTypeStop      OrderType = "stop"
	OrderTypeStopLimit OrderType = "stop_limit"
)

// OrderStatus is the lifecycle state of an order. Market orders go
// accepted→filled synchronously at submission; every other type rests at
// "new" forever (the simulator has no further state machine).
type OrderStatus string

const (
	OrderStatusAccepted OrderStatus = "accepted"
	OrderStatusNew      OrderStatus = "new"
	OrderStatusFilled   OrderStatus = "filled"
)

// PositionSide is the direction of a position. Only long positions are
// modelled; short selling is out of scope.
type PositionSide string

const PositionSideLong PositionSide = "long"

// Account is the single cash account owned by the ledger. buying_power,
// regt_buying_power, and non_marginable_buying_power always equal cash
// (cash-only model, no margin).
type Account struct {
	ID                       string          `json:"id"`
	AccountNumber            string          `json:"account_number"`
	Status                   string          `json:"status"`
	Currency                 string          `json:"currency"`
	BuyingPower              decimal.Decimal `json:"buying_power"`
	Cash                     decimal.Decimal `json:"cash"`
	PortfolioValue           decimal.Decimal `json:"portfolio_value"`
	Equity                   decimal.Decimal `json:"equity"`
	LastEquity               decimal.Decimal `json:"last_equity"`
	LongMarketValue          decimal.Decimal `json:"long_market_value"`
	ShortMarketValue         decimal.Decimal `json:"short_market_value"`
	InitialMargin            decimal.Decimal `json:"initial_margin"`
	MaintenanceMargin        decimal.Decimal `json:"maintenance_margin"`
	DaytradeCount            int             `json:"daytrade_count"`
	DaytradingBuyingPower    decimal.Decimal `json:"daytrading_buying_power"`
	RegTBuyingPower          decimal.Decimal `json:"regt_buying_power"`
	NonMarginableBuyingPower decimal.Decimal `json:"non_marginable_buying_power"`
	SMA                      decimal.Decimal `json:"sma"`
	CreatedAt                Time            `json:"created_at"`
}

// Position is the aggregate holding for one symbol. Records are created on
// the first filled buy and never removed: a sell that drives qty to zero
// leaves the record in the store with avg_entry_price reset to zero, and
// listings filter on qty != 0.
//
// The unrealized_plpc, intraday, lastday_price, and change_today fields are
// fixed at creation time and not maintained by later fills.
type Position struct {
	AssetID                string          `json:"asset_id"`
	Symbol                 string          `json:"symbol"`
	Exchange               string          `json:"exchange"`
	AssetClass             string          `json:"asset_class"`
	AvgEntryPrice          decimal.Decimal `json:"avg_entry_price"`
	Qty                    decimal.Decimal `json:"qty"`
	Side                   PositionSide    `json:"side"`
	MarketValue            decimal.Decimal `json:"market_value"`
	CostBasis              decimal.Decimal `json:"cost_basis"`
	UnrealizedPL           decimal.Decimal `json:"unrealized_pl"`
	UnrealizedPLPC         decimal.Decimal `json:"unrealized_plpc"`
	UnrealizedIntradayPL   decimal.Decimal `json:"unrealized_intraday_pl"`
	UnrealizedIntradayPLPC decimal.Decimal `json:"unrealized_intraday_plpc"`
	CurrentPrice           decimal.Decimal `json:"current_price"`
	LastdayPrice           decimal.Decimal `json:"lastday_price"`
	ChangeToday            decimal.Decimal `json:"change_today"`
}

// Order is a single order record. Immutable once terminal; market orders are
// created and filled within the same submission, everything else rests at
// "new". Nullable fields serialise as JSON null, as the Alpaca API does.
type Order struct {
	ID             string           `json:"id"`
	ClientOrderID  string           `json:"client_order_id"`
	CreatedAt      Time             `json:"created_at"`
	UpdatedAt      Time             `json:"updated_at"`
	SubmittedAt    Time             `json:"submitted_at"`
	FilledAt       *Time            `json:"filled_at"`
	ExpiredAt      *Time            `json:"expired_at"`
	CanceledAt     *Time            `json:"canceled_at"`
	FailedAt       *Time            `json:"failed_at"`
	ReplacedAt     *Time            `json:"replaced_at"`
	ReplacedBy     *string          `json:"replaced_by"`
	Replaces       *string          `json:"replaces"`
	AssetID        string           `json:"asset_id"`
	Symbol         string           `json:"symbol"`
	AssetClass     string           `json:"asset_class"`
	Notional       *decimal.Decimal `json:"notional"`
	Qty            decimal.Decimal  `json:"qty"`
	FilledQty      decimal.Decimal  `json:"filled_qty"`
	FilledAvgPrice *decimal.Decimal `json:"filled_avg_price"`
	OrderClass     string           `json:"order_class"`
	OrderType      OrderType        `json:"order_type"`
	Type           OrderType        `json:"type"`
	Side           OrderSide        `json:"side"`
	TimeInForce    string           `json:"time_in_force"`
	LimitPrice     *decimal.Decimal `json:"limit_price"`
	StopPrice      *decimal.Decimal `json:"stop_price"`
	Status         OrderStatus      `json:"status"`
	ExtendedHours  bool             `json:"extended_hours"`
	Legs           []Order          `json:"legs"`
	TrailPercent   *decimal.Decimal `json:"trail_percent"`
	TrailPrice     *decimal.Decimal `json:"trail_price"`
	HWM            *decimal.Decimal `json:"hwm"`
}

// OrderRequest is the body of POST /v2/orders. Qty decodes from either a
// JSON number or a decimal string. TimeInForce is an opaque passthrough.
type OrderRequest struct {
	Symbol        string           `json:"symbol"`
	Qty           decimal.Decimal  `json:"qty"`
	Side          OrderSide        `json:"side"`
	Type          OrderType        `json:"type"`
	TimeInForce   string           `json:"time_in_force"`
	LimitPrice    *decimal.Decimal `json:"limit_price,omitempty"`
	StopPrice     *decimal.Decimal `json:"stop_price,omitempty"`
	ClientOrderID string           `json:"client_order_id,omitempty"`
}

// Quote is a randomly generated NBBO quote for one symbol. Market-data
// values are plain floats: they are throwaway random numbers, not ledger
// money.
type Quote struct {
	AskPrice    float64  `json:"ask_price"`
	AskSize     float64  `json:"ask_size"`
	AskExchange *string  `json:"ask_exchange"`
	BidPrice    float64  `json:"bid_price"`
	BidSize     float64  `json:"bid_size"`
	BidExchange *string  `json:"bid_exchange"`
	Conditions  []string `json:"conditions"`
	Timestamp   Time     `json:"timestamp"`
	Tape        *string  `json:"tape"`
}

// Bar is a single OHLCV bar using Alpaca's short JSON keys.
type Bar struct {
	Close      float64  `json:"c"`
	High       float64  `json:"h"`
	Low        float64  `json:"l"`
	TradeCount *float64 `json:"n"`
	Open       float64  `json:"o"`
	Timestamp  Time     `json:"t"`
	Volume     float64  `json:"v"`
	VWAP       *float64 `json:"vw"`
}

// BarsResponse is the payload of GET /v2/stocks/{symbol}/bars.
type BarsResponse struct {
	Bars          []Bar   `json:"bars"`
	Symbol        string  `json:"symbol"`
	NextPageToken *string `json:"next_page_token"`
}

// QuoteSnapshot is the fixed-shape payload of the single-symbol
// GET /v2/stocks/{symbol}/quotes/latest endpoint.
type QuoteSnapshot struct {
	Symbol string      `json:"symbol"`
	Quote  InsideQuote `json:"quote"`
}

// InsideQuote is the abbreviated bid/ask pair inside a QuoteSnapshot.
type InsideQuote struct {
	BidPrice float64 `json:"bp"`
	AskPrice float64 `json:"ap"`
	Time     Time    `json:"t"`
}
