package ledger

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"alpacasim/internal/domain"
)

// Engine executes incoming orders against the ledger. It is the only writer
// of the account and the position book.
//
// Market orders fill synchronously at submission, at the price table's quote
// for the symbol. Every other order type is recorded at status "new" and
// never touched again. There are no partial fills, no rejections, and no
// validation of funds or held quantity: an oversell simply drives the
// position quantity negative.
type Engine struct {
	store  *Store
	prices *PriceTable
	log    *slog.Logger

	// Overridable for deterministic tests.
	now   func() time.Time
	newID func() string
}

// NewEngine creates an Engine over the given store and price table.
func NewEngine(store *Store, prices *PriceTable, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store:  store,
		prices: prices,
		log:    log.With("component", "ledger"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Submit executes an order request and returns the resulting order record.
// The whole read-modify-write runs under the store lock.
func (e *Engine) Submit(req domain.OrderRequest) domain.Order {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()

	now := domain.NewTime(e.now())
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))

	clientOrderID := req.ClientOrderID
	if clientOrderID == "" {
		clientOrderID = "mock_client_" + e.newID()[:12]
	}

	order := domain.Order{
		ID:            e.newID(),
		ClientOrderID: clientOrderID,
		CreatedAt:     now,
		UpdatedAt:     now,
		SubmittedAt:   now,
		AssetID:       e.newID(),
		Symbol:        symbol,
		AssetClass:    "us_equity",
		Qty:           req.Qty,
		FilledQty:     decimal.Zero,
		OrderType:     req.Type,
		Type:          req.Type,
		Side:          req.Side,
		TimeInForce:   req.TimeInForce,
		LimitPrice:    req.LimitPrice,
		StopPrice:     req.StopPrice,
		Status:        domain.OrderStatusAccepted,
	}

	if req.Type == domain.OrderTypeMarket {
		price := e.prices.FillPrice(symbol)
		filledAt := now
		fillPrice := price

		order.Status = domain.OrderStatusFilled
		order.FilledAt = &filledAt
		order.FilledQty = req.Qty
		order.FilledAvgPrice = &fillPrice

		e.applyFill(symbol, req.Side, req.Qty, price)

		e.log.Info("order filled",
			"order_id", order.ID,
			"symbol", symbol,
			"side", req.Side,
			"qty", req.Qty.String(),
			"price", price.String(),
		)
	} else {
		// Resting order: recorded, never executed, never expired.
		order.Status = domain.OrderStatusNew
	}

	e.store.saveOrder(&order)
	return order
}

// applyFill mutates the position book and account for an executed market
// order. Caller holds the store lock.
func (e *Engine) applyFill(symbol string, side domain.OrderSide, qty, price decimal.Decimal) {
	pos, exists := e.store.positions[symbol]
	switch {
	case exists:
		if side == domain.OrderSideBuy {
			newQty := pos.Qty.Add(qty)
			newCost := pos.CostBasis.Add(qty.Mul(price))
			if newQty.IsZero() {
				pos.AvgEntryPrice = decimal.Zero
			} else {
				pos.AvgEntryPrice = newCost.Div(newQty)
			}
			pos.Qty = newQty
			pos.CostBasis = newCost
			pos.Side = domain.PositionSideLong
		} else {
			// qty may go negative here; the oversell is not prevented.
			pos.CostBasis = pos.CostBasis.Sub(qty.Mul(pos.AvgEntryPrice))
			pos.Qty = pos.Qty.Sub(qty)
			if pos.Qty.IsZero() {
				pos.AvgEntryPrice = decimal.Zero
			}
		}
		pos.MarketValue = pos.Qty.Mul(price)
		pos.CurrentPrice = price
		if pos.Qty.IsZero() {
			pos.UnrealizedPL = decimal.Zero
		} else {
			pos.UnrealizedPL = price.Sub(pos.AvgEntryPrice).Mul(pos.Qty)
		}

	case side == domain.OrderSideBuy:
		cost := qty.Mul(price)
		e.store.positions[symbol] = &domain.Position{
			AssetID:                e.newID(),
			Symbol:                 symbol,
			Exchange:               "NASDAQ",
			AssetClass:             "us_equity",
			AvgEntryPrice:          price,
			Qty:                    qty,
			Side:                   domain.PositionSideLong,
			MarketValue:            cost,
			CostBasis:              cost,
			UnrealizedPL:           decimal.RequireFromString("0.00"),
			UnrealizedPLPC:         decimal.RequireFromString("0.0000"),
			UnrealizedIntradayPL:   decimal.RequireFromString("0.00"),
			UnrealizedIntradayPLPC: decimal.RequireFromString("0.0000"),
			CurrentPrice:           price,
			LastdayPrice:           price.Sub(decimal.NewFromInt(1)),
			ChangeToday:            decimal.RequireFromString("0.0000"),
		}
		e.store.symbols = append(e.store.symbols, symbol)

	default:
		// Sell with no position: the book is untouched. Short selling is
		// not modelled, but the cash leg below still applies.
	}

	acct := &e.store.account
	total := qty.Mul(price)
	if side == domain.OrderSideBuy {
		acct.Cash = acct.Cash.Sub(total)
	} else {
		acct.Cash = acct.Cash.Add(total)
	}
	acct.BuyingPower = acct.Cash
	acct.RegTBuyingPower = acct.Cash
	acct.NonMarginableBuyingPower = acct.Cash

	long := decimal.Zero
	for _, sym := range e.store.symbols {
		if p := e.store.positions[sym]; p.Qty.IsPositive() {
			long = long.Add(p.MarketValue)
		}
	}
	acct.LongMarketValue = long
	acct.PortfolioValue = acct.Cash.Add(long)
	acct.Equity = acct.PortfolioValue
}
