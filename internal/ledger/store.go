// Package ledger holds the mutable state of the simulated brokerage — the
// account singleton, the position book, and the order book — together with
// the execution engine that mutates it and the query engine that reads it.
//
// The Store is the exclusive owner of all three collections. Accessors hand
// out copies, never references into the store. A single mutex guards the
// whole ledger: every operation is a cheap in-memory read-modify-write, so
// one lock is sufficient and keeps concurrent order submissions for the same
// symbol safe under a concurrent HTTP host.
package ledger

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"alpacasim/internal/domain"
)

// ErrOrderNotFound is returned when an order lookup matches neither an order
// id nor a client_order_id. It is the only error the ledger core surfaces;
// every other irregular condition (oversell, unknown symbol, sell with no
// position) is deliberately permitted.
var ErrOrderNotFound = errors.New("order not found")

// Store owns the account snapshot, the position book keyed by symbol, and
// the order book keyed by order id.
//
// Position records are never deleted: a fully sold position stays in the
// book with qty zero so a later buy reuses the same record, and listings
// filter on qty != 0 instead.
type Store struct {
	mu        sync.Mutex
	account   domain.Account
	positions map[string]*domain.Position
	symbols   []string // position insertion order, for stable listings
	orders    map[string]*domain.Order
	orderIDs  []string // order insertion order, for stable sorting
}

// NewStore creates a Store seeded with the given account snapshot and empty
// position and order books.
func NewStore(account domain.Account) *Store {
	return &Store{
		account:   account,
		positions: make(map[string]*domain.Position),
		orders:    make(map[string]*domain.Order),
	}
}

// SeedAccount builds the initial account snapshot. Cash, buying power, RegT
// buying power, non-marginable buying power, portfolio value, equity, and
// last equity all start at initialCash; everything else starts at zero.
func SeedAccount(accountNumber, currency string, initialCash decimal.Decimal) domain.Account {
	zero := decimal.RequireFromString("0.00")
	return domain.Account{
		ID:                       uuid.NewString(),
		AccountNumber:            accountNumber,
		Status:                   "ACTIVE",
		Currency:                 currency,
		BuyingPower:              initialCash,
		Cash:                     initialCash,
		PortfolioValue:           initialCash,
		Equity:                   initialCash,
		LastEquity:               initialCash,
		LongMarketValue:          zero,
		ShortMarketValue:         zero,
		InitialMargin:            zero,
		MaintenanceMargin:        zero,
		DaytradeCount:            0,
		DaytradingBuyingPower:    zero,
		RegTBuyingPower:          initialCash,
		NonMarginableBuyingPower: initialCash,
		SMA:                      decimal.Zero,
		CreatedAt:                domain.NewTime(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
}

// Account returns the account snapshot with portfolio_value and equity
// recomputed from the current position book, so reads are never stale
// relative to fills. The recomputed values are written back to the stored
// snapshot before returning a copy.
func (s *Store) Account() domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	pv := s.account.Cash
	for _, sym := range s.symbols {
		if p := s.positions[sym]; p.Qty.IsPositive() {
			pv = pv.Add(p.MarketValue)
		}
	}
	s.account.PortfolioValue = pv
	s.account.Equity = pv
	return s.account
}

// Positions returns all positions with a nonzero quantity, in the order the
// symbols were first bought. Zero-qty records stay in storage but are
// filtered out here.
func (s *Store) Positions() []domain.Position {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Position, 0, len(s.symbols))
	for _, sym := range s.symbols {
		if p := s.positions[sym]; !p.Qty.IsZero() {
			out = append(out, *p)
		}
	}
	return out
}

// saveOrder appends or overwrites an order record by id. Caller holds mu.
func (s *Store) saveOrder(o *domain.Order) {
	if _, exists := s.orders[o.ID]; !exists {
		s.orderIDs = append(s.orderIDs, o.ID)
	}
	s.orders[o.ID] = o
}
