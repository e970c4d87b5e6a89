package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PriceTable is the deterministic mock price lookup used at fill time. It is
// a fixed per-symbol table with a fallback price for unknown symbols; there
// is no price discovery and prices never move.
type PriceTable struct {
	prices   map[string]decimal.Decimal
	fallback decimal.Decimal
}

// DefaultPrices returns the built-in per-symbol fill prices.
func DefaultPrices() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"AAPL": decimal.NewFromInt(150),
		"MSFT": decimal.NewFromInt(300),
		"TSLA": decimal.NewFromInt(250),
		"GOOG": decimal.NewFromInt(140),
	}
}

// DefaultFallbackPrice is the fill price for symbols absent from the table.
var DefaultFallbackPrice = decimal.NewFromInt(50)

// NewPriceTable builds a PriceTable from the given per-symbol prices and
// fallback. Symbol keys are upper-cased. A nil map yields the defaults.
func NewPriceTable(prices map[string]decimal.Decimal, fallback decimal.Decimal) *PriceTable {
	if prices == nil {
		prices = DefaultPrices()
	}
	normalized := make(map[string]decimal.Decimal, len(prices))
	for sym, p := range prices {
		normalized[strings.ToUpper(sym)] = p
	}
	if fallback.IsZero() {
		fallback = DefaultFallbackPrice
	}
	return &PriceTable{prices: normalized, fallback: fallback}
}

// DefaultPriceTable returns the table the original simulator ships with:
// AAPL 150, MSFT 300, TSLA 250, GOOG 140, everything else 50.
func DefaultPriceTable() *PriceTable {
	return NewPriceTable(nil, DefaultFallbackPrice)
}

// FillPrice returns the mock fill price for a symbol. Unknown symbols fall
// back to the default price rather than failing — invalid-symbol rejection
// is intentionally not modelled.
func (t *PriceTable) FillPrice(symbol string) decimal.Decimal {
	if p, ok := t.prices[strings.ToUpper(symbol)]; ok {
		return p
	}
	return t.fallback
}
