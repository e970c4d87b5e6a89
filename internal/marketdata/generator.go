// Package marketdata generates mock quote and bar payloads for the
// market-data facade. The generators are pure: they hold no ledger state and
// every call produces fresh random values. Prices here are unrelated to the
// trading API's fill prices.
package marketdata

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"alpacasim/internal/domain"
)

// Generator produces random quotes and bars. The rand source is injectable
// so tests can run deterministically.
type Generator struct {
	rnd *rand.Rand
	now func() time.Time
}

// NewGenerator creates a Generator. A nil rnd gets a time-seeded source.
func NewGenerator(rnd *rand.Rand) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rnd: rnd, now: time.Now}
}

var exchanges = []string{"NASDAQ", "NYSE", "ARCA"}

// LatestQuotes generates one random quote per requested symbol. Symbols are
// trimmed and upper-cased; the result is keyed by the normalised symbol.
func (g *Generator) LatestQuotes(symbols []string) map[string]domain.Quote {
	quotes := make(map[string]domain.Quote, len(symbols))
	for _, raw := range symbols {
		sym := strings.ToUpper(strings.TrimSpace(raw))
		if sym == "" {
			continue
		}

		bid := round2(100 + g.rnd.Float64()*100)
		ask := round2(bid + 0.01 + g.rnd.Float64()*0.09)

		quotes[sym] = domain.Quote{
			AskPrice:    ask,
			AskSize:     float64((g.rnd.Intn(10) + 1) * 100),
			AskExchange: g.maybeExchange(),
			BidPrice:    bid,
			BidSize:     float64((g.rnd.Intn(10) + 1) * 100),
			BidExchange: g.maybeExchange(),
			Conditions:  g.maybeConditions(),
			Timestamp:   domain.NewTime(g.now()),
			Tape:        g.maybeTape(),
		}
	}
	return quotes
}

// LatestQuote generates the fixed-shape single-symbol snapshot used by the
// abbreviated quotes endpoint.
func (g *Generator) LatestQuote(symbol string) domain.QuoteSnapshot {
	bid := round2(100 + g.rnd.Float64()*100)
	return domain.QuoteSnapshot{
		Symbol: symbol,
		Quote: domain.InsideQuote{
			BidPrice: bid,
			AskPrice: round2(bid + 0.05),
			Time:     domain.NewTime(g.now()),
		},
	}
}

// HistoricalBars generates between one and five random OHLCV bars. The
// start, end, and timeframe arguments are accepted for API compatibility and
// ignored — the output does not model any real time range.
func (g *Generator) HistoricalBars(symbol, start, end, timeframe string) domain.BarsResponse {
	_, _, _ = start, end, timeframe

	n := g.rnd.Intn(5) + 1
	bars := make([]domain.Bar, 0, n)
	for i := 0; i < n; i++ {
		open := round2(90 + g.rnd.Float64()*20)
		closep := round2(90 + g.rnd.Float64()*20)
		high := round2(math.Max(math.Max(open, closep), open+g.rnd.Float64()*10))
		low := round2(math.Min(math.Min(open, closep), open-g.rnd.Float64()*10))
		// Random generation can still invert the range; repair it.
		if low > high {
			if high > 2.0 {
				low = round2(high - (0.1 + g.rnd.Float64()*1.9))
			} else {
				low = high
			}
		}

		bar := domain.Bar{
			Close:     closep,
			High:      high,
			Low:       low,
			Open:      open,
			Timestamp: domain.NewTime(g.now()),
			Volume:    float64(5000 + g.rnd.Intn(45001)),
		}
		if g.rnd.Intn(2) == 0 {
			tc := float64(50 + g.rnd.Intn(451))
			bar.TradeCount = &tc
		}
		if g.rnd.Intn(2) == 0 {
			vw := round2(low + g.rnd.Float64()*(high-low))
			bar.VWAP = &vw
		}
		bars = append(bars, bar)
	}

	return domain.BarsResponse{
		Bars:   bars,
		Symbol: strings.ToUpper(symbol),
	}
}

// maybeExchange picks a random exchange or nil, each with equal weight.
func (g *Generator) maybeExchange() *string {
	i := g.rnd.Intn(len(exchanges) + 1)
	if i == len(exchanges) {
		return nil
	}
	ex := exchanges[i]
	return &ex
}

func (g *Generator) maybeConditions() []string {
	switch g.rnd.Intn(3) {
	case 0:
		return []string{"R"}
	case 1:
		return []string{"O", "R"}
	default:
		return nil
	}
}

func (g *Generator) maybeTape() *string {
	tapes := []string{"A", "B", "C"}
	i := g.rnd.Intn(len(tapes) + 1)
	if i == len(tapes) {
		return nil
	}
	tape := tapes[i]
	return &tape
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
