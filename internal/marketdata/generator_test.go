package marketdata

import (
	"math/rand"
	"testing"
)

func newDeterministicGenerator() *Generator {
	return NewGenerator(rand.New(rand.NewSource(1)))
}

func TestLatestQuotesRanges(t *testing.T) {
	g := newDeterministicGenerator()

	quotes := g.LatestQuotes([]string{"AAPL", " msft ", "GOOG"})
	if len(quotes) != 3 {
		t.Fatalf("len(quotes) = %d, want 3", len(quotes))
	}
	for _, sym := range []string{"AAPL", "MSFT", "GOOG"} {
		q, ok := quotes[sym]
		if !ok {
			t.Fatalf("missing quote for normalised symbol %q", sym)
		}
		if q.BidPrice < 100 || q.BidPrice > 200 {
			t.Errorf("%s: bid %v outside [100,200]", sym, q.BidPrice)
		}
		if q.AskPrice <= q.BidPrice {
			t.Errorf("%s: ask %v not above bid %v", sym, q.AskPrice, q.BidPrice)
		}
		if q.AskPrice > q.BidPrice+0.11 {
			t.Errorf("%s: spread %v too wide", sym, q.AskPrice-q.BidPrice)
		}
		if int(q.BidSize)%100 != 0 || q.BidSize < 100 || q.BidSize > 1000 {
			t.Errorf("%s: bid size %v not a round lot in [100,1000]", sym, q.BidSize)
		}
		if int(q.AskSize)%100 != 0 || q.AskSize < 100 || q.AskSize > 1000 {
			t.Errorf("%s: ask size %v not a round lot in [100,1000]", sym, q.AskSize)
		}
		if q.Timestamp.IsZero() {
			t.Errorf("%s: zero timestamp", sym)
		}
	}
}

func TestLatestQuotesEmptyInput(t *testing.T) {
	g := newDeterministicGenerator()
	if quotes := g.LatestQuotes(nil); len(quotes) != 0 {
		t.Errorf("len(quotes) = %d, want 0", len(quotes))
	}
	if quotes := g.LatestQuotes([]string{"", "  "}); len(quotes) != 0 {
		t.Errorf("blank symbols: len(quotes) = %d, want 0", len(quotes))
	}
}

func TestLatestQuoteSnapshot(t *testing.T) {
	g := newDeterministicGenerator()

	snap := g.LatestQuote("AAPL")
	if snap.Symbol != "AAPL" {
		t.Errorf("snap.Symbol = %q, want AAPL", snap.Symbol)
	}
	if snap.Quote.AskPrice <= snap.Quote.BidPrice {
		t.Errorf("ask %v not above bid %v", snap.Quote.AskPrice, snap.Quote.BidPrice)
	}
	if snap.Quote.Time.IsZero() {
		t.Error("zero timestamp")
	}
}

func TestHistoricalBarsOHLCConsistency(t *testing.T) {
	g := newDeterministicGenerator()

	// Many rounds to exercise the repair path for inverted low/high.
	for round := 0; round < 200; round++ {
		resp := g.HistoricalBars("tsla", "2024-01-01", "2024-01-31", "1Day")
		if resp.Symbol != "TSLA" {
			t.Fatalf("resp.Symbol = %q, want TSLA", resp.Symbol)
		}
		if len(resp.Bars) < 1 || len(resp.Bars) > 5 {
			t.Fatalf("len(bars) = %d, want 1..5", len(resp.Bars))
		}
		for i, bar := range resp.Bars {
			if bar.High < bar.Open || bar.High < bar.Close {
				t.Errorf("round %d bar %d: high %v below open %v / close %v", round, i, bar.High, bar.Open, bar.Close)
			}
			if bar.Low > bar.High {
				t.Errorf("round %d bar %d: low %v above high %v", round, i, bar.Low, bar.High)
			}
			if bar.Volume < 5000 || bar.Volume > 50000 {
				t.Errorf("round %d bar %d: volume %v outside [5000,50000]", round, i, bar.Volume)
			}
			if bar.TradeCount != nil && (*bar.TradeCount < 50 || *bar.TradeCount > 500) {
				t.Errorf("round %d bar %d: trade count %v outside [50,500]", round, i, *bar.TradeCount)
			}
			if bar.VWAP != nil && (*bar.VWAP < bar.Low-0.01 || *bar.VWAP > bar.High+0.01) {
				t.Errorf("round %d bar %d: vwap %v outside [%v,%v]", round, i, *bar.VWAP, bar.Low, bar.High)
			}
			if bar.Timestamp.IsZero() {
				t.Errorf("round %d bar %d: zero timestamp", round, i)
			}
		}
	}
}
