package httpapi

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/shopspring/decimal"

	"alpacasim/internal/ledger"
)

// newSDKClient points a stock Alpaca trading client at an in-process
// simulator. The trading facade has to be close enough to the real API that
// the unmodified SDK works against it.
func newSDKClient(t *testing.T) *alpaca.Client {
	t.Helper()
	store := ledger.NewStore(ledger.SeedAccount("PA_MOCK_001", "USD", decimal.RequireFromString("100000.00")))
	engine := ledger.NewEngine(store, ledger.DefaultPriceTable(), discardLogger())
	ts := httptest.NewServer(NewTradingServer(store, engine, nil, discardLogger()).Handler())
	t.Cleanup(ts.Close)

	return alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    "mock-key",
		APISecret: "mock-secret",
		BaseURL:   ts.URL,
	})
}

func TestSDKAccount(t *testing.T) {
	client := newSDKClient(t)

	acct, err := client.GetAccount()
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if acct.AccountNumber != "PA_MOCK_001" {
		t.Errorf("AccountNumber = %q, want PA_MOCK_001", acct.AccountNumber)
	}
	if !acct.Cash.Equal(decimal.RequireFromString("100000.00")) {
		t.Errorf("Cash = %s, want 100000.00", acct.Cash)
	}
	if acct.Status != "ACTIVE" {
		t.Errorf("Status = %q, want ACTIVE", acct.Status)
	}
}

func TestSDKOrderRoundTrip(t *testing.T) {
	client := newSDKClient(t)

	qty := decimal.NewFromInt(10)
	placed, err := client.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:      "AAPL",
		Qty:         &qty,
		Side:        alpaca.Buy,
		Type:        alpaca.Market,
		TimeInForce: alpaca.Day,
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if placed.ID == "" {
		t.Fatal("placed order has empty id")
	}
	if string(placed.Status) != "filled" {
		t.Errorf("order status = %q, want filled", placed.Status)
	}
	if placed.FilledAvgPrice == nil || !placed.FilledAvgPrice.Equal(decimal.NewFromInt(150)) {
		t.Errorf("FilledAvgPrice = %v, want 150", placed.FilledAvgPrice)
	}

	fetched, err := client.GetOrder(placed.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if fetched.ID != placed.ID || fetched.Symbol != "AAPL" {
		t.Errorf("GetOrder = %s/%s, want %s/AAPL", fetched.ID, fetched.Symbol, placed.ID)
	}

	orders, err := client.GetOrders(alpaca.GetOrdersRequest{Status: "filled", Nested: true})
	if err != nil {
		t.Fatalf("GetOrders: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("len(orders) = %d, want 1", len(orders))
	}

	positions, err := client.GetPositions()
	if err != nil {
		t.Fatalf("GetPositions: %v", err)
	}
	if len(positions) != 1 {
		t.Fatalf("len(positions) = %d, want 1", len(positions))
	}
	if positions[0].Symbol != "AAPL" || !positions[0].Qty.Equal(qty) {
		t.Errorf("position = %s qty %s, want AAPL qty 10", positions[0].Symbol, positions[0].Qty)
	}

	acct, err := client.GetAccount()
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if !acct.Cash.Equal(decimal.RequireFromString("98500.00")) {
		t.Errorf("Cash after fill = %s, want 98500.00", acct.Cash)
	}
}

func TestSDKOrderNotFound(t *testing.T) {
	client := newSDKClient(t)

	_, err := client.GetOrder("ffffffff-0000-0000-0000-000000000000")
	if err == nil {
		t.Fatal("GetOrder on unknown id succeeded, want error")
	}
	if !strings.Contains(err.Error(), "order not found") {
		t.Errorf("error = %v, want it to mention order not found", err)
	}
}
