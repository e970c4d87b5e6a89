package httpapi

import (
	"log/slog"
	"net/http"
	"strings"

	"alpacasim/internal/marketdata"
)

// MarketDataServer serves the market-data API: latest quotes and historical
// bars. It runs as a separate listener from the trading API, mirroring the
// real deployment where the two are separate hosts.
type MarketDataServer struct {
	gen *marketdata.Generator
	log *slog.Logger
}

// NewMarketDataServer creates a market-data API server over the given
// generator.
func NewMarketDataServer(gen *marketdata.Generator, log *slog.Logger) *MarketDataServer {
	if log == nil {
		log = slog.Default()
	}
	return &MarketDataServer{
		gen: gen,
		log: log.With("component", "market_data_api"),
	}
}

// RegisterRoutes registers the market-data routes on the given mux. The
// literal /v2/stocks/quotes/latest pattern takes precedence over the
// {symbol} wildcard, so both endpoints can coexist.
func (s *MarketDataServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v2/stocks/quotes/latest", s.handleLatestQuotes)
	mux.HandleFunc("GET /v2/stocks/{symbol}/quotes/latest", s.handleSymbolQuote)
	mux.HandleFunc("GET /v2/stocks/{symbol}/bars", s.handleBars)
}

// Handler returns the routed handler wrapped in request logging.
func (s *MarketDataServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return requestLogger(s.log, mux)
}

func (s *MarketDataServer) handleLatestQuotes(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("symbols")
	if strings.TrimSpace(raw) == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "symbols query parameter is required")
		return
	}
	writeJSON(w, s.gen.LatestQuotes(strings.Split(raw, ",")))
}

func (s *MarketDataServer) handleSymbolQuote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("symbol"))
	writeJSON(w, s.gen.LatestQuote(symbol))
}

func (s *MarketDataServer) handleBars(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp := s.gen.HistoricalBars(
		r.PathValue("symbol"),
		q.Get("start"),
		q.Get("end"),
		q.Get("timeframe"),
	)
	writeJSON(w, resp)
}
