// Package httpapi serves the two HTTP facades of the simulator: the trading
// API (account, positions, orders) and the market-data API (quotes, bars).
// Both mimic the Alpaca REST surface closely enough that off-the-shelf Alpaca
// client libraries can talk to them unmodified.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"alpacasim/internal/domain"
	"alpacasim/internal/journal"
	"alpacasim/internal/ledger"
)

// TradingServer serves the trading API: account, positions, and orders.
type TradingServer struct {
	store   *ledger.Store
	engine  *ledger.Engine
	journal *journal.Recorder // nil disables journaling
	log     *slog.Logger
}

// NewTradingServer creates a trading API server over the given ledger. The
// journal recorder is optional; pass nil to disable the audit trail.
func NewTradingServer(store *ledger.Store, engine *ledger.Engine, jr *journal.Recorder, log *slog.Logger) *TradingServer {
	if log == nil {
		log = slog.Default()
	}
	return &TradingServer{
		store:   store,
		engine:  engine,
		journal: jr,
		log:     log.With("component", "trading_api"),
	}
}

// RegisterRoutes registers the trading API routes on the given mux.
func (s *TradingServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v2/account", s.handleAccount)
	mux.HandleFunc("GET /v2/positions", s.handlePositions)
	mux.HandleFunc("POST /v2/orders", s.handleCreateOrder)
	mux.HandleFunc("GET /v2/orders", s.handleListOrders)
	mux.HandleFunc("GET /v2/orders/{order_id}", s.handleGetOrder)
}

// Handler returns the routed handler wrapped in request logging.
func (s *TradingServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return requestLogger(s.log, mux)
}

func (s *TradingServer) handleAccount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.Account())
}

func (s *TradingServer) handlePositions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.Positions())
}

func (s *TradingServer) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid order request: "+err.Error())
		return
	}

	order := s.engine.Submit(req)

	// Best effort: a journal failure never fails the order.
	if s.journal != nil {
		if err := s.journal.Record(r.Context(), order); err != nil {
			s.log.Warn("journaling order", "order_id", order.ID, "error", err)
		}
	}

	writeJSON(w, order)
}

func (s *TradingServer) handleListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	// "nested" is accepted for client compatibility and ignored: the
	// simulator never creates multi-leg orders, so legs are always empty.
	_ = q.Get("nested")

	orders := s.store.ListOrders(ledger.OrderFilter{
		Status:    q.Get("status"),
		Symbols:   q.Get("symbols"),
		After:     normalizeCutoff(q.Get("after")),
		Until:     normalizeCutoff(q.Get("until")),
		Direction: q.Get("direction"),
		Limit:     limit,
	})
	writeJSON(w, orders)
}

func (s *TradingServer) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.store.GetOrder(r.PathValue("order_id"))
	if err != nil {
		if errors.Is(err, ledger.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, codeOrderNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, codeBadRequest, err.Error())
		return
	}
	writeJSON(w, order)
}

// normalizeCutoff reformats an RFC 3339 cutoff timestamp into the ledger's
// wire format, so the lexicographic after/until comparison stays correct for
// clients that send second precision or a numeric offset. Unparseable values
// pass through untouched.
func normalizeCutoff(v string) string {
	if v == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return domain.NewTime(t).String()
	}
	return v
}
