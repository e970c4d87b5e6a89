package ledger

import (
	"sort"
	"strings"

	"alpacasim/internal/domain"
)

// OrderFilter selects and orders a slice of the order book.
//
// Status and Symbols are comma-separated exact-match lists; Status "all" or
// empty disables that filter. After and Until compare lexicographically
// against the formatted submitted_at timestamp, which is equivalent to a
// time comparison because the format is zero-padded. Direction "asc" sorts
// oldest first; anything else sorts newest first. A positive Limit truncates
// the filtered, sorted result.
type OrderFilter struct {
	Status    string
	Symbols   string
	After     string
	Until     string
	Direction string
	Limit     int
}

// ListOrders returns copies of all orders matching the filter, sorted by
// submitted_at.
func (s *Store) ListOrders(f OrderFilter) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := csvSet(f.Status, false)
	if f.Status == "all" {
		statuses = nil
	}
	symbols := csvSet(f.Symbols, true)

	out := make([]domain.Order, 0, len(s.orderIDs))
	for _, id := range s.orderIDs {
		o := s.orders[id]
		if statuses != nil && !statuses[string(o.Status)] {
			continue
		}
		if symbols != nil && !symbols[o.Symbol] {
			continue
		}
		submitted := o.SubmittedAt.String()
		if f.After != "" && submitted <= f.After {
			continue
		}
		if f.Until != "" && submitted >= f.Until {
			continue
		}
		out = append(out, *o)
	}

	asc := f.Direction == "asc"
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].SubmittedAt.String(), out[j].SubmittedAt.String()
		if asc {
			return a < b
		}
		return a > b
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// GetOrder returns a copy of the order with the given id, falling back to a
// client_order_id match, or ErrOrderNotFound.
func (s *Store) GetOrder(id string) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o, ok := s.orders[id]; ok {
		return *o, nil
	}
	for _, oid := range s.orderIDs {
		if o := s.orders[oid]; o.ClientOrderID == id {
			return *o, nil
		}
	}
	return domain.Order{}, ErrOrderNotFound
}

// csvSet splits a comma-separated list into a membership set, trimming
// whitespace. Returns nil for an empty input, meaning "no filter".
func csvSet(csv string, upper bool) map[string]bool {
	if csv == "" {
		return nil
	}
	set := make(map[string]bool)
	for _, item := range strings.Split(csv, ",") {
		item = strings.TrimSpace(item)
		if upper {
			item = strings.ToUpper(item)
		}
		if item != "" {
			set[item] = true
		}
	}
	return set
}
