package portfolio

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"CryptoSentinel/internal/model"
)

// ErrInvalidInput is returned for non-positive amounts or negative prices.
// Ledger mutations are rejected before any state change.
var ErrInvalidInput = errors.New("invalid input")

// PriceLookup is the current-price capability consumed by RefreshPrices.
type PriceLookup interface {
	CurrentPrice(symbol string) (float64, error)
}

// Ledger holds the per-symbol positions of a single portfolio. Each Ledger
// is exclusively owned by its caller; there is no shared global instance.
type Ledger struct {
	mu       sync.Mutex
	holdings map[string]*model.Holding
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{holdings: make(map[string]*model.Holding)}
}

// AddAsset records a purchase. If the symbol is already held, the recorded
// price becomes the volume-weighted average of the existing lot and the new
// one. Symbols are case-normalized.
func (l *Ledger) AddAsset(symbol string, amount, price float64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %v", ErrInvalidInput, amount)
	}
	if price < 0 {
		return fmt.Errorf("%w: price must be non-negative, got %v", ErrInvalidInput, price)
	}
	symbol = normalize(symbol)

	l.mu.Lock()
	defer l.mu.Unlock()

	if h, ok := l.holdings[symbol]; ok {
		total := h.Amount + amount
		h.Price = (h.Amount*h.Price + amount*price) / total
		h.Amount = total
		return nil
	}
	l.holdings[symbol] = &model.Holding{Symbol: symbol, Amount: amount, Price: price}
	return nil
}

// RemoveAsset decrements a holding by the given amount, keeping its recorded
// price. Removing the full amount or more deletes the holding entirely; a
// holding is never kept at zero amount. An absent symbol is a no-op.
func (l *Ledger) RemoveAsset(symbol string, amount float64) {
	symbol = normalize(symbol)

	l.mu.Lock()
	defer l.mu.Unlock()

	h, ok := l.holdings[symbol]
	if !ok {
		return
	}
	if amount >= h.Amount {
		delete(l.holdings, symbol)
		return
	}
	h.Amount -= amount
}

// RemoveAll deletes a holding entirely. An absent symbol is a no-op.
func (l *Ledger) RemoveAll(symbol string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.holdings, normalize(symbol))
}

// RefreshPrices replaces each holding's recorded price with the current
// market price. A failed lookup leaves that holding's price unchanged and
// does not affect the others; the error for the last failed symbol is
// returned so callers can surface the partial refresh.
func (l *Ledger) RefreshPrices(lookup PriceLookup) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	for _, h := range l.holdings {
		price, err := lookup.CurrentPrice(h.Symbol)
		if err != nil {
			lastErr = fmt.Errorf("refresh %s: %w", h.Symbol, err)
			continue
		}
		h.Price = price
	}
	return lastErr
}

// Holdings returns a snapshot of all holdings, sorted by symbol.
func (l *Ledger) Holdings() []model.Holding {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.Holding, 0, len(l.holdings))
	for _, h := range l.holdings {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// TotalValue returns the sum of amount*price over all holdings. It is
// recomputed from the current holdings on every call, never cached.
func (l *Ledger) TotalValue() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalLocked()
}

func (l *Ledger) totalLocked() float64 {
	total := 0.0
	for _, h := range l.holdings {
		total += h.Value()
	}
	return total
}

// ValueOf returns the value of a single holding, or 0 if absent.
func (l *Ledger) ValueOf(symbol string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if h, ok := l.holdings[normalize(symbol)]; ok {
		return h.Value()
	}
	return 0
}

// WeightOf returns the holding's share of total portfolio value in [0,1].
// Defined as 0 when the total value is 0.
func (l *Ledger) WeightOf(symbol string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := l.totalLocked()
	if total == 0 {
		return 0
	}
	h, ok := l.holdings[normalize(symbol)]
	if !ok {
		return 0
	}
	return h.Value() / total
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
