package collector

import (
	"errors"

	"CryptoSentinel/internal/model"
)

// ErrPriceUnavailable is returned when the external market-data capability
// cannot produce a current price for a symbol. Callers treat it as a soft
// failure: keep the last known price and retry on the next cycle.
var ErrPriceUnavailable = errors.New("price unavailable")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	CurrentPrice(symbol string) (float64, error)
	HistoricalSeries(symbol string, limit int) (model.PriceSeries, error)
	ListSymbols() ([]string, error)
	Name() string
}
