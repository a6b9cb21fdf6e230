package collector

import (
	"time"

	"CryptoSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Prices  map[string]float64
	Series  map[string]model.PriceSeries
	Symbols []string

	// Unavailable marks symbols whose current price lookup fails.
	Unavailable map[string]bool
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) CurrentPrice(symbol string) (float64, error) {
	if m.Unavailable[symbol] {
		return 0, ErrPriceUnavailable
	}
	if price, ok := m.Prices[symbol]; ok {
		return price, nil
	}
	return 0, ErrPriceUnavailable
}

func (m *MockFetcher) HistoricalSeries(symbol string, limit int) (model.PriceSeries, error) {
	if series, ok := m.Series[symbol]; ok {
		if len(series) > limit+1 {
			series = series[len(series)-limit-1:]
		}
		return series, nil
	}
	return nil, nil
}

func (m *MockFetcher) ListSymbols() ([]string, error) {
	return m.Symbols, nil
}

// GenerateSeries builds a daily price series ending today, walking linearly
// from base toward base*(1+drift).
func GenerateSeries(base, drift float64, count int) model.PriceSeries {
	series := make(model.PriceSeries, count)
	for i := 0; i < count; i++ {
		progress := float64(i) / float64(count)
		series[i] = model.PricePoint{
			Time:  time.Now().AddDate(0, 0, -(count - i)).Truncate(24 * time.Hour),
			Price: base * (1 + drift*progress),
		}
	}
	return series
}
