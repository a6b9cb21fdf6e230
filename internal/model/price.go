package model

import "time"

// PricePoint is a single observation in a historical price series.
type PricePoint struct {
	Time  time.Time
	Price float64
}

// PriceSeries is a sequence of price observations, ascending by time,
// as returned by the historical-data capability for a symbol.
type PriceSeries []PricePoint

// Prices returns the raw price values in series order.
func (s PriceSeries) Prices() []float64 {
	prices := make([]float64, len(s))
	for i, p := range s {
		prices[i] = p.Price
	}
	return prices
}

// Interval returns the sampling interval between consecutive observations.
// Returns zero when the series has fewer than two points.
func (s PriceSeries) Interval() time.Duration {
	if len(s) < 2 {
		return 0
	}
	return s[1].Time.Sub(s[0].Time)
}
