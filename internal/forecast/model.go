// Package forecast produces near-term price forecasts from historical series.
package forecast

import (
	"errors"
	"time"

	"CryptoSentinel/internal/model"
)

// ErrUnavailable is returned when the model cannot be fitted to the series
// (too few points, numerical failure). Callers treat it as an expected
// outcome and render price history alone.
var ErrUnavailable = errors.New("no forecast available")

// Point is a single forecast step: a point estimate with its 95% confidence
// interval, timestamped past the end of the observed series.
type Point struct {
	Time  time.Time
	Value float64
	Lower float64
	Upper float64
}

// Model fits a price series and forecasts the given number of steps ahead.
type Model interface {
	Forecast(series model.PriceSeries, days int) ([]Point, error)
}
