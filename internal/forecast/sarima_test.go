package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoSentinel/internal/model"
)

// weeklySeries builds a daily series with a weekly cycle and mild trend.
func weeklySeries(days int) model.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make(model.PriceSeries, days)
	for i := 0; i < days; i++ {
		seasonal := 5 * math.Sin(2*math.Pi*float64(i%7)/7)
		series[i] = model.PricePoint{
			Time:  start.AddDate(0, 0, i),
			Price: 100 + 0.3*float64(i) + seasonal,
		}
	}
	return series
}

func TestSARIMA_ForecastShape(t *testing.T) {
	series := weeklySeries(42)
	points, err := SARIMA{}.Forecast(series, 7)
	require.NoError(t, err)
	require.Len(t, points, 7)

	last := series[len(series)-1].Time
	for i, p := range points {
		assert.False(t, math.IsNaN(p.Value), "point %d", i)
		assert.LessOrEqual(t, p.Lower, p.Value, "point %d", i)
		assert.GreaterOrEqual(t, p.Upper, p.Value, "point %d", i)
		assert.Equal(t, last.AddDate(0, 0, i+1), p.Time, "point %d", i)
	}
}

func TestSARIMA_IntervalsWidenWithHorizon(t *testing.T) {
	points, err := SARIMA{}.Forecast(weeklySeries(42), 7)
	require.NoError(t, err)

	first := points[0].Upper - points[0].Lower
	lastWidth := points[6].Upper - points[6].Lower
	assert.Greater(t, first, 0.0)
	assert.GreaterOrEqual(t, lastWidth, first)
}

func TestSARIMA_ForecastTracksLevel(t *testing.T) {
	series := weeklySeries(56)
	points, err := SARIMA{}.Forecast(series, 3)
	require.NoError(t, err)

	last := series[len(series)-1].Price
	for _, p := range points {
		assert.InDelta(t, last, p.Value, 50, "forecast should stay near the recent level")
	}
}

func TestSARIMA_TooShortSeries(t *testing.T) {
	_, err := SARIMA{}.Forecast(weeklySeries(10), 7)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSARIMA_NonPositiveHorizon(t *testing.T) {
	_, err := SARIMA{}.Forecast(weeklySeries(42), 0)
	assert.ErrorIs(t, err, ErrUnavailable)
}
