// Package advisor composes the ledger, the allocation solver and the
// forecast model into portfolio-level analytics.
package advisor

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"CryptoSentinel/internal/calculator"
	"CryptoSentinel/internal/collector"
	"CryptoSentinel/internal/forecast"
	"CryptoSentinel/internal/model"
	"CryptoSentinel/internal/optimizer"
	"CryptoSentinel/internal/portfolio"
)

// RebalanceBand is the weight-delta band, exclusive on both sides, inside
// which no rebalancing suggestion is emitted.
const RebalanceBand = 0.02

// Advisor produces rebalancing suggestions, value projections and price
// outlooks for a caller-owned portfolio.
type Advisor struct {
	fetcher      collector.Fetcher
	solver       optimizer.Solver
	model        forecast.Model
	historyLimit int
	smaWindow    int
	log          zerolog.Logger
}

// New creates an Advisor. historyLimit is the number of historical
// observations requested per symbol, smaWindow the moving-average window
// used in outlooks.
func New(fetcher collector.Fetcher, solver optimizer.Solver, m forecast.Model, historyLimit, smaWindow int, log zerolog.Logger) *Advisor {
	return &Advisor{
		fetcher:      fetcher,
		solver:       solver,
		model:        m,
		historyLimit: historyLimit,
		smaWindow:    smaWindow,
		log:          log.With().Str("component", "advisor").Logger(),
	}
}

// Rebalance computes target weights from historical returns and renders
// them as suggestions against the portfolio's current weights. It always
// returns at least one message; analytical failures degrade to informational
// messages rather than errors.
func (a *Advisor) Rebalance(ledger *portfolio.Ledger) []string {
	holdings := ledger.Holdings()
	if len(holdings) == 0 {
		return []string{"Portfolio is empty. Nothing to optimize."}
	}

	returns := make([][]float64, 0, len(holdings))
	symbols := make([]string, 0, len(holdings))
	minLen := -1
	series := make([][]float64, 0, len(holdings))
	for _, h := range holdings {
		s, err := a.fetcher.HistoricalSeries(h.Symbol, a.historyLimit)
		if err != nil || len(s) < 2 {
			if err != nil {
				a.log.Warn().Err(err).Str("symbol", h.Symbol).Msg("historical data fetch failed")
			}
			return []string{fmt.Sprintf("Not enough historical data for %s.", h.Symbol)}
		}
		prices := s.Prices()
		if minLen < 0 || len(prices) < minLen {
			minLen = len(prices)
		}
		series = append(series, prices)
		symbols = append(symbols, h.Symbol)
	}

	// All series must cover the same number of observations; operate over
	// the common trailing window.
	if minLen < 2 {
		return []string{fmt.Sprintf("Not enough historical data for %s.", shortestSymbol(symbols, series))}
	}
	for _, prices := range series {
		r, err := calculator.Returns(prices[len(prices)-minLen:])
		if err != nil {
			a.log.Warn().Err(err).Msg("return computation failed")
			return []string{"Could not optimize the portfolio. Error during computation."}
		}
		returns = append(returns, r)
	}

	mean := calculator.MeanReturns(returns)

	// The covariance matrix is part of the model output even though the
	// solver's objective is return-only; log the implied portfolio variance
	// for diagnostics.
	cov := calculator.CovarianceMatrix(returns)

	weights, err := a.solver.Solve(mean)
	if err != nil {
		a.log.Warn().Err(err).Msg("allocation solver failed")
		if errors.Is(err, optimizer.ErrInsufficientHistory) {
			return []string{fmt.Sprintf("Not enough historical data for %s.", symbols[0])}
		}
		return []string{"Could not optimize the portfolio. Error during computation."}
	}

	if cov != nil {
		variance := 0.0
		for i := range weights {
			for j := range weights {
				variance += weights[i] * weights[j] * cov.At(i, j)
			}
		}
		a.log.Debug().Float64("portfolio_variance", variance).Msg("target allocation computed")
	}

	var suggestions []string
	for i, symbol := range symbols {
		current := ledger.WeightOf(symbol)
		delta := weights[i] - current
		switch {
		case delta > RebalanceBand:
			suggestions = append(suggestions, fmt.Sprintf(
				"Increase %s to %.2f%% (from %.2f%%).", symbol, weights[i]*100, current*100))
		case delta < -RebalanceBand:
			suggestions = append(suggestions, fmt.Sprintf(
				"Decrease %s to %.2f%% (from %.2f%%).", symbol, weights[i]*100, current*100))
		}
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, "Portfolio is already optimally allocated.")
	}
	return suggestions
}

// ProjectValue projects the portfolio's current total value forward by a
// flat 1% per day. The result has one entry per day, starting at day 1.
func (a *Advisor) ProjectValue(ledger *portfolio.Ledger, days int) []float64 {
	total := ledger.TotalValue()
	values := make([]float64, days)
	for i := 0; i < days; i++ {
		values[i] = total * (1 + 0.01*float64(i+1))
	}
	return values
}

// Outlook bundles a symbol's price history with its moving average and, when
// the model can be fitted, a forecast. A missing forecast is not an error.
type Outlook struct {
	Symbol   string
	History  model.PriceSeries
	SMA      []float64
	Forecast []forecast.Point
}

// Outlook fetches history for the symbol and annotates it with the SMA
// overlay and the model forecast over the given horizon.
func (a *Advisor) Outlook(symbol string, days int) (*Outlook, error) {
	series, err := a.fetcher.HistoricalSeries(symbol, a.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("outlook for %s: %w", symbol, err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("outlook for %s: no historical data", symbol)
	}

	sma, err := calculator.MovingAverage(series.Prices(), a.smaWindow)
	if err != nil {
		return nil, fmt.Errorf("outlook for %s: %w", symbol, err)
	}

	out := &Outlook{Symbol: symbol, History: series, SMA: sma}
	points, err := a.model.Forecast(series, days)
	if err != nil {
		// Render history alone when the model cannot be fitted.
		a.log.Debug().Err(err).Str("symbol", symbol).Msg("forecast unavailable")
		return out, nil
	}
	out.Forecast = points
	return out, nil
}

func shortestSymbol(symbols []string, series [][]float64) string {
	shortest := 0
	for i := range series {
		if len(series[i]) < len(series[shortest]) {
			shortest = i
		}
	}
	return symbols[shortest]
}
