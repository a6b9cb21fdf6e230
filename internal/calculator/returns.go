package calculator

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Returns computes simple per-period returns (p_t - p_{t-1}) / p_{t-1}.
// The result is one element shorter than the input.
func Returns(prices []float64) ([]float64, error) {
	if len(prices) < 2 {
		return nil, errors.New("need at least 2 prices to compute returns")
	}
	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			return nil, errors.New("zero price in series")
		}
		returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
	}
	return returns, nil
}

// MeanReturns computes the mean return of each asset's return series.
// All series must have the same length.
func MeanReturns(returns [][]float64) []float64 {
	means := make([]float64, len(returns))
	for i, r := range returns {
		means[i] = stat.Mean(r, nil)
	}
	return means
}

// CovarianceMatrix computes the covariance matrix of the given return
// series, one row per asset. All series must have the same length.
func CovarianceMatrix(returns [][]float64) *mat.SymDense {
	n := len(returns)
	if n == 0 {
		return nil
	}
	obs := len(returns[0])

	// gonum expects observations in rows, assets in columns.
	data := mat.NewDense(obs, n, nil)
	for j, series := range returns {
		for i, v := range series {
			data.Set(i, j, v)
		}
	}

	cov := mat.NewSymDense(n, nil)
	stat.CovarianceMatrix(cov, data, nil)
	return cov
}
