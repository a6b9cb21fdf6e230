package calculator

import (
	"errors"
	"math"
)

// MovingAverage computes the simple moving average of prices over the given
// window. The result has the same length as the input: the first window-1
// entries are NaN (insufficient history), and entry i holds the arithmetic
// mean of prices[i-window+1 .. i]. If the input is shorter than the window,
// every entry is NaN.
func MovingAverage(prices []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}

	out := make([]float64, len(prices))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(prices) < window {
		return out, nil
	}

	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= window {
			sum -= prices[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out, nil
}
