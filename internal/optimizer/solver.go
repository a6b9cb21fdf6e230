// Package optimizer computes target portfolio weights from historical returns.
package optimizer

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// ErrInsufficientHistory is returned when an asset has fewer than 2 price
// observations in the common trailing window.
var ErrInsufficientHistory = errors.New("insufficient history")

// ErrOptimizationFailed is returned when the solver does not converge.
var ErrOptimizationFailed = errors.New("optimization failed")

// Solver turns a mean-return vector into target allocation weights.
// Implementations must return weights in [0,1] summing to 1, in the same
// order as the input vector.
type Solver interface {
	Solve(meanReturns []float64) ([]float64, error)
}

// ReturnSolver maximizes expected portfolio return w·μ subject to Σw = 1 and
// 0 ≤ w_i ≤ 1 (long-only, fully invested). The equality constraint is
// enforced by a quadratic penalty and the bounds by projection, starting
// from the uniform weight vector.
//
// The covariance of returns is deliberately absent from the objective:
// allocation is driven by expected return alone, not mean-variance
// optimization.
type ReturnSolver struct{}

const penaltyWeight = 1000.0

// Solve returns the optimal weight vector for the given mean returns.
func (s *ReturnSolver) Solve(mu []float64) ([]float64, error) {
	n := len(mu)
	if n == 0 {
		return nil, fmt.Errorf("%w: no assets", ErrInsufficientHistory)
	}
	if n == 1 {
		return []float64{1.0}, nil
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			w := projectToBounds(x)

			var portfolioReturn float64
			for i := 0; i < n; i++ {
				portfolioReturn += mu[i] * w[i]
			}

			// Objective: minimize -w·μ, penalize Σw != 1.
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += w[i]
			}
			return -portfolioReturn + penaltyWeight*(sum-1.0)*(sum-1.0)
		},
		Grad: func(grad, x []float64) {
			w := projectToBounds(x)
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += w[i]
			}
			for i := 0; i < n; i++ {
				grad[i] = -mu[i] + 2*penaltyWeight*(sum-1.0)
			}
		},
	}

	initial := make([]float64, n)
	for i := range initial {
		initial[i] = 1.0 / float64(n)
	}

	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.NelderMead{})
	if err != nil || !converged(result.Status) {
		// Try a gradient-based method before giving up.
		result, err = optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.BFGS{})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOptimizationFailed, err)
		}
		if !converged(result.Status) {
			return nil, fmt.Errorf("%w: status=%v", ErrOptimizationFailed, result.Status)
		}
	}

	// Project the final solution to bounds and normalize to sum 1.
	weights := projectToBounds(result.X)
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		return nil, fmt.Errorf("%w: degenerate solution", ErrOptimizationFailed)
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights, nil
}

func converged(status optimize.Status) bool {
	switch status {
	case optimize.Success, optimize.GradientThreshold, optimize.FunctionConvergence:
		return true
	}
	return false
}

func projectToBounds(x []float64) []float64 {
	w := make([]float64, len(x))
	for i, v := range x {
		w[i] = math.Min(1.0, math.Max(0.0, v))
	}
	return w
}
