package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturnSolver_ConcentratesOnHighestReturn(t *testing.T) {
	s := &ReturnSolver{}
	weights, err := s.Solve([]float64{0.0, 0.1, 0.0})
	require.NoError(t, err)
	require.Len(t, weights, 3)

	sum := 0.0
	for _, w := range weights {
		assert.GreaterOrEqual(t, w, 0.0)
		assert.LessOrEqual(t, w, 1.0)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-6, "weights must be fully invested")
	assert.Greater(t, weights[1], weights[0])
	assert.Greater(t, weights[1], weights[2])
	assert.Greater(t, weights[1], 0.5, "the dominant asset should take most of the allocation")
}

func TestReturnSolver_SingleAsset(t *testing.T) {
	s := &ReturnSolver{}
	weights, err := s.Solve([]float64{0.05})
	require.NoError(t, err)
	require.Equal(t, []float64{1.0}, weights)
}

func TestReturnSolver_NoAssets(t *testing.T) {
	s := &ReturnSolver{}
	_, err := s.Solve(nil)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestReturnSolver_EqualReturnsStayDiversified(t *testing.T) {
	s := &ReturnSolver{}
	weights, err := s.Solve([]float64{0.02, 0.02})
	require.NoError(t, err)

	sum := weights[0] + weights[1]
	assert.InDelta(t, 1.0, sum, 1e-6)
	// With identical returns the uniform start is already optimal.
	assert.InDelta(t, 0.5, weights[0], 0.1)
}
