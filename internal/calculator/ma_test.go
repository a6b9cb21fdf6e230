package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverage_WindowThree(t *testing.T) {
	prices := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	out, err := MovingAverage(prices, 3)
	require.NoError(t, err)
	require.Len(t, out, len(prices))

	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 1.0, out[2], 1e-9)
	assert.InDelta(t, 8.0, out[9], 1e-9)
}

func TestMovingAverage_InputShorterThanWindow(t *testing.T) {
	out, err := MovingAverage([]float64{1, 2}, 5)
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, v := range out {
		assert.True(t, math.IsNaN(v))
	}
}

func TestMovingAverage_EmptyInput(t *testing.T) {
	out, err := MovingAverage(nil, 3)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMovingAverage_InvalidWindow(t *testing.T) {
	_, err := MovingAverage([]float64{1, 2, 3}, 0)
	assert.Error(t, err)
}
