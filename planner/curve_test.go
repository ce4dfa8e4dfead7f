package planner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/highway-planner/entity"
)

var laneKeepAnchors = []entity.Point{
	{X: -1, Y: 0}, {X: 0, Y: 0}, {X: 30, Y: -6}, {X: 60, Y: -6}, {X: 90, Y: -6},
}

func TestFitCurveInterpolates(t *testing.T) {
	c, err := fitCurve(laneKeepAnchors)
	require.NoError(t, err)
	for _, a := range laneKeepAnchors {
		assert.InDelta(t, a.Y, c.At(a.X), 1e-6, "x=%v", a.X)
	}
}

func TestFitCurveSmooth(t *testing.T) {
	c, err := fitCurve(laneKeepAnchors)
	require.NoError(t, err)
	const h = 1e-5
	for _, x := range []float64{0, 30, 60} {
		left := (c.At(x) - c.At(x-h)) / h
		right := (c.At(x+h) - c.At(x)) / h
		assert.InDelta(t, left, right, 1e-3, "x=%v", x)
	}
}

func TestFitCurveExtrapolation(t *testing.T) {
	c, err := fitCurve(laneKeepAnchors)
	require.NoError(t, err)
	for _, x := range []float64{-10, 90.5, 120, 1000} {
		y := c.At(x)
		assert.False(t, math.IsNaN(y) || math.IsInf(y, 0), "x=%v", x)
	}
	// 端点附近外推与样条连续
	assert.InDelta(t, c.At(90), c.At(90+1e-9), 1e-6)
	assert.InDelta(t, c.At(-1), c.At(-1-1e-9), 1e-6)
}

func TestFitCurveDropsNonIncreasing(t *testing.T) {
	c, err := fitCurve([]entity.Point{{X: 0, Y: 0}, {X: 0, Y: 5}, {X: 10, Y: 1}, {X: 5, Y: 9}, {X: 20, Y: 2}})
	require.NoError(t, err)
	assert.InDelta(t, 0, c.At(0), 1e-6)
	assert.InDelta(t, 1, c.At(10), 1e-6)
	assert.InDelta(t, 2, c.At(20), 1e-6)
}

func TestFitCurveTwoAnchors(t *testing.T) {
	c, err := fitCurve([]entity.Point{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: -3, Y: 1}})
	require.NoError(t, err)
	assert.InDelta(t, 5, c.At(5), 1e-12)
	assert.InDelta(t, 20, c.At(20), 1e-12)
}

func TestFitCurveDegenerate(t *testing.T) {
	_, err := fitCurve([]entity.Point{{X: 3, Y: 0}, {X: 3, Y: 1}, {X: 1, Y: 2}})
	assert.ErrorIs(t, err, ErrDegenerateAnchors)
	_, err = fitCurve(nil)
	assert.ErrorIs(t, err, ErrDegenerateAnchors)
}
