package randengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/highway-planner/utils/randengine"
)

func TestReproducible(t *testing.T) {
	a, b := randengine.New(42), randengine.New(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestUniformRange(t *testing.T) {
	e := randengine.New(1)
	for i := 0; i < 1000; i++ {
		v := e.Uniform(-3, 5)
		assert.GreaterOrEqual(t, v, -3.0)
		assert.Less(t, v, 5.0)
	}
}

func TestDiscreteDistribution(t *testing.T) {
	e := randengine.New(1)
	counts := make([]int, 3)
	for i := 0; i < 3000; i++ {
		counts[e.DiscreteDistribution([]float64{0, 1, 3})]++
	}
	assert.Equal(t, 0, counts[0])
	assert.Greater(t, counts[2], counts[1])
}
