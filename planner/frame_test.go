package planner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/highway-planner/entity"
	"github.com/tsinghua-fib-lab/highway-planner/utils/randengine"
)

func TestFrameToLocal(t *testing.T) {
	f := Frame{Origin: entity.Point{X: 1, Y: 1}, Yaw: math.Pi / 2}
	p := f.ToLocal(entity.Point{X: 1, Y: 3})
	assert.InDelta(t, 2, p.X, 1e-12)
	assert.InDelta(t, 0, p.Y, 1e-12)

	g := f.ToGlobal(entity.Point{X: 0, Y: 1})
	assert.InDelta(t, 0, g.X, 1e-12)
	assert.InDelta(t, 1, g.Y, 1e-12)
}

func TestFrameRoundTrip(t *testing.T) {
	e := randengine.New(7)
	for i := 0; i < 1000; i++ {
		f := Frame{
			Origin: entity.Point{X: e.Uniform(-5000, 5000), Y: e.Uniform(-5000, 5000)},
			Yaw:    e.Uniform(-2*math.Pi, 2*math.Pi),
		}
		p := entity.Point{X: e.Uniform(-5000, 5000), Y: e.Uniform(-5000, 5000)}
		back := f.ToGlobal(f.ToLocal(p))
		assert.InDelta(t, p.X, back.X, 1e-8)
		assert.InDelta(t, p.Y, back.Y, 1e-8)
	}
}

func TestFrameToLocalAll(t *testing.T) {
	f := Frame{Origin: entity.Point{X: 10, Y: 0}}
	ps := f.ToLocalAll([]entity.Point{{X: 9, Y: 0}, {X: 10, Y: 0}, {X: 40, Y: -6}})
	assert.Equal(t, []entity.Point{{X: -1, Y: 0}, {X: 0, Y: 0}, {X: 30, Y: -6}}, ps)
}
