package roadway_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/highway-planner/roadway"
)

// 沿x轴的直线道路，路点间隔30米
func straight(t *testing.T, n int) *roadway.Roadway {
	wps := make([]roadway.Waypoint, n)
	for i := range wps {
		s := float64(i) * 30
		wps[i] = roadway.Waypoint{S: s, X: s, Y: 0, DX: 0, DY: -1}
	}
	r, err := roadway.New(wps, 0)
	require.NoError(t, err)
	return r
}

// 半径为radius的逆时针圆形闭环道路
func ring(t *testing.T, n int, radius float64) (*roadway.Roadway, []roadway.Waypoint) {
	chord := 2 * radius * math.Sin(math.Pi/float64(n))
	wps := make([]roadway.Waypoint, n)
	for i := range wps {
		theta := 2 * math.Pi * float64(i) / float64(n)
		wps[i] = roadway.Waypoint{
			S: float64(i) * chord,
			X: radius * math.Cos(theta),
			Y: radius * math.Sin(theta),
		}
	}
	r, err := roadway.New(wps, float64(n)*chord)
	require.NoError(t, err)
	return r, wps
}

func TestNewValidation(t *testing.T) {
	_, err := roadway.New([]roadway.Waypoint{{S: 0}}, 0)
	assert.ErrorIs(t, err, roadway.ErrTooFewWaypoints)

	_, err = roadway.New([]roadway.Waypoint{{S: 0}, {S: 10}, {S: 10, X: 1}}, 0)
	assert.Error(t, err)

	_, err = roadway.New([]roadway.Waypoint{{S: 0}, {S: 10, X: 10}}, 5)
	assert.Error(t, err)
}

func TestToCartesianStraight(t *testing.T) {
	r := straight(t, 10)

	p := r.ToCartesian(45, 6)
	assert.InDelta(t, 45, p.X, 1e-9)
	assert.InDelta(t, -6, p.Y, 1e-9)

	// 非闭环道路首尾延长
	p = r.ToCartesian(-10, 0)
	assert.InDelta(t, -10, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)
	p = r.ToCartesian(300, 2)
	assert.InDelta(t, 300, p.X, 1e-9)
	assert.InDelta(t, -2, p.Y, 1e-9)
	assert.Equal(t, 0.0, r.MaxS())
}

func TestToFrenetStraight(t *testing.T) {
	r := straight(t, 10)
	for _, c := range []struct{ s, d float64 }{
		{45, 6}, {1, 2}, {59.5, -3}, {200, 10},
	} {
		p := r.ToCartesian(c.s, c.d)
		s, d := r.ToFrenet(p.X, p.Y, 0)
		assert.InDelta(t, c.s, s, 1e-9)
		assert.InDelta(t, c.d, d, 1e-9)
	}
}

func TestRingWrap(t *testing.T) {
	r, wps := ring(t, 36, 100)

	for i, w := range wps {
		p := r.ToCartesian(w.S, 0)
		assert.InDelta(t, w.X, p.X, 1e-6, "waypoint %d", i)
		assert.InDelta(t, w.Y, p.Y, 1e-6, "waypoint %d", i)
	}

	a := r.ToCartesian(10, 4)
	b := r.ToCartesian(r.MaxS()+10, 4)
	assert.InDelta(t, a.X, b.X, 1e-6)
	assert.InDelta(t, a.Y, b.Y, 1e-6)

	// 最后一个路点与第一个路点之间的闭合路段
	last := wps[len(wps)-1]
	mid := (last.S + r.MaxS()) / 2
	p := r.ToCartesian(mid, 0)
	assert.InDelta(t, (last.X+wps[0].X)/2, p.X, 1e-6)
	assert.InDelta(t, (last.Y+wps[0].Y)/2, p.Y, 1e-6)
}

func TestRingToFrenetRoundTrip(t *testing.T) {
	r, _ := ring(t, 72, 300)
	for _, s := range []float64{5, 100, 700, r.MaxS() - 3} {
		for _, d := range []float64{2, 6, 10} {
			p := r.ToCartesian(s, d)
			// 逆时针行驶时航向为极角加90度
			yaw := math.Atan2(p.Y, p.X) + math.Pi/2
			gotS, gotD := r.ToFrenet(p.X, p.Y, yaw)
			assert.InDelta(t, s, gotS, 1e-6, "s=%v d=%v", s, d)
			assert.InDelta(t, d, gotD, 1e-6, "s=%v d=%v", s, d)
		}
	}
}
