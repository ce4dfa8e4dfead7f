package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/highway-planner/entity"
)

func TestPlanScenarioA(t *testing.T) {
	p := newPlanner(t, RegulatorRateLimited)
	state := NewControlState(1, 0)
	out := p.Plan(Input{}, state)

	require.Len(t, out.Path, PathPoints)
	assert.False(t, out.TooClose)
	assert.InDelta(t, SpeedStep, state.RefV, 1e-12)
	assert.Equal(t, state.RefV, out.RefV)

	require.Len(t, out.Anchors, 5)
	assert.InDelta(t, -1, out.Anchors[0].X, 1e-12)
	assert.InDelta(t, 0, out.Anchors[0].Y, 1e-12)
	assert.Equal(t, entity.Point{}, out.Anchors[1])

	assert.Greater(t, out.Path[0].X, 0.0)
	for i := 1; i < len(out.Path); i++ {
		assert.Greater(t, out.Path[i].X, out.Path[i-1].X)
		// 每周期行驶 0.02 × 0.224 / 2.24 = 0.002 米
		assert.InDelta(t, 0.002, out.Path[i].Sub(out.Path[i-1]).Len(), 1e-4)
	}
	// 向车道中心（y=-6）偏移
	last := out.Path[len(out.Path)-1]
	assert.Less(t, last.Y, 0.0)
	assert.Greater(t, last.Y, -6.0)
}

func TestPlanScenarioB(t *testing.T) {
	p := newPlanner(t, RegulatorRateLimited)
	prev := make([]entity.Point, 48)
	for i := range prev {
		prev[i] = entity.Point{X: 1 + 0.4*float64(i), Y: -6}
	}
	state := NewControlState(1, 20)
	in := Input{
		Vehicle:      entity.VehicleState{X: 0, Y: -6, S: 0, D: 6},
		PreviousPath: prev,
		EndPathS:     prev[47].X,
		EndPathD:     6,
	}
	out := p.Plan(in, state)

	require.Len(t, out.Path, PathPoints)
	assert.Equal(t, prev, out.Path[:48])
	step := 30 * CycleDuration * state.RefV / 2.24 / 30
	assert.InDelta(t, prev[47].X+step, out.Path[48].X, 1e-9)
	assert.InDelta(t, prev[47].X+2*step, out.Path[49].X, 1e-9)
	assert.InDelta(t, -6, out.Path[48].Y, 1e-9)
	assert.InDelta(t, -6, out.Path[49].Y, 1e-9)
}

func TestPlanScenarioC(t *testing.T) {
	p := newPlanner(t, RegulatorRateLimited)
	state := NewControlState(1, 30)
	in := Input{
		Vehicle: entity.VehicleState{X: 50, Y: -6, S: 50, D: 6},
		Traffic: []entity.TrafficObservation{{ID: 3, S: 60, D: 6.5}},
	}
	out := p.Plan(in, state)
	assert.True(t, out.TooClose)
	assert.InDelta(t, 30-SpeedStep, state.RefV, 1e-12)
	assert.Len(t, out.Path, PathPoints)
}

func TestPlanFullPreviousPath(t *testing.T) {
	p := newPlanner(t, RegulatorRateLimited)
	prev := make([]entity.Point, 60)
	for i := range prev {
		prev[i] = entity.Point{X: float64(i), Y: -6}
	}
	out := p.Plan(Input{PreviousPath: prev[:50], EndPathS: 49}, NewControlState(1, 10))
	assert.Equal(t, prev[:50], out.Path)

	out = p.Plan(Input{PreviousPath: prev, EndPathS: 59}, NewControlState(1, 10))
	assert.Equal(t, prev[:50], out.Path)
}

func TestPlanDegenerateAnchors(t *testing.T) {
	p := newPlanner(t, RegulatorRateLimited)
	prev := []entity.Point{{X: 5, Y: -6}, {X: 5, Y: -6}}
	// 航向与道路方向相反，前向锚点全部落在局部坐标系后方
	in := Input{
		Vehicle:      entity.VehicleState{X: 5, Y: -6, S: 5, D: 6, Yaw: 3.141592653589793},
		PreviousPath: prev,
		EndPathS:     5,
	}
	out := p.Plan(in, NewControlState(1, 10))
	require.Len(t, out.Path, PathPoints)
	assert.Equal(t, prev, out.Path[:2])
	assert.Less(t, out.Path[2].X, 5.0)
	assert.InDelta(t, -6, out.Path[49].Y, 1e-9)
}

func TestPlanContinuityOverCycles(t *testing.T) {
	p := newPlanner(t, RegulatorRateLimited)
	state := NewControlState(1, 0)
	in := Input{Vehicle: entity.VehicleState{Y: -2, D: 2}}
	for cycle := 0; cycle < 300; cycle++ {
		out := p.Plan(in, state)
		require.Len(t, out.Path, PathPoints, "cycle %d", cycle)
		requirePrefix(t, in.PreviousPath, out.Path, "cycle %d", cycle)
		assert.LessOrEqual(t, state.RefV, CruiseSpeed)

		// 执行方每周期消费3个点
		consumed := out.Path[:3]
		rest := append([]entity.Point(nil), out.Path[3:]...)
		car := consumed[2]
		in = Input{
			Vehicle:      entity.VehicleState{X: car.X, Y: car.Y, S: car.X, D: -car.Y},
			PreviousPath: rest,
			EndPathS:     rest[len(rest)-1].X,
			EndPathD:     -rest[len(rest)-1].Y,
		}
	}
	// 从车道0平滑并入车道1中心
	assert.InDelta(t, -6, in.PreviousPath[len(in.PreviousPath)-1].Y, 0.5)
	assert.Equal(t, CruiseSpeed, state.RefV)
}

func TestPlanStartAtCruise(t *testing.T) {
	p := newPlanner(t, RegulatorRateLimited)
	state := NewControlState(1, CruiseSpeed)
	out := p.Plan(Input{Vehicle: entity.VehicleState{Y: -6, D: 6}}, state)

	assert.Equal(t, CruiseSpeed, state.RefV)
	require.Len(t, out.Path, PathPoints)
	for i := 1; i < len(out.Path); i++ {
		assert.InDelta(t, CycleDuration*CruiseSpeed/2.24, out.Path[i].Sub(out.Path[i-1]).Len(), 1e-9)
	}
}
