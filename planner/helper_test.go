package planner

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/highway-planner/entity"
	"github.com/tsinghua-fib-lab/highway-planner/roadway"
)

// newStraightRoadway 沿x轴正方向的直线道路，d为正时y为负
func newStraightRoadway(t *testing.T) *roadway.Roadway {
	wps := make([]roadway.Waypoint, 200)
	for i := range wps {
		s := float64(i) * 30
		wps[i] = roadway.Waypoint{S: s, X: s, Y: 0, DX: 0, DY: -1}
	}
	r, err := roadway.New(wps, 0)
	require.NoError(t, err)
	return r
}

func newPlanner(t *testing.T, mode RegulatorMode) *Planner {
	return New(newStraightRoadway(t), mode)
}

// requirePrefix 检查path以prefix开头，空prefix与nil视为相同
func requirePrefix(t *testing.T, prefix, path []entity.Point, msgAndArgs ...any) {
	t.Helper()
	require.GreaterOrEqual(t, len(path), len(prefix), msgAndArgs...)
	for i, p := range prefix {
		require.Equal(t, p, path[i], msgAndArgs...)
	}
}
