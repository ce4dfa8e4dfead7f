package clock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/highway-planner/clock"
)

func TestTick(t *testing.T) {
	c := clock.New(0.02)
	for i := 0; i < 50; i++ {
		c.Tick(i % 3)
	}
	assert.Equal(t, int32(50), c.InternalStep)
	// 0+1+2 循环16次后余 0+1
	assert.InDelta(t, 49*0.02, c.T, 1e-9)

	c.Init()
	assert.Equal(t, int32(0), c.InternalStep)
	assert.Zero(t, c.T)
}

func TestFormat(t *testing.T) {
	c := clock.New(0.02)
	c.T = 3723.5
	h, m, s := c.GetHourMinuteSecond()
	assert.Equal(t, 1, h)
	assert.Equal(t, 2, m)
	assert.InDelta(t, 3.5, s, 1e-9)
	assert.Equal(t, "01:02:03.500", c.String())
}
