package collector

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock 虚拟时钟，sleep立即推进时间，测试不依赖真实等待
type fakeClock struct {
	current time.Time
	slept   []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2023, 1, 3, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	return c.current
}

func (c *fakeClock) sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.current = c.current.Add(d)
}

func newTestQueue(interval time.Duration, clock *fakeClock) *ThrottledQueue {
	q := NewThrottledQueue(interval)
	q.now = clock.now
	q.sleep = clock.sleep
	return q
}

func TestThrottledQueueEnforcesInterval(t *testing.T) {
	clock := newFakeClock()
	q := newTestQueue(1100*time.Millisecond, clock)

	var starts []time.Time
	task := Task{Name: "t", Run: func() error {
		starts = append(starts, clock.now())
		return nil
	}}

	require.NoError(t, q.Do(task))
	require.NoError(t, q.Do(task))
	require.NoError(t, q.Do(task))

	// 首个任务不等待，后续任务间隔不小于1.1秒
	require.Len(t, starts, 3)
	for i := 1; i < len(starts); i++ {
		gap := starts[i].Sub(starts[i-1])
		assert.GreaterOrEqual(t, gap, 1100*time.Millisecond)
	}
}

func TestThrottledQueueSkipsWaitWhenElapsed(t *testing.T) {
	clock := newFakeClock()
	q := newTestQueue(1100*time.Millisecond, clock)

	require.NoError(t, q.Do(Task{Name: "a", Run: func() error { return nil }}))

	// 任务本身耗时超过限速窗口，无需再等待
	clock.current = clock.current.Add(2 * time.Second)
	require.NoError(t, q.Do(Task{Name: "b", Run: func() error { return nil }}))

	assert.Empty(t, clock.slept)
}

func TestRunAllIsolatesFailures(t *testing.T) {
	clock := newFakeClock()
	q := newTestQueue(time.Millisecond, clock)

	executed := 0
	tasks := []Task{
		{Name: "ok1", Run: func() error { executed++; return nil }},
		{Name: "boom", Run: func() error { executed++; return errors.New("上游超时") }},
		{Name: "ok2", Run: func() error { executed++; return nil }},
	}

	failed := q.RunAll(tasks)

	// 单个失败不中断后续任务
	assert.Equal(t, 1, failed)
	assert.Equal(t, 3, executed)
}
