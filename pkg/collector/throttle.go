package collector

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Task 限速队列中的单个任务
type Task struct {
	Name string
	Run  func() error
}

// ThrottledQueue 单工作者限速任务队列
// 同一时刻只有一个请求在途，相邻任务开始时间间隔不小于Interval
// 单个任务失败只记录日志，不中断队列
type ThrottledQueue struct {
	Interval time.Duration

	now   func() time.Time
	sleep func(time.Duration)
	last  time.Time
}

// NewThrottledQueue 创建限速任务队列
func NewThrottledQueue(interval time.Duration) *ThrottledQueue {
	return &ThrottledQueue{
		Interval: interval,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Do 等待限速窗口后执行单个任务
func (q *ThrottledQueue) Do(task Task) error {
	if !q.last.IsZero() {
		elapsed := q.now().Sub(q.last)
		if elapsed < q.Interval {
			q.sleep(q.Interval - elapsed)
		}
	}
	q.last = q.now()

	return task.Run()
}

// RunAll 顺序执行全部任务，返回失败任务数
func (q *ThrottledQueue) RunAll(tasks []Task) int {
	failed := 0
	for _, task := range tasks {
		if err := q.Do(task); err != nil {
			log.Warnf("任务 %s 执行失败: %v", task.Name, err)
			failed++
		}
	}
	return failed
}
