package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"OptionFlow/pkg/collector"
	"OptionFlow/pkg/database"
	"OptionFlow/pkg/pipeline"
)

// Scheduler 任务调度器
// 每个交易日收盘后采集当日行情并重建分析表
type Scheduler struct {
	cron      *cron.Cron
	adapter   *collector.OptionsAdapter
	queue     *collector.ThrottledQueue
	db        *database.Postgres
	runner    *pipeline.Runner
	publisher collector.EventPublisher // 可为nil，此时不发布采集事件
	symbol    string
}

// NewScheduler 创建任务调度器
func NewScheduler(adapter *collector.OptionsAdapter, queue *collector.ThrottledQueue, db *database.Postgres, runner *pipeline.Runner, publisher collector.EventPublisher, symbol string) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		adapter:   adapter,
		queue:     queue,
		db:        db,
		runner:    runner,
		publisher: publisher,
		symbol:    symbol,
	}
}

// Start 按cron表达式启动每日任务
func (s *Scheduler) Start(cronSpec string) error {
	_, err := s.cron.AddFunc(cronSpec, s.runDaily)
	if err != nil {
		return fmt.Errorf("注册定时任务失败: %w", err)
	}

	s.cron.Start()
	log.Printf("调度器已启动: %s", cronSpec)
	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// runDaily 采集当日行情并重建分析表
// 与回填路径走同一采集入口，采集事件一并发布
// 任一阶段失败只记录日志，不影响后续调度
func (s *Scheduler) runDaily() {
	today := time.Now().UTC()
	if today.Weekday() == time.Saturday || today.Weekday() == time.Sunday {
		return
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	log.Printf("开始每日采集: %s", day.Format("2006-01-02"))

	err := s.queue.Do(collector.Task{
		Name: day.Format("2006-01-02"),
		Run: func() error {
			_, err := collector.IngestDay(s.adapter, s.db.Quote(), s.publisher, s.symbol, day)
			return err
		},
	})
	if err != nil {
		log.Warnf("每日采集失败: %v", err)
		return
	}

	if _, err := s.runner.Run(); err != nil {
		log.Warnf("每日重建失败: %v", err)
	}
}
