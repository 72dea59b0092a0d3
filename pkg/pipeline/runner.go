package pipeline

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"OptionFlow/pkg/database"
	"OptionFlow/pkg/messaging"
	"OptionFlow/pkg/model"
)

// Runner 流水线执行器
// 读取两份不可变快照（原始行情、波动率），整表替换分析存储，并记录运行历史
type Runner struct {
	db   *database.Postgres
	nats *messaging.NATSClient // 可为nil，此时不发布事件
}

// NewRunner 创建流水线执行器
func NewRunner(db *database.Postgres, nats *messaging.NATSClient) *Runner {
	return &Runner{
		db:   db,
		nats: nats,
	}
}

// Run 执行一次完整重建
// 任一输入为空时不写出任何结果，运行记录标记为失败
func (r *Runner) Run() (*model.PipelineRun, error) {
	run := &model.PipelineRun{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Status:    model.RunStatusRunning,
	}
	if err := r.db.Run().Create(run); err != nil {
		return nil, err
	}

	log.Printf("流水线运行开始: run=%s", run.RunID)

	quotes, err := r.db.Quote().GetAll()
	if err != nil {
		return r.fail(run, err)
	}
	vols, err := r.db.Volatility().GetAll()
	if err != nil {
		return r.fail(run, err)
	}
	run.RawRows = len(quotes)
	run.VolRows = len(vols)

	rows, err := Transform(quotes, vols)
	if err != nil {
		return r.fail(run, err)
	}

	if err := r.db.Analytics().ReplaceAll(rows); err != nil {
		return r.fail(run, err)
	}

	run.OutputRows = len(rows)
	run.Status = model.RunStatusSucceeded
	r.finish(run)

	log.Printf("流水线运行完成: run=%s 输入=%d行 输出=%d行", run.RunID, run.RawRows, run.OutputRows)
	return run, nil
}

// fail 标记运行失败并保留错误信息
func (r *Runner) fail(run *model.PipelineRun, err error) (*model.PipelineRun, error) {
	run.Status = model.RunStatusFailed
	run.Error = err.Error()
	r.finish(run)

	log.Warnf("流水线运行失败: run=%s: %v", run.RunID, err)
	return run, err
}

// finish 落库并发布运行完成事件
func (r *Runner) finish(run *model.PipelineRun) {
	now := time.Now().UTC()
	run.FinishedAt = &now

	if err := r.db.Run().Update(run); err != nil {
		log.Warnf("更新运行记录失败: %v", err)
	}

	if r.nats == nil {
		return
	}
	event := model.PipelineEvent{
		RunID:      run.RunID,
		Status:     run.Status,
		OutputRows: run.OutputRows,
		Error:      run.Error,
		Timestamp:  now,
	}
	if err := r.nats.Publish(messaging.SubjectPipelineCompleted, event); err != nil {
		log.Warnf("发布流水线事件失败: %v", err)
	}
}
