package model

import (
	"time"
)

// 流水线运行状态
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// PipelineRun 流水线运行记录，每次重建尝试一条
type PipelineRun struct {
	RunID      string     `gorm:"primaryKey;size:36" json:"run_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	RawRows    int        `json:"raw_rows"`
	VolRows    int        `json:"vol_rows"`
	OutputRows int        `json:"output_rows"`
	Status     string     `gorm:"size:16" json:"status"`
	Error      string     `json:"error,omitempty"`
}

// TableName 指定运行记录表名
func (PipelineRun) TableName() string {
	return "pipeline_runs"
}

// IngestEvent 单个交易日采集完成事件
type IngestEvent struct {
	Symbol    string    `json:"symbol"`
	QuoteDate string    `json:"quote_date"`
	Fetched   int       `json:"fetched"`
	Filtered  int       `json:"filtered"`
	Inserted  int64     `json:"inserted"`
	Timestamp time.Time `json:"timestamp"`
}

// PipelineEvent 流水线运行完成事件
type PipelineEvent struct {
	RunID      string    `json:"run_id"`
	Status     string    `json:"status"`
	OutputRows int       `json:"output_rows"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
