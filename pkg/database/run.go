package database

import (
	"fmt"

	"gorm.io/gorm"

	"OptionFlow/pkg/model"
)

// RunDB 流水线运行记录数据访问
type RunDB struct {
	db *gorm.DB
}

// Run 返回运行记录访问器
func (p *Postgres) Run() *RunDB {
	return &RunDB{db: p.db}
}

// Create 创建运行记录
func (r *RunDB) Create(run *model.PipelineRun) error {
	if err := r.db.Create(run).Error; err != nil {
		return fmt.Errorf("创建运行记录失败: %w", err)
	}
	return nil
}

// Update 更新运行记录
func (r *RunDB) Update(run *model.PipelineRun) error {
	if err := r.db.Save(run).Error; err != nil {
		return fmt.Errorf("更新运行记录失败: %w", err)
	}
	return nil
}

// GetRecent 获取最近的运行记录
func (r *RunDB) GetRecent(limit int) ([]model.PipelineRun, error) {
	var runs []model.PipelineRun
	err := r.db.Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("查询运行记录失败: %w", err)
	}
	return runs, nil
}
