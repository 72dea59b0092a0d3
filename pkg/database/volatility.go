package database

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"OptionFlow/pkg/model"
)

// VolatilityDB 历史波动率数据访问
type VolatilityDB struct {
	db *gorm.DB
}

// Volatility 返回波动率访问器
func (p *Postgres) Volatility() *VolatilityDB {
	return &VolatilityDB{db: p.db}
}

// SaveBatch 批量写入波动率记录，按日期覆盖旧值
// 波动率表由外部维护，导入以最新文件为准
func (v *VolatilityDB) SaveBatch(records []model.VolatilityRecord) error {
	if len(records) == 0 {
		return nil
	}

	err := v.db.Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(records, 500).Error
	if err != nil {
		return fmt.Errorf("写入波动率数据失败: %w", err)
	}
	return nil
}

// GetAll 读取全部波动率记录
func (v *VolatilityDB) GetAll() ([]model.VolatilityRecord, error) {
	var records []model.VolatilityRecord
	err := v.db.Order("quote_date ASC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("查询波动率数据失败: %w", err)
	}
	return records, nil
}

// Count 统计波动率行数
func (v *VolatilityDB) Count() (int64, error) {
	var count int64
	if err := v.db.Model(&model.VolatilityRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计波动率行数失败: %w", err)
	}
	return count, nil
}
