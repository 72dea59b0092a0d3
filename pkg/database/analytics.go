package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"OptionFlow/pkg/model"
)

// AnalyticsDB 分析表数据访问
type AnalyticsDB struct {
	db *gorm.DB
}

// Analytics 返回分析表访问器
func (p *Postgres) Analytics() *AnalyticsDB {
	return &AnalyticsDB{db: p.db}
}

// ReplaceAll 在单个事务中整表替换分析数据
// 流水线每次运行从头重算历史，不做增量更新
func (a *AnalyticsDB) ReplaceAll(rows []model.AnalyticalRow) error {
	err := a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.AnalyticalRow{}).Error; err != nil {
			return fmt.Errorf("清空分析表失败: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("写入分析表失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("替换分析表失败: %w", err)
	}
	return nil
}

// AnalyticsFilter 分析表查询条件
type AnalyticsFilter struct {
	QuoteDate  *time.Time
	Expiration *time.Time
	Strike     *float64
	Limit      int
}

// Query 按条件查询分析行
func (a *AnalyticsDB) Query(filter AnalyticsFilter) ([]model.AnalyticalRow, error) {
	query := a.db.Model(&model.AnalyticalRow{})

	if filter.QuoteDate != nil {
		query = query.Where("quote_date = ?", *filter.QuoteDate)
	}
	if filter.Expiration != nil {
		query = query.Where("expiration = ?", *filter.Expiration)
	}
	if filter.Strike != nil {
		query = query.Where("strike = ?", *filter.Strike)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []model.AnalyticalRow
	err := query.Order("quote_date ASC, expiration ASC, strike ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询分析数据失败: %w", err)
	}
	return rows, nil
}

// DistinctDates 获取分析表中全部行情日
func (a *AnalyticsDB) DistinctDates() ([]time.Time, error) {
	var dates []time.Time
	err := a.db.Model(&model.AnalyticalRow{}).
		Distinct("quote_date").
		Order("quote_date ASC").
		Pluck("quote_date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("查询行情日列表失败: %w", err)
	}
	return dates, nil
}

// Count 统计分析表行数
func (a *AnalyticsDB) Count() (int64, error) {
	var count int64
	if err := a.db.Model(&model.AnalyticalRow{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计分析表行数失败: %w", err)
	}
	return count, nil
}
