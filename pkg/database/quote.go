package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"OptionFlow/pkg/model"
)

// QuoteDB 原始期权行情数据访问
type QuoteDB struct {
	db *gorm.DB
}

// Quote 返回原始行情访问器
func (p *Postgres) Quote() *QuoteDB {
	return &QuoteDB{db: p.db}
}

// SaveBatch 批量写入行情，主键冲突静默忽略，返回实际插入行数
// (contract_id, quote_date) 重复写入幂等
func (q *QuoteDB) SaveBatch(quotes []model.OptionQuote) (int64, error) {
	if len(quotes) == 0 {
		return 0, nil
	}

	result := q.db.Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(quotes, 500)
	if result.Error != nil {
		return 0, fmt.Errorf("写入行情数据失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// GetAll 读取全部原始行情快照
func (q *QuoteDB) GetAll() ([]model.OptionQuote, error) {
	var quotes []model.OptionQuote
	err := q.db.Order("quote_date ASC, expiration ASC, strike ASC").
		Find(&quotes).Error
	if err != nil {
		return nil, fmt.Errorf("查询行情数据失败: %w", err)
	}
	return quotes, nil
}

// GetByDate 按行情日查询，optType为空表示两侧都取
func (q *QuoteDB) GetByDate(date time.Time, optType string, limit int) ([]model.OptionQuote, error) {
	var quotes []model.OptionQuote
	query := q.db.Where("quote_date = ?", date)
	if optType != "" {
		query = query.Where("option_type = ?", optType)
	}

	err := query.Order("expiration ASC, strike ASC").
		Limit(limit).
		Find(&quotes).Error
	if err != nil {
		return nil, fmt.Errorf("按日期查询行情失败: %w", err)
	}
	return quotes, nil
}

// Count 统计原始行情行数
func (q *QuoteDB) Count() (int64, error) {
	var count int64
	if err := q.db.Model(&model.OptionQuote{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计行情行数失败: %w", err)
	}
	return count, nil
}
