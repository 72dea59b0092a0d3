package collector

import (
	"time"

	log "github.com/sirupsen/logrus"

	"OptionFlow/pkg/messaging"
	"OptionFlow/pkg/model"
)

// QuoteStore 原始行情写入端
type QuoteStore interface {
	SaveBatch(quotes []model.OptionQuote) (int64, error)
}

// EventPublisher 采集事件发布端
type EventPublisher interface {
	Publish(subject string, data interface{}) error
}

// DayResult 单个交易日的采集结果
type DayResult struct {
	Fetched  int
	Filtered int
	Inserted int64
}

// IngestDay 采集单个交易日：拉取、过滤、入库，并在配置了发布端时发布采集事件
// 回填和每日定时两条路径共用同一入口
func IngestDay(adapter *OptionsAdapter, store QuoteStore, publisher EventPublisher, symbol string, day time.Time) (DayResult, error) {
	quotes, fetched, err := adapter.FetchDay(day)
	if err != nil {
		return DayResult{}, err
	}

	inserted, err := store.SaveBatch(quotes)
	if err != nil {
		return DayResult{}, err
	}

	result := DayResult{
		Fetched:  fetched,
		Filtered: len(quotes),
		Inserted: inserted,
	}

	log.Printf("采集 %s: 返回=%d 过滤后=%d 新增=%d",
		day.Format(dateLayout), result.Fetched, result.Filtered, result.Inserted)

	if publisher != nil {
		event := model.IngestEvent{
			Symbol:    symbol,
			QuoteDate: day.Format(dateLayout),
			Fetched:   result.Fetched,
			Filtered:  result.Filtered,
			Inserted:  result.Inserted,
			Timestamp: time.Now().UTC(),
		}
		if err := publisher.Publish(messaging.SubjectIngestDay, event); err != nil {
			log.Warnf("发布采集事件失败: %v", err)
		}
	}

	return result, nil
}
