package collector

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"OptionFlow/pkg/model"
)

// 上游API使用的日期格式
const dateLayout = "2006-01-02"

// OptionsAdapter 期权数据源适配器
// 负责调用API、过滤月度合约并转换为统一数据模型
type OptionsAdapter struct {
	client *MarketDataClient
	symbol string
}

// NewOptionsAdapter 创建期权数据源适配器
func NewOptionsAdapter(apiKey, baseURL, symbol string, timeout time.Duration) *OptionsAdapter {
	return &OptionsAdapter{
		client: NewMarketDataClient(apiKey, baseURL, timeout),
		symbol: symbol,
	}
}

// FetchDay 获取指定交易日的月度期权合约行情
// 返回值依次为：过滤后的行情、API返回的原始条数
func (a *OptionsAdapter) FetchDay(quoteDate time.Time) ([]model.OptionQuote, int, error) {
	records, err := a.client.GetEOD(a.symbol, quoteDate.Format(dateLayout))
	if err != nil {
		return nil, 0, fmt.Errorf("获取期权链失败: %w", err)
	}

	quotes := make([]model.OptionQuote, 0, len(records))
	for _, rec := range records {
		quote, err := a.normalize(rec, quoteDate)
		if err != nil {
			log.Warnf("丢弃无法解析的合约记录 %s: %v", rec.ContractID, err)
			continue
		}

		// 仅保留月度到期合约（每月第三个星期五）
		if !IsMonthlyExpiration(quote.Expiration) {
			continue
		}

		quotes = append(quotes, quote)
	}

	return quotes, len(records), nil
}

// normalize 将API合约记录转换为统一数据模型
func (a *OptionsAdapter) normalize(rec ContractRecord, quoteDate time.Time) (model.OptionQuote, error) {
	expiration, err := time.ParseInLocation(dateLayout, rec.Expiration, time.UTC)
	if err != nil {
		return model.OptionQuote{}, fmt.Errorf("解析到期日失败: %w", err)
	}

	optType := rec.Type
	if optType != model.OptionTypeCall && optType != model.OptionTypePut {
		return model.OptionQuote{}, fmt.Errorf("未知的期权类型: %q", rec.Type)
	}

	symbol := rec.Symbol
	if symbol == "" {
		symbol = a.symbol
	}

	return model.OptionQuote{
		ContractID:        rec.ContractID,
		QuoteDate:         quoteDate,
		Symbol:            symbol,
		Expiration:        expiration,
		Strike:            rec.Strike,
		OptionType:        optType,
		Last:              rec.Last,
		Bid:               rec.Bid,
		Ask:               rec.Ask,
		Volume:            rec.Volume,
		OpenInterest:      rec.OpenInterest,
		ImpliedVolatility: rec.ImpliedVolatility,
		Delta:             rec.Delta,
		Gamma:             rec.Gamma,
		Theta:             rec.Theta,
		Vega:              rec.Vega,
		Rho:               rec.Rho,
		UnderlyingPrice:   rec.UnderlyingPrice,
	}, nil
}

// IsMonthlyExpiration 判断是否为月度到期日
// 月度合约到期于每月第三个星期五，即周五且日期在[15,21]区间内
func IsMonthlyExpiration(expiration time.Time) bool {
	if expiration.Weekday() != time.Friday {
		return false
	}
	day := expiration.Day()
	return day >= 15 && day <= 21
}

// TradingDays 展开日期区间内的交易日（周一至周五）
func TradingDays(start, end time.Time) []time.Time {
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		days = append(days, time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC))
	}
	return days
}
