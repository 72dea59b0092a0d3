package model

import (
	"time"
)

// 期权类型
const (
	OptionTypeCall = "call"
	OptionTypePut  = "put"
)

// OptionQuote 单个合约单个交易日的原始期权行情
// 主键为 (contract_id, quote_date)，采集端以 insert-or-ignore 方式写入
type OptionQuote struct {
	ContractID        string    `gorm:"primaryKey;size:64" json:"contract_id"`
	QuoteDate         time.Time `gorm:"primaryKey" json:"quote_date"`
	Symbol            string    `gorm:"size:16;index" json:"symbol"`
	Expiration        time.Time `gorm:"index" json:"expiration"`
	Strike            float64   `json:"strike"`
	OptionType        string    `gorm:"size:8" json:"option_type"`
	Last              float64   `json:"last"`
	Bid               float64   `json:"bid"`
	Ask               float64   `json:"ask"`
	Volume            float64   `json:"volume"`
	OpenInterest      float64   `json:"open_interest"`
	ImpliedVolatility float64   `json:"implied_volatility"`
	Delta             float64   `json:"delta"`
	Gamma             float64   `json:"gamma"`
	Theta             float64   `json:"theta"`
	Vega              float64   `json:"vega"`
	Rho               float64   `json:"rho"`
	UnderlyingPrice   float64   `json:"underlying_price"`
}

// TableName 指定原始行情表名
func (OptionQuote) TableName() string {
	return "option_quotes"
}

// IsCall 是否为看涨合约
func (q *OptionQuote) IsCall() bool {
	return q.OptionType == OptionTypeCall
}

// VolatilityRecord 外部维护的历史波动率统计，每个日历日一条
type VolatilityRecord struct {
	QuoteDate time.Time `gorm:"primaryKey" json:"quote_date"`
	HV10      float64   `json:"hv_10"`
	HV20      float64   `json:"hv_20"`
	HV30      float64   `json:"hv_30"`
	HVAvg     float64   `json:"hv_avg"`
}

// TableName 指定波动率表名
func (VolatilityRecord) TableName() string {
	return "volatility_records"
}
