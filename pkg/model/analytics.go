package model

import (
	"time"
)

// AnalyticalRow 分析表输出行，每个 (行情日, 到期日, 行权价) 一条
// 缺失腿、缺失波动率记录和 0/0 比值统一以 NULL 表达，绝不以 0 填充
// 每次流水线运行整表重建，不做增量更新
type AnalyticalRow struct {
	QuoteDate       time.Time `gorm:"index" json:"quote_date"`
	Expiration      time.Time `json:"expiration"`
	Strike          float64   `json:"strike"`
	Symbol          string    `gorm:"size:16" json:"symbol"`
	UnderlyingPrice *float64  `json:"underlying_price"`
	DTE             int       `json:"dte"`

	CallLast         *float64 `json:"call_last"`
	CallVolume       *float64 `json:"call_volume"`
	CallOpenInterest *float64 `json:"call_open_interest"`
	CallIV           *float64 `json:"call_iv"`
	CallDelta        *float64 `json:"call_delta"`
	CallGamma        *float64 `json:"call_gamma"`
	CallTheta        *float64 `json:"call_theta"`

	PutLast         *float64 `json:"put_last"`
	PutVolume       *float64 `json:"put_volume"`
	PutOpenInterest *float64 `json:"put_open_interest"`
	PutIV           *float64 `json:"put_iv"`
	PutDelta        *float64 `json:"put_delta"`
	PutGamma        *float64 `json:"put_gamma"`
	PutTheta        *float64 `json:"put_theta"`

	StrikeDistance    *float64 `json:"strike_distance"`
	StrikeDistancePct *float64 `json:"strike_distance_pct"`
	CombinedGamma     *float64 `json:"combined_gamma"`
	WeightedDelta     *float64 `json:"weighted_delta"`
	WeightedTheta     *float64 `json:"weighted_theta"`
	CombinedPrice     *float64 `json:"combined_price"`
	IVRatio           *float64 `json:"iv_ratio"`

	HV10  *float64 `json:"hv_10"`
	HV20  *float64 `json:"hv_20"`
	HV30  *float64 `json:"hv_30"`
	HVAvg *float64 `json:"hv_avg"`

	TotalPCRatio    *float64 `json:"total_p_c_ratio"`
	TotalOIRatio    *float64 `json:"total_oi_ratio"`
	ContractPCRatio *float64 `json:"contract_p_c_ratio"`
	ContractOIRatio *float64 `json:"contract_oi_ratio"`
}

// TableName 指定分析表名
func (AnalyticalRow) TableName() string {
	return "option_analytics"
}
