package pipeline

import (
	"errors"
	"math"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"OptionFlow/pkg/model"
)

// ErrInsufficientInput 输入数据不足，流水线拒绝运行
// 原始行情或波动率任一为空时不产出部分连接的误导性结果
var ErrInsufficientInput = errors.New("输入数据不足: 原始行情或波动率数据为空")

// pivotKey 透视连接的自然键
type pivotKey struct {
	QuoteDate  time.Time
	Expiration time.Time
	Strike     float64
	Symbol     string
}

// sideFields 单侧（看涨或看跌）的数值字段
// 指针非空表示该腿存在，缺失的腿在输出中保持NULL而非补零
type sideFields struct {
	Last         float64
	Volume       float64
	OpenInterest float64
	IV           float64
	Delta        float64
	Gamma        float64
	Theta        float64
}

// pivotRow 外连接后的宽行，call和put可能只有一侧存在
type pivotRow struct {
	key        pivotKey
	underlying *float64
	call       *sideFields
	put        *sideFields
}

// dateTotals 按行情日汇总的成交量与持仓量，以及广播到该日所有行的比值
type dateTotals struct {
	callVolume   float64
	putVolume    float64
	callOI       float64
	putOI        float64
	totalPCRatio *float64
	totalOIRatio *float64
}

// Transform 将原始行情与波动率记录转换为分析行
// 步骤：归一化→按侧拆分→透视外连接→DTE→波动率左连接→日级汇总→逐合约比值→派生指标→投影
// 输出按 (行情日, 到期日, 行权价, 标的) 排序，相同输入产出完全一致
func Transform(quotes []model.OptionQuote, vols []model.VolatilityRecord) ([]model.AnalyticalRow, error) {
	if len(quotes) == 0 || len(vols) == 0 {
		return nil, ErrInsufficientInput
	}

	// 步骤1-3: 归一化日期、按期权类型拆分、按自然键透视外连接
	rows := make(map[pivotKey]*pivotRow)
	for i := range quotes {
		q := &quotes[i]

		quoteDate, ok := normalizeDay(q.QuoteDate)
		if !ok {
			log.Warnf("丢弃行情日无效的行: contract=%s", q.ContractID)
			continue
		}
		expiration, ok := normalizeDay(q.Expiration)
		if !ok {
			log.Warnf("丢弃到期日无效的行: contract=%s", q.ContractID)
			continue
		}

		key := pivotKey{
			QuoteDate:  quoteDate,
			Expiration: expiration,
			Strike:     q.Strike,
			Symbol:     q.Symbol,
		}
		row, exists := rows[key]
		if !exists {
			row = &pivotRow{key: key}
			rows[key] = row
		}

		side := &sideFields{
			Last:         q.Last,
			Volume:       q.Volume,
			OpenInterest: q.OpenInterest,
			IV:           q.ImpliedVolatility,
			Delta:        q.Delta,
			Gamma:        q.Gamma,
			Theta:        q.Theta,
		}
		if q.IsCall() {
			row.call = side
		} else {
			row.put = side
		}

		if row.underlying == nil && q.UnderlyingPrice != 0 {
			row.underlying = ptr(q.UnderlyingPrice)
		}
	}

	if len(rows) == 0 {
		return nil, ErrInsufficientInput
	}

	// 步骤5: 波动率按行情日建索引，供左连接使用
	volIndex := make(map[time.Time]model.VolatilityRecord, len(vols))
	for _, v := range vols {
		if day, ok := normalizeDay(v.QuoteDate); ok {
			volIndex[day] = v
		}
	}

	// 步骤6: 先汇总后广播，避免逐行重算
	totals := aggregateByDate(rows)

	// 确定性输出顺序
	keys := make([]pivotKey, 0, len(rows))
	for key := range rows {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if !a.QuoteDate.Equal(b.QuoteDate) {
			return a.QuoteDate.Before(b.QuoteDate)
		}
		if !a.Expiration.Equal(b.Expiration) {
			return a.Expiration.Before(b.Expiration)
		}
		if a.Strike != b.Strike {
			return a.Strike < b.Strike
		}
		return a.Symbol < b.Symbol
	})

	// 步骤4、7、8、9: DTE、逐合约比值、派生指标、固定列投影
	out := make([]model.AnalyticalRow, 0, len(rows))
	for _, key := range keys {
		out = append(out, project(rows[key], volIndex, totals[key.QuoteDate]))
	}
	return out, nil
}

// aggregateByDate 按行情日汇总两侧成交量与持仓量并计算广播比值
func aggregateByDate(rows map[pivotKey]*pivotRow) map[time.Time]*dateTotals {
	totals := make(map[time.Time]*dateTotals)
	for _, row := range rows {
		t, exists := totals[row.key.QuoteDate]
		if !exists {
			t = &dateTotals{}
			totals[row.key.QuoteDate] = t
		}
		if row.call != nil {
			t.callVolume += row.call.Volume
			t.callOI += row.call.OpenInterest
		}
		if row.put != nil {
			t.putVolume += row.put.Volume
			t.putOI += row.put.OpenInterest
		}
	}

	for _, t := range totals {
		t.totalPCRatio = ratio(t.putVolume, t.callVolume)
		t.totalOIRatio = ratio(t.putOI, t.callOI)
	}
	return totals
}

// project 产出单行分析结果
func project(row *pivotRow, volIndex map[time.Time]model.VolatilityRecord, totals *dateTotals) model.AnalyticalRow {
	ar := model.AnalyticalRow{
		QuoteDate:       row.key.QuoteDate,
		Expiration:      row.key.Expiration,
		Strike:          row.key.Strike,
		Symbol:          row.key.Symbol,
		UnderlyingPrice: row.underlying,
		DTE:             daysBetween(row.key.QuoteDate, row.key.Expiration),
	}

	if c := row.call; c != nil {
		ar.CallLast = ptr(c.Last)
		ar.CallVolume = ptr(c.Volume)
		ar.CallOpenInterest = ptr(c.OpenInterest)
		ar.CallIV = ptr(c.IV)
		ar.CallDelta = ptr(c.Delta)
		ar.CallGamma = ptr(c.Gamma)
		ar.CallTheta = ptr(c.Theta)

		// 加权字段仅使用看涨侧，按既有口径保留
		ar.WeightedDelta = ptr(c.Delta * c.Volume)
		ar.WeightedTheta = ptr(c.Theta * c.Volume)
	}
	if p := row.put; p != nil {
		ar.PutLast = ptr(p.Last)
		ar.PutVolume = ptr(p.Volume)
		ar.PutOpenInterest = ptr(p.OpenInterest)
		ar.PutIV = ptr(p.IV)
		ar.PutDelta = ptr(p.Delta)
		ar.PutGamma = ptr(p.Gamma)
		ar.PutTheta = ptr(p.Theta)
	}

	// 双腿派生字段：任一腿缺失则保持NULL，不以0冒充完整值
	if row.call != nil && row.put != nil {
		ar.CombinedGamma = ptr(row.call.Gamma + row.put.Gamma)
		ar.CombinedPrice = ptr(row.call.Last + row.put.Last)
		ar.IVRatio = ratio(row.call.IV, row.put.IV)
		ar.ContractPCRatio = ratio(row.put.Volume, row.call.Volume)
		ar.ContractOIRatio = ratio(row.put.OpenInterest, row.call.OpenInterest)
	}

	if row.underlying != nil {
		distance := math.Abs(row.key.Strike - *row.underlying)
		ar.StrikeDistance = ptr(distance)
		ar.StrikeDistancePct = ratio(distance, *row.underlying)
	}

	if vr, ok := volIndex[row.key.QuoteDate]; ok {
		ar.HV10 = ptr(vr.HV10)
		ar.HV20 = ptr(vr.HV20)
		ar.HV30 = ptr(vr.HV30)
		ar.HVAvg = ptr(vr.HVAvg)
	}

	if totals != nil {
		ar.TotalPCRatio = totals.totalPCRatio
		ar.TotalOIRatio = totals.totalOIRatio
	}

	return ar
}

// normalizeDay 将时间归一化为UTC日历日，零值视为无效
func normalizeDay(t time.Time) (time.Time, bool) {
	if t.IsZero() {
		return time.Time{}, false
	}
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC), true
}

// daysBetween 两个日历日之间的整数天数
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// ratio 计算 num/den，分母为0时产出+Inf，0/0无定义返回nil
// 比值的边界情况是常态而非异常，绝不panic也绝不静默归零
func ratio(num, den float64) *float64 {
	if den == 0 && num == 0 {
		return nil
	}
	v := num / den
	return &v
}

// ptr 取float64的指针
func ptr(v float64) *float64 {
	return &v
}
