package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionFlow/pkg/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func quote(contractID, optType string, quoteDate, expiration time.Time, strike float64) model.OptionQuote {
	return model.OptionQuote{
		ContractID:        contractID,
		QuoteDate:         quoteDate,
		Symbol:            "AAPL",
		Expiration:        expiration,
		Strike:            strike,
		OptionType:        optType,
		Last:              1.5,
		Volume:            10,
		OpenInterest:      100,
		ImpliedVolatility: 0.25,
		Delta:             0.5,
		Gamma:             0.02,
		Theta:             -0.03,
		UnderlyingPrice:   400,
	}
}

func vol(quoteDate time.Time) model.VolatilityRecord {
	return model.VolatilityRecord{
		QuoteDate: quoteDate,
		HV10:      0.20,
		HV20:      0.22,
		HV30:      0.24,
		HVAvg:     0.22,
	}
}

func TestTransformPivotJoin(t *testing.T) {
	qd := day(2023, 1, 3)
	exp := day(2023, 1, 20)

	call := quote("AAPL230120C00400000", model.OptionTypeCall, qd, exp, 400)
	call.Last = 5.0
	call.Gamma = 0.03
	put := quote("AAPL230120P00400000", model.OptionTypePut, qd, exp, 400)
	put.Last = 4.0
	put.Gamma = 0.02

	rows, err := Transform(
		[]model.OptionQuote{call, put},
		[]model.VolatilityRecord{vol(qd)},
	)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, qd, row.QuoteDate)
	assert.Equal(t, exp, row.Expiration)
	assert.Equal(t, 17, row.DTE)

	require.NotNil(t, row.CallLast)
	require.NotNil(t, row.PutLast)
	assert.Equal(t, 5.0, *row.CallLast)
	assert.Equal(t, 4.0, *row.PutLast)

	require.NotNil(t, row.CombinedGamma)
	assert.InDelta(t, 0.05, *row.CombinedGamma, 1e-12)
	require.NotNil(t, row.CombinedPrice)
	assert.InDelta(t, 9.0, *row.CombinedPrice, 1e-12)

	// 波动率左连接
	require.NotNil(t, row.HV10)
	assert.Equal(t, 0.20, *row.HV10)
}

func TestTransformMissingPutSideStaysNull(t *testing.T) {
	qd := day(2023, 1, 3)
	exp := day(2023, 1, 20)
	call := quote("AAPL230120C00400000", model.OptionTypeCall, qd, exp, 400)

	rows, err := Transform(
		[]model.OptionQuote{call},
		[]model.VolatilityRecord{vol(qd)},
	)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	// 缺失腿保持NULL，不得补零
	assert.Nil(t, row.PutLast)
	assert.Nil(t, row.PutVolume)
	assert.Nil(t, row.PutGamma)
	assert.Nil(t, row.CombinedGamma)
	assert.Nil(t, row.CombinedPrice)
	assert.Nil(t, row.IVRatio)
	assert.Nil(t, row.ContractPCRatio)
	assert.Nil(t, row.ContractOIRatio)

	// 看涨侧字段正常产出
	require.NotNil(t, row.CallLast)
	require.NotNil(t, row.WeightedDelta)
	assert.InDelta(t, 0.5*10, *row.WeightedDelta, 1e-12)
}

func TestTransformContractRatioDivisionByZero(t *testing.T) {
	qd := day(2023, 1, 3)
	exp := day(2023, 1, 20)

	call := quote("c1", model.OptionTypeCall, qd, exp, 400)
	call.Volume = 0
	put := quote("p1", model.OptionTypePut, qd, exp, 400)
	put.Volume = 5

	rows, err := Transform(
		[]model.OptionQuote{call, put},
		[]model.VolatilityRecord{vol(qd)},
	)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// 5/0 为正无穷，不panic也不归零
	require.NotNil(t, rows[0].ContractPCRatio)
	assert.True(t, math.IsInf(*rows[0].ContractPCRatio, 1))
}

func TestTransformZeroOverZeroIsNull(t *testing.T) {
	qd := day(2023, 1, 3)
	exp := day(2023, 1, 20)

	call := quote("c1", model.OptionTypeCall, qd, exp, 400)
	call.Volume = 0
	put := quote("p1", model.OptionTypePut, qd, exp, 400)
	put.Volume = 0

	rows, err := Transform(
		[]model.OptionQuote{call, put},
		[]model.VolatilityRecord{vol(qd)},
	)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].ContractPCRatio)
}

func TestTransformDateLevelAggregates(t *testing.T) {
	qd := day(2023, 1, 3)
	exp := day(2023, 1, 20)

	callVolumes := []float64{10, 20, 30}
	putVolumes := []float64{5, 10, 15}
	strikes := []float64{390, 400, 410}

	var quotes []model.OptionQuote
	for i, strike := range strikes {
		c := quote("c", model.OptionTypeCall, qd, exp, strike)
		c.ContractID = c.ContractID + string(rune('0'+i))
		c.Volume = callVolumes[i]
		p := quote("p", model.OptionTypePut, qd, exp, strike)
		p.ContractID = p.ContractID + string(rune('0'+i))
		p.Volume = putVolumes[i]
		quotes = append(quotes, c, p)
	}

	rows, err := Transform(quotes, []model.VolatilityRecord{vol(qd)})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// (5+10+15)/(10+20+30) = 0.5，同一行情日所有行取值一致
	for _, row := range rows {
		require.NotNil(t, row.TotalPCRatio)
		assert.InDelta(t, 0.5, *row.TotalPCRatio, 1e-12)
	}
}

func TestTransformAggregatesSkipMissingLegs(t *testing.T) {
	qd := day(2023, 1, 3)
	exp := day(2023, 1, 20)

	call := quote("c1", model.OptionTypeCall, qd, exp, 400)
	call.Volume = 10
	lonePut := quote("p2", model.OptionTypePut, qd, exp, 410)
	lonePut.Volume = 4

	rows, err := Transform(
		[]model.OptionQuote{call, lonePut},
		[]model.VolatilityRecord{vol(qd)},
	)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	for _, row := range rows {
		require.NotNil(t, row.TotalPCRatio)
		assert.InDelta(t, 0.4, *row.TotalPCRatio, 1e-12)
	}
}

func TestTransformVolatilityLeftJoinKeepsRows(t *testing.T) {
	qd := day(2023, 1, 3)
	other := day(2023, 1, 4)
	exp := day(2023, 1, 20)
	call := quote("c1", model.OptionTypeCall, qd, exp, 400)

	// 波动率表只有别的日期，行依然保留，HV字段为NULL
	rows, err := Transform(
		[]model.OptionQuote{call},
		[]model.VolatilityRecord{vol(other)},
	)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].HV10)
	assert.Nil(t, rows[0].HVAvg)
}

func TestTransformDerivedMetrics(t *testing.T) {
	qd := day(2023, 1, 3)
	exp := day(2023, 1, 20)

	call := quote("c1", model.OptionTypeCall, qd, exp, 410)
	call.UnderlyingPrice = 400
	call.Delta = 0.4
	call.Theta = -0.05
	call.Volume = 20
	put := quote("p1", model.OptionTypePut, qd, exp, 410)
	put.UnderlyingPrice = 400

	rows, err := Transform(
		[]model.OptionQuote{call, put},
		[]model.VolatilityRecord{vol(qd)},
	)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	require.NotNil(t, row.StrikeDistance)
	assert.InDelta(t, 10.0, *row.StrikeDistance, 1e-12)
	require.NotNil(t, row.StrikeDistancePct)
	assert.InDelta(t, 0.025, *row.StrikeDistancePct, 1e-12)

	// 加权字段仅取看涨侧
	require.NotNil(t, row.WeightedDelta)
	assert.InDelta(t, 0.4*20, *row.WeightedDelta, 1e-12)
	require.NotNil(t, row.WeightedTheta)
	assert.InDelta(t, -0.05*20, *row.WeightedTheta, 1e-12)
}

func TestTransformDropsInvalidDates(t *testing.T) {
	qd := day(2023, 1, 3)
	exp := day(2023, 1, 20)

	valid := quote("c1", model.OptionTypeCall, qd, exp, 400)
	broken := quote("c2", model.OptionTypeCall, qd, time.Time{}, 410)

	rows, err := Transform(
		[]model.OptionQuote{valid, broken},
		[]model.VolatilityRecord{vol(qd)},
	)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestTransformInsufficientInput(t *testing.T) {
	qd := day(2023, 1, 3)
	exp := day(2023, 1, 20)
	call := quote("c1", model.OptionTypeCall, qd, exp, 400)

	_, err := Transform(nil, []model.VolatilityRecord{vol(qd)})
	assert.ErrorIs(t, err, ErrInsufficientInput)

	_, err = Transform([]model.OptionQuote{call}, nil)
	assert.ErrorIs(t, err, ErrInsufficientInput)
}

func TestTransformDeterministic(t *testing.T) {
	qd := day(2023, 1, 3)
	exp := day(2023, 1, 20)

	var quotes []model.OptionQuote
	for i := 0; i < 10; i++ {
		strike := 380.0 + float64(i)*5
		c := quote("c", model.OptionTypeCall, qd, exp, strike)
		c.ContractID = c.ContractID + string(rune('a'+i))
		p := quote("p", model.OptionTypePut, qd, exp, strike)
		p.ContractID = p.ContractID + string(rune('a'+i))
		quotes = append(quotes, c, p)
	}
	vols := []model.VolatilityRecord{vol(qd)}

	first, err := Transform(quotes, vols)
	require.NoError(t, err)
	second, err := Transform(quotes, vols)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNormalizeDayAnchorsUTC(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	late := time.Date(2023, 1, 3, 22, 30, 0, 0, loc)

	normalized, ok := normalizeDay(late)
	require.True(t, ok)
	// 2023-01-03 22:30 EST 为UTC的2023-01-04
	assert.Equal(t, day(2023, 1, 4), normalized)

	_, ok = normalizeDay(time.Time{})
	assert.False(t, ok)
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 17, daysBetween(day(2023, 1, 3), day(2023, 1, 20)))
	assert.Equal(t, 0, daysBetween(day(2023, 1, 20), day(2023, 1, 20)))
}
