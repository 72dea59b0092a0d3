package api

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionFlow/pkg/model"
)

func fptr(v float64) *float64 {
	return &v
}

func TestSanitizeRowsReplacesInfWithNull(t *testing.T) {
	rows := []model.AnalyticalRow{
		{
			ContractPCRatio: fptr(math.Inf(1)),
			TotalPCRatio:    fptr(0.5),
			TotalOIRatio:    fptr(math.Inf(-1)),
			CombinedGamma:   fptr(0.05),
		},
	}

	sanitizeRows(rows)

	assert.Nil(t, rows[0].ContractPCRatio)
	assert.Nil(t, rows[0].TotalOIRatio)

	// 有限值保持不变
	require.NotNil(t, rows[0].TotalPCRatio)
	assert.Equal(t, 0.5, *rows[0].TotalPCRatio)
	require.NotNil(t, rows[0].CombinedGamma)
	assert.Equal(t, 0.05, *rows[0].CombinedGamma)
}
