package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadVolatilityCSV(t *testing.T) {
	content := `date,hv_10,hv_20,hv_30,hv_avg
2023-01-03,0.21,0.23,0.25,0.23
2023-01-04,0.22,0.24,0.26,0.24
not-a-date,0.1,0.1,0.1,0.1
`
	path := filepath.Join(t.TempDir(), "hv.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := readVolatilityCSV(path)
	require.NoError(t, err)

	// 表头和无法解析的行被跳过
	require.Len(t, records, 2)
	assert.Equal(t, time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), records[0].QuoteDate)
	assert.Equal(t, 0.21, records[0].HV10)
	assert.Equal(t, 0.24, records[1].HVAvg)
}

func TestReadVolatilityCSVMissingFile(t *testing.T) {
	_, err := readVolatilityCSV("does/not/exist.csv")
	assert.Error(t, err)
}
