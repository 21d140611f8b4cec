package export

import (
	"bytes"
	"encoding/csv"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/pension/internal/core"
)

func sampleMatches() []core.Match {
	return []core.Match{
		{Index: 3, Name: "한국전자", MonthlySalaryEstimate: 3000000, AnnualSalaryEstimate: 36000000, IndustryCode: 262100, Enrollees: 120},
		{Index: 9, Name: "Acme, Korea", MonthlySalaryEstimate: core.Estimate(math.NaN()), AnnualSalaryEstimate: core.Estimate(math.NaN()), IndustryCode: 262100, Enrollees: 0},
	}
}

func TestWriteCSV_Matches(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Matches(sampleMatches())))

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, utf8BOM), "missing BOM")

	rows, err := csv.NewReader(bytes.NewReader(out[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, matchHeader, rows[0])
	assert.Equal(t, []string{"3", "한국전자", "3000000.00", "36000000.00", "262100", "120"}, rows[1])
	assert.Equal(t, []string{"9", "Acme, Korea", "", "", "262100", "0"}, rows[2])
}

func TestWriteCSV_Records(t *testing.T) {
	year, month := 2023, 5
	records := []core.Record{{
		Index:           0,
		Name:            "한국전자",
		Amount:          decimal.RequireFromString("900000.50"),
		WithdrawalYear:  &year,
		WithdrawalMonth: &month,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Records(records)))

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Len(t, rows[1], len(recordHeader))

	col := func(name string) string {
		for i, h := range rows[0] {
			if h == name {
				return rows[1][i]
			}
		}
		t.Fatalf("column %q not found", name)
		return ""
	}
	assert.Equal(t, "900000.5", col("amount"))
	assert.Equal(t, "2023", col("withdrawal_year"))
	assert.Equal(t, "5", col("withdrawal_month"))
	assert.Equal(t, "0.00", col("monthly_salary_estimate"))
}

func TestWriteCSV_Comparison(t *testing.T) {
	cmp := &core.Comparison{
		Query: "Acme",
		Rows: []core.ComparisonRow{
			{Label: core.RowIndustryMonthly, Average: 200, Count: 4, Min: 100, Max: 300, Company: 250},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Comparison(cmp)))

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"", "average", "count", "min", "max", "Acme"}, rows[0])
	assert.Equal(t, []string{"industry_monthly_estimate", "200.00", "4", "100.00", "300.00", "250.00"}, rows[1])
}

func TestWriteXLSX_Matches(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, Matches(sampleMatches())))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"matches"}, f.GetSheetList())

	rows, err := f.GetRows("matches")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, matchHeader, rows[0])
	assert.Equal(t, "한국전자", rows[1][1])
	assert.Equal(t, "3000000", rows[1][2])
	assert.Equal(t, "262100", rows[1][4])
	assert.Equal(t, "Acme, Korea", rows[2][1])
	assert.Equal(t, "", rows[2][2])
}

func TestWriteXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, Matches(nil)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("matches")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
