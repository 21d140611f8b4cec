package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
)

// employer is a compact description of one source row for fixtures.
type employer struct {
	name       string
	status     string
	industry   string
	enrollees  string
	amount     string
	address    string
	withdrawal string
}

func (e employer) cells() []string {
	cells := make([]string, ColumnCount)
	cells[colGeneratedMonth] = "2024-01"
	cells[colName] = e.name
	cells[colBusinessRegNo] = "123456"
	cells[colStatus] = e.status
	cells[colPostalCode] = "06236"
	cells[colLotAddress] = "lot 1"
	cells[colAddress] = e.address
	cells[colLegalDongCode] = "1168010100"
	cells[colAdminDongCode] = "1168064000"
	cells[colSidoCode] = "11"
	cells[colSigunguCode] = "680"
	cells[colEupmyeondongCode] = "101"
	cells[colEmployerType] = "1"
	cells[colIndustryCode] = e.industry
	cells[colIndustryName] = "software"
	cells[colAppliedDate] = "2001-01-01"
	cells[colReregisteredDate] = ""
	cells[colWithdrawalDate] = e.withdrawal
	cells[colEnrollees] = e.enrollees
	cells[colAmount] = e.amount
	cells[colNewEnrollments] = "1"
	cells[colLosses] = "0"
	return cells
}

// csvBytes renders the header plus rows as UTF-8 CSV.
func csvBytes(t *testing.T, rows ...[]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.Write(SourceHeader()))
	for _, r := range rows {
		require.NoError(t, w.Write(r))
	}
	w.Flush()
	require.NoError(t, w.Error())
	return buf.Bytes()
}

// writeCP949 encodes data to CP949 and writes it to a temp file.
func writeCP949(t *testing.T, data []byte) string {
	t.Helper()
	encoded, err := korean.EUCKR.NewEncoder().Bytes(data)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "enrollment.csv")
	require.NoError(t, os.WriteFile(path, encoded, 0o600))
	return path
}

func loadEmployers(t *testing.T, employers ...employer) *Registry {
	t.Helper()
	rows := make([][]string, len(employers))
	for i, e := range employers {
		rows[i] = e.cells()
	}
	reg, err := Load(context.Background(), writeCP949(t, csvBytes(t, rows...)), Options{})
	require.NoError(t, err)
	return reg
}

func TestLoad_Pipeline(t *testing.T) {
	reg := loadEmployers(t,
		employer{name: "(주)한국전자", status: "1", industry: "262100", enrollees: "10", amount: "900000", address: "서울특별시 강남구 테헤란로 1"},
		employer{name: "탈퇴상사", status: "2", industry: "262100", enrollees: "5", amount: "450000", address: "부산광역시 해운대구", withdrawal: "2023-05-31"},
		employer{name: "무업종", status: "1", industry: "  ", enrollees: "3", amount: "300", address: "대구광역시"},
		employer{name: "[유]Acme-Korea", status: "1", industry: "262100", enrollees: "0", amount: "0", address: ""},
	)

	assert.Equal(t, 2, reg.Len())
	stats := reg.Stats()
	assert.Equal(t, 4, stats.RawRows)
	assert.Equal(t, 2, stats.Rows)
	assert.NotEmpty(t, stats.LoadID.String())
	assert.Positive(t, stats.BytesRead)

	data := reg.Data()
	first := data[0]
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, "한국전자", first.Name)
	assert.Equal(t, "서울특별시", first.Region)
	assert.Equal(t, 262100, first.IndustryCode)
	assert.Equal(t, 10, first.Enrollees)
	assert.Equal(t, "900000", first.Amount.String())
	assert.InDelta(t, 90000.0, float64(first.PerEnrolleeAmount), 1e-9)
	assert.InDelta(t, 1000000.0, float64(first.MonthlySalaryEstimate), 1e-6)
	assert.InDelta(t, 12000000.0, float64(first.AnnualSalaryEstimate), 1e-6)
	assert.Nil(t, first.WithdrawalYear)
	assert.Nil(t, first.WithdrawalMonth)

	second := data[1]
	assert.Equal(t, 1, second.Index)
	assert.Equal(t, "Acme Korea", second.Name)
	assert.Equal(t, "", second.Region)
	assert.True(t, math.IsNaN(float64(second.MonthlySalaryEstimate)))
	assert.False(t, second.AnnualSalaryEstimate.Valid())
}

func TestLoad_AnnualIsTwelveTimesMonthly(t *testing.T) {
	reg := loadEmployers(t,
		employer{name: "가", status: "1", industry: "1", enrollees: "7", amount: "1234567", address: "a"},
		employer{name: "나", status: "1", industry: "2", enrollees: "3", amount: "99,999", address: "b"},
		employer{name: "다", status: "1", industry: "3", enrollees: "12.0", amount: "1.5", address: "c"},
	)

	for _, rec := range reg.Data() {
		want := rec.Amount.InexactFloat64() / float64(rec.Enrollees) / 9 * 100
		assert.InDelta(t, want, float64(rec.MonthlySalaryEstimate), 1e-6, rec.Name)
		assert.InDelta(t, float64(rec.MonthlySalaryEstimate)*12, float64(rec.AnnualSalaryEstimate), 1e-6, rec.Name)
	}
}

func TestLoad_ZeroEnrolleesWithAmountIsInf(t *testing.T) {
	reg := loadEmployers(t,
		employer{name: "가", status: "1", industry: "1", enrollees: "0", amount: "100", address: "a"},
	)
	rec := reg.Data()[0]
	assert.True(t, math.IsInf(float64(rec.PerEnrolleeAmount), 1))
	assert.True(t, math.IsInf(float64(rec.AnnualSalaryEstimate), 1))
}

func TestLoad_WithdrawalDate(t *testing.T) {
	// Withdrawal dates on active rows are rare but present in real exports.
	reg := loadEmployers(t,
		employer{name: "가", status: "1", industry: "1", enrollees: "1", amount: "9", address: "a", withdrawal: "2021-11-30"},
		employer{name: "나", status: "1", industry: "1", enrollees: "1", amount: "9", address: "a", withdrawal: "not a date"},
	)

	data := reg.Data()
	require.NotNil(t, data[0].WithdrawalYear)
	require.NotNil(t, data[0].WithdrawalMonth)
	assert.Equal(t, 2021, *data[0].WithdrawalYear)
	assert.Equal(t, 11, *data[0].WithdrawalMonth)
	assert.Nil(t, data[1].WithdrawalYear)
}

func TestLoad_OnlyActiveRows(t *testing.T) {
	reg := loadEmployers(t,
		employer{name: "가", status: "1", industry: "1", enrollees: "1", amount: "9", address: "a"},
		employer{name: "나", status: "2", industry: "1", enrollees: "1", amount: "9", address: "a"},
		employer{name: "다", status: " 1 ", industry: "1", enrollees: "1", amount: "9", address: "a"},
		employer{name: "라", status: "", industry: "1", enrollees: "1", amount: "9", address: "a"},
	)

	var names []string
	for _, rec := range reg.Data() {
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{"가", "다"}, names)
}

func TestLoad_UTF8Source(t *testing.T) {
	path := filepath.Join(t.TempDir(), "utf8.csv")
	data := append([]byte{0xEF, 0xBB, 0xBF}, csvBytes(t,
		employer{name: "한글상호", status: "1", industry: "5", enrollees: "2", amount: "18", address: "서울 중구"}.cells(),
	)...)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	reg, err := Load(context.Background(), path, Options{Encoding: "utf-8"})
	require.NoError(t, err)
	assert.Equal(t, "한글상호", reg.Data()[0].Name)
	assert.Equal(t, "서울", reg.Data()[0].Region)
}

func TestLoad_Errors(t *testing.T) {
	good := employer{name: "가", status: "1", industry: "1", enrollees: "1", amount: "9", address: "a"}

	tests := []struct {
		name    string
		content func(t *testing.T) []byte
		opts    Options
		wantErr error
	}{
		{
			name: "header too short",
			content: func(t *testing.T) []byte {
				return []byte("a,b,c\n1,2,3\n")
			},
			wantErr: ErrSchemaMismatch,
		},
		{
			name: "shifted header",
			content: func(t *testing.T) []byte {
				header := SourceHeader()
				header[colIndustryCode], header[colIndustryName] = header[colIndustryName], header[colIndustryCode]
				var buf bytes.Buffer
				w := csv.NewWriter(&buf)
				_ = w.Write(header)
				_ = w.Write(good.cells())
				w.Flush()
				return buf.Bytes()
			},
			wantErr: ErrSchemaMismatch,
		},
		{
			name: "short data row",
			content: func(t *testing.T) []byte {
				return csvBytes(t, good.cells(), good.cells()[:10])
			},
			wantErr: ErrSchemaMismatch,
		},
		{
			name: "non-numeric industry code",
			content: func(t *testing.T) []byte {
				bad := good
				bad.industry = "abc"
				return csvBytes(t, bad.cells())
			},
			wantErr: ErrMalformed,
		},
		{
			name: "non-numeric enrollees",
			content: func(t *testing.T) []byte {
				bad := good
				bad.enrollees = "many"
				return csvBytes(t, bad.cells())
			},
			wantErr: ErrMalformed,
		},
		{
			name: "blank amount",
			content: func(t *testing.T) []byte {
				bad := good
				bad.amount = ""
				return csvBytes(t, bad.cells())
			},
			wantErr: ErrMalformed,
		},
		{
			name: "empty file",
			content: func(t *testing.T) []byte {
				return nil
			},
			wantErr: ErrDecode,
		},
		{
			name: "size limit",
			content: func(t *testing.T) []byte {
				return csvBytes(t, good.cells(), good.cells())
			},
			opts:    Options{MaxSize: 64},
			wantErr: ErrTooLarge,
		},
		{
			name: "unknown encoding",
			content: func(t *testing.T) []byte {
				return csvBytes(t, good.cells())
			},
			opts:    Options{Encoding: "klingon"},
			wantErr: ErrDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCP949(t, tt.content(t))
			reg, err := Load(context.Background(), path, tt.opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, reg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), Options{})
	assert.ErrorIs(t, err, ErrSource)
	assert.NotErrorIs(t, err, ErrTooLarge)
}

func TestLoad_CanceledContext(t *testing.T) {
	path := writeCP949(t, csvBytes(t,
		employer{name: "가", status: "1", industry: "1", enrollees: "1", amount: "9", address: "a"}.cells(),
	))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, path, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
