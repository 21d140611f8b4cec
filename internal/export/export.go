// Package export renders registry query results as downloadable files.
//
// A Sheet is a header plus typed rows; WriteCSV and WriteXLSX render the
// same Sheet so both downloads always carry identical columns.
package export

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/pension/internal/core"
)

// Content types for the supported formats.
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Sheet is a rectangular result ready for export.
// Cells hold string, int, *int, core.Estimate or decimal.Decimal values.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

var matchHeader = []string{
	"index", "name", "monthly_salary_estimate", "annual_salary_estimate",
	"industry_code", "enrollees",
}

// Matches builds a sheet from Find results.
func Matches(matches []core.Match) Sheet {
	rows := make([][]any, len(matches))
	for i, m := range matches {
		rows[i] = []any{
			m.Index, m.Name, m.MonthlySalaryEstimate, m.AnnualSalaryEstimate,
			m.IndustryCode, m.Enrollees,
		}
	}
	return Sheet{Name: "matches", Header: matchHeader, Rows: rows}
}

var recordHeader = []string{
	"index", "name", "business_reg_no", "address", "region",
	"sido_code", "sigungu_code", "eupmyeondong_code",
	"industry_code", "industry_name", "enrollees", "amount",
	"new_enrollments", "losses", "withdrawal_year", "withdrawal_month",
	"per_enrollee_amount", "monthly_salary_estimate", "annual_salary_estimate",
}

// Records builds a sheet from full working-table rows.
func Records(records []core.Record) Sheet {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{
			r.Index, r.Name, r.BusinessRegNo, r.Address, r.Region,
			r.SidoCode, r.SigunguCode, r.EupmyeondongCode,
			r.IndustryCode, r.IndustryName, r.Enrollees, r.Amount,
			r.NewEnrollments, r.Losses, r.WithdrawalYear, r.WithdrawalMonth,
			r.PerEnrolleeAmount, r.MonthlySalaryEstimate, r.AnnualSalaryEstimate,
		}
	}
	return Sheet{Name: "employers", Header: recordHeader, Rows: rows}
}

// Comparison builds a sheet from a Compare result, laid out like the UI table.
func Comparison(c *core.Comparison) Sheet {
	rows := make([][]any, len(c.Rows))
	for i, r := range c.Rows {
		rows[i] = []any{r.Label, r.Average, r.Count, r.Min, r.Max, r.Company}
	}
	header := append([]string{""}, c.Columns()...)
	return Sheet{Name: "comparison", Header: header, Rows: rows}
}

// text renders a cell for CSV. Undefined estimates and missing values are empty.
func text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case *int:
		if x == nil {
			return ""
		}
		return strconv.Itoa(*x)
	case core.Estimate:
		if !x.Valid() {
			return ""
		}
		return strconv.FormatFloat(float64(x), 'f', 2, 64)
	case decimal.Decimal:
		return x.String()
	default:
		return ""
	}
}

// native converts a cell to the value excelize should store.
// Missing values become empty strings.
func native(v any) any {
	switch x := v.(type) {
	case *int:
		if x == nil {
			return ""
		}
		return *x
	case core.Estimate:
		if !x.Valid() {
			return ""
		}
		return float64(x)
	case decimal.Decimal:
		return x.InexactFloat64()
	default:
		return v
	}
}
