// Package core provides the employer registry built from the pension enrollment dataset.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estimate is a derived monetary figure. It is NaN or Inf when the
// employer reports zero enrollees; JSON encodes those as null.
type Estimate float64

// Valid reports whether the estimate is a finite number.
func (e Estimate) Valid() bool {
	f := float64(e)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// MarshalJSON implements json.Marshaler.
func (e Estimate) MarshalJSON() ([]byte, error) {
	if !e.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(e))
}

// String formats the estimate rounded to whole won, or "-" when undefined.
func (e Estimate) String() string {
	if !e.Valid() {
		return "-"
	}
	return strconv.FormatFloat(math.Round(float64(e)), 'f', 0, 64)
}

// Record is one row of the working table: an active employer after preprocessing.
type Record struct {
	Index            int             `json:"index"` // Position in the working table
	Name             string          `json:"name"`
	BusinessRegNo    string          `json:"business_reg_no"`
	Address          string          `json:"address"`
	Region           string          `json:"region"`
	SidoCode         string          `json:"sido_code"`
	SigunguCode      string          `json:"sigungu_code"`
	EupmyeondongCode string          `json:"eupmyeondong_code"`
	IndustryCode     int             `json:"industry_code"`
	IndustryName     string          `json:"industry_name"`
	Enrollees        int             `json:"enrollees"`
	Amount           decimal.Decimal `json:"amount"`
	NewEnrollments   int             `json:"new_enrollments"`
	Losses           int             `json:"losses"`

	// Withdrawal year and month are nil when the withdrawal date is blank or unparseable.
	WithdrawalYear  *int `json:"withdrawal_year"`
	WithdrawalMonth *int `json:"withdrawal_month"`

	PerEnrolleeAmount     Estimate `json:"per_enrollee_amount"`
	MonthlySalaryEstimate Estimate `json:"monthly_salary_estimate"`
	AnnualSalaryEstimate  Estimate `json:"annual_salary_estimate"`
}

// Match is the projection of a Record returned by Find.
type Match struct {
	Index                 int      `json:"index"`
	Name                  string   `json:"name"`
	MonthlySalaryEstimate Estimate `json:"monthly_salary_estimate"`
	AnnualSalaryEstimate  Estimate `json:"annual_salary_estimate"`
	IndustryCode          int      `json:"industry_code"`
	Enrollees             int      `json:"enrollees"`
}

// Comparison statistic column names.
const (
	StatAverage = "average"
	StatCount   = "count"
	StatMin     = "min"
	StatMax     = "max"
)

// Comparison row labels.
const (
	RowIndustryMonthly = "industry_monthly_estimate"
	RowIndustryAnnual  = "industry_annual_estimate"
)

// ComparisonRow holds industry statistics for one estimate plus the
// reference company's own value.
type ComparisonRow struct {
	Label   string   `json:"label"`
	Average Estimate `json:"average"`
	Count   int      `json:"count"`
	Min     Estimate `json:"min"`
	Max     Estimate `json:"max"`
	Company Estimate `json:"company"`
}

// Comparison is the 2x5 summary returned by Compare.
type Comparison struct {
	Query        string          `json:"query"` // Header of the company column
	Reference    Match           `json:"reference"`
	IndustryCode int             `json:"industry_code"`
	Rows         []ComparisonRow `json:"rows"`
}

// Columns returns the column headers in display order.
func (c *Comparison) Columns() []string {
	return []string{StatAverage, StatCount, StatMin, StatMax, c.Query}
}

// LoadStats describes a completed load.
type LoadStats struct {
	LoadID    uuid.UUID     `json:"load_id"`
	Source    string        `json:"source"`
	LoadedAt  time.Time     `json:"loaded_at"`
	Duration  time.Duration `json:"duration"`
	BytesRead int64         `json:"bytes_read"`
	RawRows   int           `json:"raw_rows"`
	Rows      int           `json:"rows"`
}
