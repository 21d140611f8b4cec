// Package templates holds the templ components of the search UI.
//
// Components live in .templ files; the _templ.go files are generated from
// them with `templ generate` and must not be edited by hand.
package templates

//go:generate templ generate

import (
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/pension/internal/core"
)

// SearchParams is the data for the search page.
type SearchParams struct {
	Name     string
	Searched bool
	Matches  []core.Match
	Limit    int // Maximum rows rendered; 0 renders all
	Error    *core.UserMessage
}

// CompanyParams is the data for the company detail page.
type CompanyParams struct {
	Query      string
	Record     core.Record
	Comparison *core.Comparison
	Peers      []core.Record
}

// companyURL links to the detail page of a company.
func companyURL(name string) templ.SafeURL {
	return templ.SafeURL("/company?name=" + url.QueryEscape(name))
}

// exportURL links to the find export in the given format.
func exportURL(ext, name string) templ.SafeURL {
	return templ.SafeURL("/api/export/find." + ext + "?name=" + url.QueryEscape(name))
}

// firstN returns at most limit matches; a limit of 0 keeps them all.
func firstN(matches []core.Match, limit int) []core.Match {
	if limit > 0 && len(matches) > limit {
		return matches[:limit]
	}
	return matches
}

type detailField struct {
	label string
	value string
}

// detailFields lists the working-table columns shown on the company page.
func detailFields(r core.Record) []detailField {
	fields := []detailField{
		{"사업자등록번호", r.BusinessRegNo},
		{"주소", r.Address},
		{"지역", r.Region},
		{"업종", r.IndustryName + " (" + strconv.Itoa(r.IndustryCode) + ")"},
		{"가입자수", strconv.Itoa(r.Enrollees)},
		{"고지금액", r.Amount.String()},
		{"신규취득자수", strconv.Itoa(r.NewEnrollments)},
		{"상실가입자수", strconv.Itoa(r.Losses)},
		{"1인당 고지금액", r.PerEnrolleeAmount.String()},
		{"월 급여 추정", r.MonthlySalaryEstimate.String()},
		{"연 급여 추정", r.AnnualSalaryEstimate.String()},
	}
	if r.WithdrawalYear != nil && r.WithdrawalMonth != nil {
		fields = append(fields, detailField{"탈퇴", strconv.Itoa(*r.WithdrawalYear) + "-" + strconv.Itoa(*r.WithdrawalMonth)})
	}
	return fields
}
