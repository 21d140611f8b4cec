package templates

import (
	"bytes"
	"context"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/pension/internal/core"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestSearchPage_EscapesInput(t *testing.T) {
	html := renderString(t, SearchPage(SearchParams{Name: `<script>"x"`, Searched: true}))

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "No employers match")
}

func TestSearchPage_Results(t *testing.T) {
	matches := []core.Match{
		{Name: "한국전자", MonthlySalaryEstimate: 3000000.4, AnnualSalaryEstimate: 36000004.8, IndustryCode: 262100, Enrollees: 120},
		{Name: "Acme", MonthlySalaryEstimate: core.Estimate(math.NaN()), AnnualSalaryEstimate: core.Estimate(math.NaN()), IndustryCode: 262100, Enrollees: 0},
		{Name: "Third", IndustryCode: 1, Enrollees: 0},
	}

	html := renderString(t, SearchPage(SearchParams{Name: "전자", Searched: true, Matches: matches, Limit: 2}))

	assert.Contains(t, html, "3 matches")
	assert.Contains(t, html, `href="/company?name=%ED%95%9C%EA%B5%AD%EC%A0%84%EC%9E%90"`)
	assert.Contains(t, html, "3000000")
	assert.Contains(t, html, "<td class=\"num\">-</td>")
	assert.NotContains(t, html, "Third")
	assert.Contains(t, html, "Showing the 2 largest of 3 matches")
	assert.Contains(t, html, "/api/export/find.xlsx?name=")
}

func TestSearchPage_NoSearchYet(t *testing.T) {
	html := renderString(t, SearchPage(SearchParams{}))
	assert.Contains(t, html, `<form class="search"`)
	assert.NotContains(t, html, "<table")
}

func TestSearchPage_Error(t *testing.T) {
	html := renderString(t, SearchPage(SearchParams{
		Name:  strings.Repeat("a", 5),
		Error: &core.UserMessage{Message: "Search input is invalid", Action: "Enter a name", Code: "VAL001"},
	}))
	assert.Contains(t, html, `role="alert"`)
	assert.Contains(t, html, "VAL001")
}

func TestCompanyPage(t *testing.T) {
	year, month := 2022, 7
	rec := core.Record{
		Index:                 2,
		Name:                  "한국전자",
		Address:               "서울특별시 강남구",
		Region:                "서울특별시",
		IndustryCode:          262100,
		IndustryName:          "반도체 제조업",
		Enrollees:             10,
		Amount:                decimal.RequireFromString("900000"),
		MonthlySalaryEstimate: 1000000,
		AnnualSalaryEstimate:  12000000,
		WithdrawalYear:        &year,
		WithdrawalMonth:       &month,
	}
	cmp := &core.Comparison{
		Query:        "전자",
		IndustryCode: 262100,
		Rows: []core.ComparisonRow{
			{Label: core.RowIndustryMonthly, Average: 900000, Count: 4, Min: 100, Max: 2000000, Company: 1000000},
			{Label: core.RowIndustryAnnual, Average: 10800000, Count: 4, Min: 1200, Max: 24000000, Company: 12000000},
		},
	}
	peers := []core.Record{rec, {Index: 5, Name: "<b>Peer</b>", Region: "부산", Enrollees: 3}}

	html := renderString(t, CompanyPage(CompanyParams{Query: "전자", Record: rec, Comparison: cmp, Peers: peers}))

	assert.Contains(t, html, "<title>한국전자</title>")
	assert.Contains(t, html, "반도체 제조업 (262100)")
	assert.Contains(t, html, "2022-7")
	assert.Contains(t, html, "<th>전자</th>")
	assert.Contains(t, html, "industry_monthly_estimate")
	assert.Contains(t, html, `<tr class="self">`)
	assert.Contains(t, html, "&lt;b&gt;Peer&lt;/b&gt;")
}

func TestErrorAlert(t *testing.T) {
	html := renderString(t, ErrorAlert("No employer matches that name", "", "REG001"))
	assert.Contains(t, html, "No employer matches that name")
	assert.Contains(t, html, "Code: REG001")
	assert.NotContains(t, html, "<p>")
}

func TestLayout_WrapsChildren(t *testing.T) {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>body</p>")
		return err
	})

	var buf bytes.Buffer
	ctx := templ.WithChildren(context.Background(), body)
	require.NoError(t, Layout("<Title>").Render(ctx, &buf))
	html := buf.String()

	assert.True(t, strings.HasPrefix(html, "<!doctype html>"))
	assert.Contains(t, html, "<title>&lt;Title&gt;</title>")
	assert.Contains(t, html, "<main><p>body</p></main>")
}

func TestSearchForm_KeepsQuery(t *testing.T) {
	html := renderString(t, SearchForm(`a"b`))
	assert.Contains(t, html, `value="a&#34;b"`)
	assert.Contains(t, html, `action="/"`)
}

func TestErrorAlert_WithAction(t *testing.T) {
	html := renderString(t, ErrorAlert("Search input is invalid", "Enter a name", "VAL001"))
	assert.Contains(t, html, "<strong>Search input is invalid</strong> <p>Enter a name</p>")
	assert.Contains(t, html, "<small>Code: VAL001</small>")
}

func TestPeerList_Empty(t *testing.T) {
	html := renderString(t, PeerList(core.Record{}, nil))
	assert.Contains(t, html, "No other employers share this industry code.")
	assert.NotContains(t, html, "<table")
}
