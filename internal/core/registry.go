package core

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Registry is the immutable working table built by Load. All methods are
// read-only and safe for concurrent use.
type Registry struct {
	records    []Record
	byIndustry map[int][]int
	stats      LoadStats
}

// newRegistry indexes records by industry code. Records must already carry
// their Index.
func newRegistry(records []Record, stats LoadStats) *Registry {
	byIndustry := make(map[int][]int)
	for i, rec := range records {
		byIndustry[rec.IndustryCode] = append(byIndustry[rec.IndustryCode], i)
	}
	return &Registry{records: records, byIndustry: byIndustry, stats: stats}
}

// NewRegistry builds a registry from already-processed records, reassigning
// Index to each record's position. Used for fixtures and snapshots.
func NewRegistry(records []Record) *Registry {
	records = slices.Clone(records)
	for i := range records {
		records[i].Index = i
	}
	return newRegistry(records, LoadStats{RawRows: len(records), Rows: len(records)})
}

// Len returns the number of rows in the working table.
func (r *Registry) Len() int {
	return len(r.records)
}

// Stats returns the metadata of the load that built the registry.
func (r *Registry) Stats() LoadStats {
	return r.stats
}

// Find returns every row whose cleaned name contains name, case-sensitively,
// ordered by enrollee count descending. Ties keep table order.
// An empty name matches every row.
func (r *Registry) Find(name string) []Match {
	matches := make([]Match, 0)
	for i := range r.records {
		rec := &r.records[i]
		if strings.Contains(rec.Name, name) {
			matches = append(matches, toMatch(rec))
		}
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		return b.Enrollees - a.Enrollees
	})
	return matches
}

func toMatch(rec *Record) Match {
	return Match{
		Index:                 rec.Index,
		Name:                  rec.Name,
		MonthlySalaryEstimate: rec.MonthlySalaryEstimate,
		AnnualSalaryEstimate:  rec.AnnualSalaryEstimate,
		IndustryCode:          rec.IndustryCode,
		Enrollees:             rec.Enrollees,
	}
}

// reference returns the best match for name: the matching row with the most enrollees.
func (r *Registry) reference(name string) (Match, error) {
	matches := r.Find(name)
	if len(matches) == 0 {
		return Match{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return matches[0], nil
}

// CompanyInfo returns the full row of the best match for name.
func (r *Registry) CompanyInfo(name string) (Record, error) {
	ref, err := r.reference(name)
	if err != nil {
		return Record{}, err
	}
	return r.records[ref.Index], nil
}

// Compare summarizes the salary estimates of the best match's industry.
// The aggregate covers every row with that industry code, the reference
// company included; undefined (NaN) estimates are skipped.
func (r *Registry) Compare(name string) (*Comparison, error) {
	ref, err := r.reference(name)
	if err != nil {
		return nil, err
	}

	peers := r.byIndustry[ref.IndustryCode]
	monthly := make([]float64, 0, len(peers))
	annual := make([]float64, 0, len(peers))
	for _, i := range peers {
		monthly = append(monthly, float64(r.records[i].MonthlySalaryEstimate))
		annual = append(annual, float64(r.records[i].AnnualSalaryEstimate))
	}

	return &Comparison{
		Query:        name,
		Reference:    ref,
		IndustryCode: ref.IndustryCode,
		Rows: []ComparisonRow{
			summarize(RowIndustryMonthly, monthly, ref.MonthlySalaryEstimate),
			summarize(RowIndustryAnnual, annual, ref.AnnualSalaryEstimate),
		},
	}, nil
}

// summarize computes mean, count, min and max over the non-NaN values.
// With no values the statistics are NaN and the count is zero.
func summarize(label string, values []float64, company Estimate) ComparisonRow {
	row := ComparisonRow{
		Label:   label,
		Average: Estimate(math.NaN()),
		Min:     Estimate(math.NaN()),
		Max:     Estimate(math.NaN()),
		Company: company,
	}

	var sum float64
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		row.Count++
		sum += v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if row.Count == 0 {
		return row
	}

	row.Average = Estimate(sum / float64(row.Count))
	row.Min = Estimate(lo)
	row.Max = Estimate(hi)
	return row
}

// Data returns a copy of the full working table.
func (r *Registry) Data() []Record {
	return slices.Clone(r.records)
}

// Industry returns the rows sharing an industry code in table order.
func (r *Registry) Industry(code int) []Record {
	idx := r.byIndustry[code]
	out := make([]Record, len(idx))
	for i, j := range idx {
		out[i] = r.records[j]
	}
	return out
}

// Page returns one page of the working table (1-based) and the total row count.
// Pages past the end are empty.
func (r *Registry) Page(page, size int) ([]Record, int) {
	total := len(r.records)
	if page < 1 || size < 1 || total == 0 {
		return []Record{}, total
	}
	// Compare page counts before multiplying so huge pages cannot overflow.
	if pages := (total-1)/size + 1; page > pages {
		return []Record{}, total
	}
	start := (page - 1) * size
	end := min(start+size, total)
	return slices.Clone(r.records[start:end]), total
}
