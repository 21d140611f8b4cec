package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Options configures Load. The zero value reads a CP949 file without a size
// limit or retries.
type Options struct {
	Encoding     string        // Source encoding name (default cp949)
	FetchTimeout time.Duration // Timeout for downloading a remote source
	FetchRetries int           // Retries for transient download failures
	MaxSize      int64         // Maximum source size in bytes (0 = unlimited)
	HTTPClient   *http.Client  // Client for remote sources (default http.DefaultClient)
	Logger       *slog.Logger  // Defaults to slog.Default()
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Salary estimate conversion: the contribution is 9% of the reported wage.
var (
	contributionRate = 9.0
	percent          = 100.0
	monthsPerYear    = 12.0
)

// row is a source row moving through the pipeline.
type row struct {
	line      int
	raw       []string
	industry  int
	status    string
	withdrawn string
	rec       Record
}

// stage is one total step over the working rows.
type stage struct {
	name string
	run  func(rows []*row) ([]*row, error)
}

// pipeline lists the preprocessing steps in their fixed order.
var pipeline = []stage{
	{"drop_blank_industry_code", dropBlankIndustryCode},
	{"rename_columns", renameColumns},
	{"drop_admin_columns", dropAdminColumns},
	{"clean_names", cleanNames},
	{"withdrawal_date", deriveWithdrawal},
	{"region", deriveRegion},
	{"filter_active", filterActive},
	{"salary_estimates", deriveEstimates},
}

// Load reads the enrollment dataset from a local path or http(s) URL and
// builds the registry. Any failure is returned wrapped in one of the
// package sentinels; no partial registry is produced.
func Load(ctx context.Context, source string, opts Options) (*Registry, error) {
	start := time.Now()
	loadID := uuid.New()
	logger := opts.logger().With("load_id", loadID.String(), "source", redactURL(source))

	enc, err := LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	src, size, err := openSource(ctx, source, opts)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	logger.Info("loading dataset", "bytes_total", size)
	logger.Debug("administrative columns dropped after rename", "columns", DroppedLabels())

	decoded, counter := WrapForStreaming(src, opts.MaxSize, enc)
	rows, err := readRows(decoded)
	if err != nil {
		return nil, err
	}
	rawRows := len(rows)

	for _, st := range pipeline {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err = st.run(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", st.name, err)
		}
		logger.Debug("pipeline stage complete", "stage", st.name, "rows", len(rows))
	}

	records := make([]Record, len(rows))
	for i, r := range rows {
		r.rec.Index = i
		records[i] = r.rec
	}

	stats := LoadStats{
		LoadID:    loadID,
		Source:    redactURL(source),
		LoadedAt:  time.Now(),
		Duration:  time.Since(start),
		BytesRead: counter.BytesRead,
		RawRows:   rawRows,
		Rows:      len(records),
	}

	logger.Info("dataset loaded",
		"raw_rows", stats.RawRows,
		"rows", stats.Rows,
		"bytes_read", stats.BytesRead,
		"duration_ms", stats.Duration.Milliseconds(),
	)

	return newRegistry(records, stats), nil
}

// readRows parses the decoded CSV, validating the header and every row width.
func readRows(r io.Reader) ([]*row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrDecode)
		}
		return nil, wrapReadErr(err)
	}
	if err := ValidateHeader(header); err != nil {
		return nil, err
	}

	var rows []*row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, wrapReadErr(err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) != columnCount {
			return nil, fmt.Errorf("%w: line %d has %d columns, want %d", ErrSchemaMismatch, line, len(rec), columnCount)
		}
		rows = append(rows, &row{line: line, raw: rec})
	}
	return rows, nil
}

// wrapReadErr keeps size-limit errors distinguishable from parse errors.
func wrapReadErr(err error) error {
	if errors.Is(err, ErrRegistry) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrDecode, err)
}

// malformed annotates a parse error with the source line and column label.
func malformed(r *row, col int, err error) error {
	return fmt.Errorf("line %d, %s: %w", r.line, Schema[col].Label, err)
}

func dropBlankIndustryCode(rows []*row) ([]*row, error) {
	kept := rows[:0]
	for _, r := range rows {
		cell := r.raw[colIndustryCode]
		if IsBlank(cell) {
			continue
		}
		code, err := ParseInt(cell)
		if err != nil {
			return nil, malformed(r, colIndustryCode, err)
		}
		r.industry = code
		kept = append(kept, r)
	}
	return kept, nil
}

// renameColumns binds positional cells to their domain fields.
func renameColumns(rows []*row) ([]*row, error) {
	for _, r := range rows {
		raw := r.raw
		r.rec = Record{
			Name:             raw[colName],
			BusinessRegNo:    strings.TrimSpace(raw[colBusinessRegNo]),
			Address:          raw[colAddress],
			SidoCode:         strings.TrimSpace(raw[colSidoCode]),
			SigunguCode:      strings.TrimSpace(raw[colSigunguCode]),
			EupmyeondongCode: strings.TrimSpace(raw[colEupmyeondongCode]),
			IndustryCode:     r.industry,
			IndustryName:     strings.TrimSpace(raw[colIndustryName]),
		}
		r.status = strings.TrimSpace(raw[colStatus])
		r.withdrawn = raw[colWithdrawalDate]

		var err error
		if r.rec.Enrollees, err = ParseInt(raw[colEnrollees]); err != nil {
			return nil, malformed(r, colEnrollees, err)
		}
		if r.rec.Amount, err = ParseAmount(raw[colAmount]); err != nil {
			return nil, malformed(r, colAmount, err)
		}
		if r.rec.NewEnrollments, err = ParseInt(raw[colNewEnrollments]); err != nil {
			return nil, malformed(r, colNewEnrollments, err)
		}
		if r.rec.Losses, err = ParseInt(raw[colLosses]); err != nil {
			return nil, malformed(r, colLosses, err)
		}
	}
	return rows, nil
}

// dropAdminColumns releases the raw cells; administrative columns were never
// bound to a field, so this is where they leave the table.
func dropAdminColumns(rows []*row) ([]*row, error) {
	for _, r := range rows {
		r.raw = nil
	}
	return rows, nil
}

func cleanNames(rows []*row) ([]*row, error) {
	for _, r := range rows {
		r.rec.Name = CleanName(r.rec.Name)
	}
	return rows, nil
}

func deriveWithdrawal(rows []*row) ([]*row, error) {
	for _, r := range rows {
		t, ok := ParseDate(r.withdrawn)
		if !ok {
			continue
		}
		year, month := t.Year(), int(t.Month())
		r.rec.WithdrawalYear = &year
		r.rec.WithdrawalMonth = &month
	}
	return rows, nil
}

func deriveRegion(rows []*row) ([]*row, error) {
	for _, r := range rows {
		r.rec.Region, _, _ = strings.Cut(r.rec.Address, " ")
	}
	return rows, nil
}

// activeStatus is the enrollment status code for employers currently enrolled.
const activeStatus = "1"

func filterActive(rows []*row) ([]*row, error) {
	kept := rows[:0]
	for _, r := range rows {
		if r.status != activeStatus {
			continue
		}
		r.status, r.withdrawn = "", ""
		kept = append(kept, r)
	}
	return kept, nil
}

// deriveEstimates computes the salary proxies. Zero enrollees yields NaN or
// Inf; callers filter those if needed.
func deriveEstimates(rows []*row) ([]*row, error) {
	for _, r := range rows {
		amount := r.rec.Amount.InexactFloat64()
		per := amount / float64(r.rec.Enrollees)
		monthly := per / contributionRate * percent
		r.rec.PerEnrolleeAmount = Estimate(per)
		r.rec.MonthlySalaryEstimate = Estimate(monthly)
		r.rec.AnnualSalaryEstimate = Estimate(monthly * monthsPerYear)
	}
	return rows, nil
}
