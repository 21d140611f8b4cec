// Package pg writes snapshots of the employer registry to PostgreSQL.
//
// The in-memory registry stays the source of truth; a snapshot lets
// analysts query a given load with SQL. Each load is tagged with its
// load ID so successive snapshots can live side by side.
package pg

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/pension/internal/config"
	"github.com/JonMunkholm/pension/internal/core"
)

// Table is the snapshot table name.
const Table = "employer_snapshots"

const createTable = `
CREATE TABLE IF NOT EXISTS employer_snapshots (
	load_id                 uuid        NOT NULL,
	row_index               integer     NOT NULL,
	name                    text        NOT NULL,
	business_reg_no         text,
	address                 text,
	region                  text,
	sido_code               text,
	sigungu_code            text,
	eupmyeondong_code       text,
	industry_code           integer     NOT NULL,
	industry_name           text,
	enrollees               integer     NOT NULL,
	amount                  numeric     NOT NULL,
	new_enrollments         integer     NOT NULL,
	losses                  integer     NOT NULL,
	withdrawal_year         integer,
	withdrawal_month        integer,
	per_enrollee_amount     double precision,
	monthly_salary_estimate double precision,
	annual_salary_estimate  double precision,
	loaded_at               timestamptz NOT NULL,
	PRIMARY KEY (load_id, row_index)
)`

const createIndustryIndex = `
CREATE INDEX IF NOT EXISTS employer_snapshots_industry_idx
	ON employer_snapshots (load_id, industry_code)`

// columns is the COPY column order; snapshotRow produces values in the same order.
var columns = []string{
	"load_id", "row_index", "name", "business_reg_no", "address", "region",
	"sido_code", "sigungu_code", "eupmyeondong_code",
	"industry_code", "industry_name", "enrollees", "amount",
	"new_enrollments", "losses", "withdrawal_year", "withdrawal_month",
	"per_enrollee_amount", "monthly_salary_estimate", "annual_salary_estimate",
	"loaded_at",
}

// Connect opens and pings a connection pool sized from cfg.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// Store writes registry snapshots.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps a connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the snapshot table and index if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{createTable, createIndustryIndex} {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// WriteSnapshot copies every registry row in one transaction and returns the
// number of rows written. Rows from an earlier snapshot of the same load are replaced.
func (s *Store) WriteSnapshot(ctx context.Context, reg *core.Registry) (int64, error) {
	start := time.Now()
	stats := reg.Stats()
	loadID := pgtype.UUID{Bytes: stats.LoadID, Valid: true}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	if _, err := tx.Exec(ctx, `DELETE FROM employer_snapshots WHERE load_id = $1`, loadID); err != nil {
		return 0, fmt.Errorf("clear previous snapshot: %w", err)
	}

	records := reg.Data()
	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{Table},
		columns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			return snapshotRow(loadID, stats.LoadedAt, records[i]), nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	slog.Info("registry snapshot written",
		"load_id", stats.LoadID.String(),
		"rows", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return n, nil
}

// snapshotRow converts a record to COPY values in column order.
func snapshotRow(loadID pgtype.UUID, loadedAt time.Time, r core.Record) []any {
	return []any{
		loadID,
		int32(r.Index),
		r.Name,
		ToPgText(r.BusinessRegNo),
		ToPgText(r.Address),
		ToPgText(r.Region),
		ToPgText(r.SidoCode),
		ToPgText(r.SigunguCode),
		ToPgText(r.EupmyeondongCode),
		int32(r.IndustryCode),
		ToPgText(r.IndustryName),
		int32(r.Enrollees),
		ToPgNumeric(r.Amount),
		int32(r.NewEnrollments),
		int32(r.Losses),
		ToPgInt4(r.WithdrawalYear),
		ToPgInt4(r.WithdrawalMonth),
		ToPgFloat8(r.PerEnrolleeAmount),
		ToPgFloat8(r.MonthlySalaryEstimate),
		ToPgFloat8(r.AnnualSalaryEstimate),
		pgtype.Timestamptz{Time: loadedAt, Valid: !loadedAt.IsZero()},
	}
}
