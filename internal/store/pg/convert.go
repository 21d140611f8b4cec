package pg

import (
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/pension/internal/core"
)

// ToPgText returns NULL for blank strings.
func ToPgText(s string) pgtype.Text {
	if strings.TrimSpace(s) == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgNumeric converts an exact amount without going through float64.
func ToPgNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{Valid: false}
	}
	return n
}

// ToPgInt4 returns NULL for a missing value.
func ToPgInt4(v *int) pgtype.Int4 {
	if v == nil {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: int32(*v), Valid: true}
}

// ToPgFloat8 stores undefined estimates (zero enrollees) as NULL.
func ToPgFloat8(e core.Estimate) pgtype.Float8 {
	if !e.Valid() {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: float64(e), Valid: true}
}
