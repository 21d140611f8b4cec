package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/pension/internal/core"
)

func TestObserveLoad(t *testing.T) {
	m := New()
	m.ObserveLoad(core.LoadStats{
		RawRows:  10,
		Rows:     7,
		Duration: 1500 * time.Millisecond,
		LoadedAt: time.Unix(1_700_000_000, 0),
	})

	assert.Equal(t, 7.0, testutil.ToFloat64(m.rows))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.rawRows))
	assert.Equal(t, 1.5, testutil.ToFloat64(m.loadSeconds))
	assert.Equal(t, 1.7e9, testutil.ToFloat64(m.loadTimestamp))
}

func TestObserveQuery_ResultLabels(t *testing.T) {
	m := New()
	start := time.Now()

	m.ObserveQuery(OpFind, start, 3, nil)
	m.ObserveQuery(OpFind, start, 0, nil)
	m.ObserveQuery(OpCompare, start, 0, fmt.Errorf("%w: %q", core.ErrNotFound, "x"))
	m.ObserveQuery(OpCompany, start, 0, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues(OpFind, ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues(OpFind, ResultEmpty)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues(OpCompare, ResultNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues(OpCompany, ResultError)))
	assert.Equal(t, 3, testutil.CollectAndCount(m.queryDuration))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveLoad(core.LoadStats{Rows: 2})
	m.ObserveQuery(OpFind, time.Now(), 1, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "pension_registry_rows 2")
	assert.Contains(t, string(body), `pension_queries_total{op="find",result="ok"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
