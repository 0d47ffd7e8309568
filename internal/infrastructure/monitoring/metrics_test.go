package monitoring

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	apperrors "github.com/planifia/planner/pkg/errors"
)

func TestMetrics_ObserveSync(t *testing.T) {
	m := NewMetrics()

	m.ObserveSync("incremental", 20*time.Millisecond, nil)
	m.ObserveSync("incremental", 5*time.Millisecond, errors.New("boom"))
	m.ObserveSync("full", time.Millisecond, nil)
	m.ObserveSync("full", time.Millisecond, apperrors.NewSyncCancelledError("u1", context.Canceled))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.syncPassesTotal.WithLabelValues("incremental", "success", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.syncPassesTotal.WithLabelValues("incremental", "error", "INTERNAL_ERROR")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.syncPassesTotal.WithLabelValues("full", "success", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.syncPassesTotal.WithLabelValues("full", "error", "SYNC_CANCELLED")))
}

func TestMetrics_ItemChangesAndSuppressions(t *testing.T) {
	m := NewMetrics()

	m.ObserveItemChanges(3, 1, 2)
	m.ObserveItemChanges(1, 0, 0)
	m.ObserveSuppression()

	assert.Equal(t, 4.0, testutil.ToFloat64(m.itemChangesTotal.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.itemChangesTotal.WithLabelValues("update")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.itemChangesTotal.WithLabelValues("delete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.suppressionsTotal))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.RecordHTTPRequest(http.MethodGet, "/api/v1/users/{userID}/shopping", http.StatusOK, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",route="/api/v1/users/{userID}/shopping",status_code="200"} 1`)
	assert.Contains(t, rec.Body.String(), "planner_suppressions_total 0")
}

func TestTracingProvider_Disabled(t *testing.T) {
	tp, err := NewTracingProvider(context.Background(), TracingConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, tp.Enabled())
	assert.NoError(t, tp.Shutdown(context.Background()))
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
