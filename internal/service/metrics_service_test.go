package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/apiwada-admin-api/pkg/docstore"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/students", http.StatusOK, 2*time.Millisecond)
	m.ObserveStoreOperation("memory", "get", time.Millisecond, nil)
	m.ObserveStoreOperation("memory", "get", time.Millisecond, docstore.ErrNotFound)
	m.ObserveAllocation(3, 2, nil)
	m.ObserveAllocation(10, 10, errors.New("exhausted"))
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.RequestsTotal)
	assert.Equal(t, uint64(2), snap.StoreOperations)
	assert.Equal(t, uint64(2), snap.IndexAllocations)
	assert.Equal(t, uint64(12), snap.AllocationConflicts)
	assert.Equal(t, uint64(1), snap.AllocationFailures)
	assert.InDelta(t, 0.5, snap.CacheHitRatio, 0.0001)
	assert.InDelta(t, 2.0, snap.AverageRequestDurationMs, 0.0001)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "index_allocation_conflicts_total 12")
	assert.NotContains(t, rec.Body.String(), `docstore_operation_errors_total{backend="memory",operation="get"}`)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.ObserveAllocation(1, 0, nil)
	m.RecordCacheOperation(true, time.Millisecond)
	assert.Zero(t, m.Snapshot().RequestsTotal)
}
