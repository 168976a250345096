// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/nexastore/nexastore/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(metrics.AuthEvents.WithLabelValues("login", "success"))

	metrics.AuthEvents.WithLabelValues("login", "success").Inc()

	assert.InDelta(t, before+1, testutil.ToFloat64(metrics.AuthEvents.WithLabelValues("login", "success")), 0.001)
}

func TestHandler(t *testing.T) {
	metrics.CodesIssued.WithLabelValues("SIGNUP").Inc()

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `nexastore_verification_codes_issued_total{purpose="SIGNUP"}`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
