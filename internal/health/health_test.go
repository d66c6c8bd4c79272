package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_Healthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	checker := NewChecker(5 * time.Second)
	defer checker.Close()

	result := checker.Check(context.Background(), Endpoint{Name: "model-api", URL: srv.URL})
	assert.True(t, result.Healthy)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "HEALTHY", result.Verdict())
	assert.NoError(t, result.Err)
}

func TestCheck_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	checker := NewChecker(5 * time.Second)
	defer checker.Close()

	result := checker.Check(context.Background(), Endpoint{Name: "grafana", URL: srv.URL})
	assert.False(t, result.Healthy)
	assert.Equal(t, "FAILED", result.Verdict())
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "status 500")
}

func TestCheck_ConnectionRefused(t *testing.T) {
	checker := NewChecker(1 * time.Second)
	defer checker.Close()

	result := checker.Check(context.Background(), Endpoint{Name: "down", URL: "http://127.0.0.1:1/"})
	assert.False(t, result.Healthy)
	assert.Equal(t, "FAILED", result.Verdict())
	require.Error(t, result.Err)
}

func TestCheckAll_MixedResults(t *testing.T) {
	okSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer okSrv.Close()

	checker := NewChecker(5 * time.Second)
	defer checker.Close()

	results := checker.CheckAll(context.Background(), []Endpoint{
		{Name: "up", URL: okSrv.URL},
		{Name: "down", URL: "http://127.0.0.1:1/"},
	})
	require.Len(t, results, 2)
	assert.True(t, results[0].Healthy)
	assert.False(t, results[1].Healthy)
}

func TestProbe_RecoversAfterFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	checker := NewChecker(5 * time.Second)
	defer checker.Close()

	result := checker.Probe(context.Background(), Endpoint{Name: "warmup", URL: srv.URL}, 5, 10*time.Millisecond)
	assert.True(t, result.Healthy)
	assert.GreaterOrEqual(t, hits.Load(), int32(3))
}

func TestProbe_ExhaustsAttempts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	checker := NewChecker(5 * time.Second)
	defer checker.Close()

	result := checker.Probe(context.Background(), Endpoint{Name: "never", URL: srv.URL}, 3, time.Millisecond)
	assert.False(t, result.Healthy)
}

func TestProbe_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	checker := NewChecker(5 * time.Second)
	defer checker.Close()

	result := checker.Probe(ctx, Endpoint{Name: "cancelled", URL: srv.URL}, 10, time.Minute)
	assert.False(t, result.Healthy)
}
