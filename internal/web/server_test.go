package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "procnet_test_gauge", Help: "test"})
	g.Set(7)
	reg.MustRegister(g)

	s := &Server{Registry: reg, TelemetryPath: "/metrics", Version: "1.2.3"}
	h := s.Handler()

	code, body := get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "procnet_test_gauge 7")
	assert.Contains(t, body, "promhttp_metric_handler_requests_total")

	code, body = get(t, h, "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `<a href="/metrics">`)
	assert.Contains(t, body, "version 1.2.3")

	code, _ = get(t, h, "/nope")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHandlerWithoutExporterMetrics(t *testing.T) {
	s := &Server{Registry: prometheus.NewRegistry(), TelemetryPath: "/m", DisableExpMetrics: true}

	code, body := get(t, s.Handler(), "/m")
	assert.Equal(t, http.StatusOK, code)
	assert.NotContains(t, body, "promhttp_")
}

func TestStartStopsOnCancel(t *testing.T) {
	s := &Server{ListenAddrs: []string{"127.0.0.1:0"}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestStartListenError(t *testing.T) {
	s := &Server{ListenAddrs: []string{"not-an-address"}}
	assert.Error(t, s.Start(context.Background()))
}
