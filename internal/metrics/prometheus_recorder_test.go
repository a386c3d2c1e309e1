package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveTaskDuration("styles", 150*time.Millisecond)
	pr.IncTaskResult("styles", ResultSuccess)
	pr.IncTaskResult("styles", ResultSuccess)
	pr.IncTaskResult("html", ResultFailed)
	pr.ObserveGraphDuration("prod", time.Second)
	pr.IncGraphOutcome("prod", ResultFailed)
	pr.IncReloadBroadcast()
	pr.SetReloadClients(3)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.taskResults.WithLabelValues("styles", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.taskResults.WithLabelValues("html", "failed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.graphOutcome.WithLabelValues("prod", "failed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.broadcasts), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(pr.clients), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestPrometheusRecorder_NilReceiver(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.ObserveTaskDuration("x", time.Second)
		pr.IncTaskResult("x", ResultSkipped)
		pr.IncReloadBroadcast()
		pr.SetReloadClients(1)
	})
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncTaskResult("fonts", ResultSuccess)

	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `assetbuilder_task_results_total{result="success",task="fonts"} 1`)
}

var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)
