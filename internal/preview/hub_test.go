package preview

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
)

type countingRecorder struct {
	metrics.NoopRecorder
	broadcasts atomic.Int64
	clients    atomic.Int64
}

func (r *countingRecorder) IncReloadBroadcast()    { r.broadcasts.Add(1) }
func (r *countingRecorder) SetReloadClients(n int) { r.clients.Store(int64(n)) }

// connect opens the event stream and returns its lines on a channel.
func connect(t *testing.T, url string) <-chan string {
	t.Helper()
	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	t.Cleanup(cancel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 64)
	go func() {
		defer close(lines)
		r := bufio.NewReader(resp.Body)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			lines <- line
		}
	}()
	return lines
}

func waitFor(t *testing.T, lines <-chan string, needle string, within time.Duration) bool {
	t.Helper()
	deadline := time.After(within)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return false
			}
			if strings.Contains(line, needle) {
				return true
			}
		case <-deadline:
			return false
		}
	}
}

func TestHub_InitialEventCarriesLastHash(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Shutdown()
	hub.Broadcast("abc123")

	srv := httptest.NewServer(hub)
	defer srv.Close()

	lines := connect(t, srv.URL)
	assert.True(t, waitFor(t, lines, `"hash":"abc123"`, time.Second))
}

func TestHub_InitialEventWithoutBroadcastIsEmptyBaseline(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Shutdown()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	lines := connect(t, srv.URL)
	assert.True(t, waitFor(t, lines, `data: {"hash":""}`, time.Second))
}

func TestHub_BroadcastSendsEvent(t *testing.T) {
	rec := &countingRecorder{}
	hub := NewHub(rec)
	defer hub.Shutdown()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	lines := connect(t, srv.URL)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 1, rec.clients.Load())

	hub.Broadcast("newhash")
	assert.True(t, waitFor(t, lines, "newhash", time.Second))
	assert.EqualValues(t, 1, rec.broadcasts.Load())
}

func TestHub_DuplicateBroadcastIgnored(t *testing.T) {
	rec := &countingRecorder{}
	hub := NewHub(rec)
	defer hub.Shutdown()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	lines := connect(t, srv.URL)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	hub.Broadcast("hash1")
	require.True(t, waitFor(t, lines, "hash1", time.Second))

	hub.Broadcast("hash1")
	hub.Broadcast("")
	assert.False(t, waitFor(t, lines, "hash1", 200*time.Millisecond))
	assert.EqualValues(t, 1, rec.broadcasts.Load())
}

func TestHub_ClientDisconnectUpdatesGauge(t *testing.T) {
	rec := &countingRecorder{}
	hub := NewHub(rec)
	defer hub.Shutdown()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	ctx, cancel := context.WithCancel(t.Context())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.EqualValues(t, 0, rec.clients.Load())
}

func TestHub_ShutdownRejectsNewClients(t *testing.T) {
	hub := NewHub(nil)
	hub.Shutdown()
	hub.Shutdown()

	rr := httptest.NewRecorder()
	hub.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/livereload", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestHub_Heartbeat(t *testing.T) {
	hub := NewHub(nil)
	hub.heartbeat = 20 * time.Millisecond
	defer hub.Shutdown()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	lines := connect(t, srv.URL)
	assert.True(t, waitFor(t, lines, ": ping", time.Second))
}
