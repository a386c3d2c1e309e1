package preview

import (
	"bufio"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
)

const defaultHeartbeat = 30 * time.Second

// Hub fans reload events out to connected browsers over server-sent events.
type Hub struct {
	mu        sync.RWMutex
	nextID    int
	clients   map[int]*client
	recorder  metrics.Recorder
	closed    bool
	lastHash  string
	heartbeat time.Duration
}

type client struct {
	id   int
	ch   chan string
	done chan struct{}
}

// NewHub returns a hub reporting to rec. A nil recorder records nothing.
func NewHub(rec metrics.Recorder) *Hub {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Hub{clients: map[int]*client{}, recorder: rec, heartbeat: defaultHeartbeat}
}

// Clients returns the number of connected browsers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP implements the /livereload event stream.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "livereload shutting down", http.StatusServiceUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	c := &client{ch: make(chan string, 8), done: make(chan struct{})}
	h.mu.Lock()
	c.id = h.nextID
	h.nextID++
	h.clients[c.id] = c
	current := h.lastHash
	n := len(h.clients)
	h.mu.Unlock()
	h.recorder.SetReloadClients(n)

	bw := bufio.NewWriter(w)
	send := func(s string) bool {
		if _, err := bw.WriteString(s); err != nil {
			slog.Debug("livereload write", "error", err)
			return false
		}
		if err := bw.Flush(); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(": connected\n\n" + event(current)) {
		h.removeClient(c.id)
		return
	}

	hb := time.NewTicker(h.heartbeat)
	defer hb.Stop()
	for {
		select {
		case <-r.Context().Done():
			h.removeClient(c.id)
			return
		case <-c.done:
			return
		case <-hb.C:
			send(": ping\n\n")
		case hash := <-c.ch:
			send(event(hash))
		}
	}
}

func event(hash string) string {
	return "data: {\"hash\":\"" + hash + "\"}\n\n"
}

func (h *Hub) removeClient(id int) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		close(c.done)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.recorder.SetReloadClients(n)
	}
}

// Broadcast tells every client that the output changed. Empty or repeated
// hashes are ignored; clients whose queue is full are dropped.
func (h *Hub) Broadcast(hash string) {
	h.mu.Lock()
	if h.closed || hash == "" || hash == h.lastHash {
		h.mu.Unlock()
		return
	}
	h.lastHash = hash
	snapshot := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		snapshot = append(snapshot, c)
	}
	h.mu.Unlock()

	dropped := 0
	for _, c := range snapshot {
		select {
		case c.ch <- hash:
		default:
			dropped++
			h.removeClient(c.id)
		}
	}
	h.recorder.IncReloadBroadcast()
	slog.Debug("livereload broadcast", "hash", hash, "clients", len(snapshot), "dropped", dropped)
}

// Shutdown disconnects all clients and ignores further broadcasts.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := h.clients
	h.clients = map[int]*client{}
	h.mu.Unlock()
	for _, c := range clients {
		close(c.done)
	}
	h.recorder.SetReloadClients(0)
}

// ClientScript is served at /livereload.js. The first event sets the
// baseline; any later hash reloads the page.
const ClientScript = `(() => {
  if (window.__ASSETBUILDER_LR__) return;
  window.__ASSETBUILDER_LR__ = true;
  function connect() {
    const es = new EventSource('/livereload');
    let current = null;
    es.onmessage = (e) => {
      try {
        const p = JSON.parse(e.data);
        if (current === null) { current = p.hash; return; }
        if (p.hash && p.hash !== current) { location.reload(); }
      } catch (_) {}
    };
    es.onerror = () => { es.close(); setTimeout(connect, 2000); };
  }
  connect();
})();
`
