package devserver

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/assetflow/internal/logfields"
	"git.home.luguber.info/inful/assetflow/internal/metrics"
)

// EventKind tells the browser how to apply a change.
type EventKind string

const (
	// KindReload asks the page to reload.
	KindReload EventKind = "reload"
	// KindCSS asks the page to refetch one stylesheet in place.
	KindCSS EventKind = "css"
)

// Event is one live-reload message, sent as SSE data.
type Event struct {
	Hash string    `json:"hash"`
	Kind EventKind `json:"kind"`
	Path string    `json:"path,omitempty"`
}

// Hub manages SSE clients for live-reload broadcasts.
type Hub struct {
	mu       sync.RWMutex
	nextID   int
	clients  map[int]*lrClient
	closed   bool
	recorder metrics.Recorder
	logger   *slog.Logger
}

type lrClient struct {
	id   int
	ch   chan Event
	done chan struct{}
}

// NewHub creates a hub. Nil arguments fall back to NoopRecorder and slog.Default.
func NewHub(recorder metrics.Recorder, logger *slog.Logger) *Hub {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{clients: map[int]*lrClient{}, recorder: recorder, logger: logger}
}

// ServeHTTP implements the SSE endpoint at /livereload
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	client := &lrClient{ch: make(chan Event, 8), done: make(chan struct{})}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		http.Error(w, "livereload shutting down", http.StatusServiceUnavailable)
		return
	}
	client.id = h.nextID
	h.nextID++
	h.clients[client.id] = client
	n := len(h.clients)
	h.mu.Unlock()
	h.recorder.SetLiveReloadClients(n)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(": connected\n\n"); err != nil {
		h.removeClient(client.id)
		return
	}
	if err := bw.Flush(); err == nil {
		flusher.Flush()
	}

	hb := time.NewTicker(30 * time.Second)
	defer hb.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			h.removeClient(client.id)
			return
		case <-client.done:
			return
		case <-hb.C:
			if _, err := bw.WriteString(": ping\n\n"); err == nil {
				_ = bw.Flush()
				flusher.Flush()
			}
		case ev := <-client.ch:
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := bw.WriteString("data: " + string(data) + "\n\n"); err == nil {
				_ = bw.Flush()
				flusher.Flush()
			} else {
				h.logger.Debug("livereload write", logfields.Error(err))
			}
		}
	}
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
		h.recorder.SetLiveReloadClients(n)
	}
}

// Broadcast sends ev to every client. Clients whose buffers are full are dropped.
func (h *Hub) Broadcast(ev Event) {
	if ev.Hash == "" {
		ev.Hash = uuid.NewString()
	}
	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return
	}
	snapshot := make([]*lrClient, 0, len(h.clients))
	for _, c := range h.clients {
		snapshot = append(snapshot, c)
	}
	h.mu.RUnlock()

	dropped := 0
	for _, c := range snapshot {
		select {
		case c.ch <- ev:
		default:
			dropped++
			h.removeClient(c.id)
		}
	}
	h.recorder.IncLiveReloadBroadcast(string(ev.Kind))
	h.logger.Debug("livereload broadcast",
		logfields.Event(string(ev.Kind)), logfields.Path(ev.Path),
		slog.Int("clients", len(snapshot)), slog.Int("dropped", dropped))
}

// Reload asks every client to reload the page.
func (h *Hub) Reload() { h.Broadcast(Event{Kind: KindReload}) }

// NotifyCSS asks every client to swap the given stylesheets without a reload.
func (h *Hub) NotifyCSS(urls []string) {
	for _, u := range urls {
		h.Broadcast(Event{Kind: KindCSS, Path: u})
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown closes all clients and prevents future broadcasts.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := h.clients
	h.clients = map[int]*lrClient{}
	h.mu.Unlock()
	for _, c := range clients {
		close(c.done)
	}
	h.recorder.SetLiveReloadClients(0)
}

// clientScript connects to /livereload on the serving origin. CSS events
// refetch matching stylesheets; anything else reloads the page.
const clientScript = `(() => {
  if (window.__ASSETFLOW_LR__) return;
  window.__ASSETFLOW_LR__ = true;
  function swapCSS(path, hash) {
    let found = false;
    document.querySelectorAll('link[rel="stylesheet"]').forEach((link) => {
      const url = new URL(link.href, location.href);
      if (url.origin !== location.origin || url.pathname !== path) return;
      url.searchParams.set('lr', hash);
      link.href = url.toString();
      found = true;
    });
    return found;
  }
  function connect() {
    const es = new EventSource('/livereload');
    es.onmessage = (e) => {
      try {
        const p = JSON.parse(e.data);
        if (p.kind === 'css' && swapCSS(p.path, p.hash)) return;
        if (p.kind === 'css') return;
        console.log('[assetflow] change detected, reloading');
        location.reload();
      } catch (_) {}
    };
    es.onerror = () => { console.warn('[assetflow] livereload error - retrying'); es.close(); setTimeout(connect, 2000); };
  }
  connect();
})();
`
