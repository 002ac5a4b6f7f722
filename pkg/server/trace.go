package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/ceetaro/suitkaise/internal/dispatcher"
)

// TraceHub fans a stream of dispatcher.TraceEvent out to every connected
// /trace SSE client. It implements dispatcher.TraceSink, so it can be
// passed directly as suitkaise.Options.Sink for a verbose walk.
type TraceHub struct {
	mu   sync.Mutex
	subs map[chan dispatcher.TraceEvent]struct{}
}

// NewTraceHub returns an empty TraceHub with no subscribers.
func NewTraceHub() *TraceHub {
	return &TraceHub{subs: make(map[chan dispatcher.TraceEvent]struct{})}
}

// Trace implements dispatcher.TraceSink, broadcasting ev to every connected
// subscriber. Slow subscribers are dropped rather than blocking the walk.
func (h *TraceHub) Trace(ev dispatcher.TraceEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			delete(h.subs, ch)
			close(ch)
		}
	}
}

func (h *TraceHub) subscribe() chan dispatcher.TraceEvent {
	ch := make(chan dispatcher.TraceEvent, 64)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[ch] = struct{}{}
	return ch
}

func (h *TraceHub) unsubscribe(ch chan dispatcher.TraceEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Close disconnects every subscriber, used during server shutdown.
func (h *TraceHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}

// ServeHTTP streams trace events to the client as Server-Sent Events until
// the client disconnects.
func (h *TraceHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
