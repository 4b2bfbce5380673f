// Package realtime provides a lightweight in-process publish/subscribe hub
// used to fan out ingestion events to multiple listeners (e.g. WebSocket
// sessions watching the extraction firehose).
//
// Delivery is best effort: a listener whose buffer is full drops events
// rather than backpressuring ingestion. There is no persistence or replay.
package realtime

import (
	"sync"
	"time"
)

// IngestEvent describes one document passing through the ingestion sink.
type IngestEvent struct {
	ID         string    `json:"id,omitempty"`
	Kind       string    `json:"tipo"`
	Title      string    `json:"titulo"`
	URL        string    `json:"url"`
	Source     string    `json:"fuente"`
	Status     string    `json:"estado"`
	Reason     string    `json:"motivo,omitempty"`
	OccurredAt time.Time `json:"fecha"`
}

// Envelope is the hub's wire envelope. Additional event types can be added
// later without changing the channel element type. Only Type == "ingest"
// is produced today.
type Envelope struct {
	Type   string      `json:"type"`
	Ingest IngestEvent `json:"ingest"`
}

// Hub is a concurrency-safe in-memory fan-out dispatcher. Each registered
// listener gets its own buffered channel; full buffers drop events for that
// listener only.
type Hub struct {
	mu        sync.RWMutex
	listeners map[uint64]chan Envelope
	nextID    uint64
	bufSize   int
}

// NewHub constructs a hub with the given per-listener buffer size.
// If bufSize <= 0, a default of 32 is used.
func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 32
	}
	return &Hub{
		listeners: make(map[uint64]chan Envelope),
		bufSize:   bufSize,
	}
}

// Register adds a listener and returns its id and receive channel.
// Callers must Unregister(id) to release resources.
func (h *Hub) Register() (uint64, <-chan Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan Envelope, h.bufSize)
	h.listeners[id] = ch
	return id, ch
}

// Unregister removes a listener and closes its channel. Unknown ids are
// ignored, so it is safe to call more than once.
func (h *Hub) Unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.listeners[id]; ok {
		delete(h.listeners, id)
		close(ch)
	}
}

// Publish delivers an ingest event to all listeners, best effort.
func (h *Hub) Publish(event IngestEvent) {
	env := Envelope{Type: "ingest", Ingest: event}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.listeners {
		select {
		case ch <- env:
		default:
			// Drop for slow listener.
		}
	}
}

// Size returns the current number of active listeners.
func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}
