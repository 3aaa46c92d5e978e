package sqlite

import "sync"

// Snapshot is the latest state of one record, pushed to watchers after
// a committed write. Not a delta: consumers replace whatever they hold.
type Snapshot struct {
	Collection string
	ID         string
	Record     any
}

// hub fans committed-write snapshots out to per-collection watchers.
// Delivery is best-effort: a watcher that falls behind loses
// intermediate snapshots, never the stream.
type hub struct {
	mu     sync.Mutex
	closed bool
	subs   map[string]map[int]chan Snapshot
	nextID int
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[int]chan Snapshot)}
}

func (h *hub) subscribe(collection string) (<-chan Snapshot, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Snapshot, 16)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	if h.subs[collection] == nil {
		h.subs[collection] = make(map[int]chan Snapshot)
	}
	h.subs[collection][id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[collection][id]; ok {
			delete(h.subs[collection], id)
			close(sub)
		}
	}
	return ch, cancel
}

func (h *hub) publish(collection, id string, record any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	snap := Snapshot{Collection: collection, ID: id, Record: record}
	for _, ch := range h.subs[collection] {
		select {
		case ch <- snap:
		default: // slow watcher — drop, next write carries fresher state
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, subs := range h.subs {
		for _, ch := range subs {
			close(ch)
		}
	}
	h.subs = nil
}
