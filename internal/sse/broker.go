// Package sse streams menu tree rebuilds to browser clients as Server-Sent
// Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event names written on the stream.
const (
	// EventHello is sent once to each new client with the latest rebuild.
	EventHello = "hello"
	// EventTreeChanged is sent for every rebuild with the changed paths.
	EventTreeChanged = "tree.changed"
	// EventTreeUpdated carries only the node count and is throttled.
	EventTreeUpdated = "tree.updated"
)

// Rebuild describes one menu tree rebuild. Generation increases by one per
// rebuild and doubles as the SSE event id.
type Rebuild struct {
	Generation uint64   `json:"generation"`
	Paths      []string `json:"paths,omitempty"`
	Nodes      int      `json:"nodes"`
}

// Option configures a Broker.
type Option func(*Broker)

// WithThrottle sets the minimum interval between tree.updated events.
func WithThrottle(d time.Duration) Option {
	return func(b *Broker) {
		if d > 0 {
			b.throttle = d
		}
	}
}

// WithKeepAlive sets the interval of comment frames written to idle streams.
// Zero disables them.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) { b.keepAlive = d }
}

// WithClientBuffer sets the per-client frame buffer. Frames for a client
// whose buffer is full are dropped.
func WithClientBuffer(n int) Option {
	return func(b *Broker) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// Broker fans rebuild notices out to connected clients.
//
// One goroutine owns the client set and the last rebuild; every public
// method talks to it over channels.
type Broker struct {
	throttle  time.Duration
	keepAlive time.Duration
	buffer    int

	join    chan chan []byte
	leave   chan chan []byte
	rebuild chan Rebuild
	count   chan chan int

	stop    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker. Defaults: tree.updated at most every 2s,
// keep-alive every 15s, 64 buffered frames per client.
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		throttle:  2 * time.Second,
		keepAlive: 15 * time.Second,
		buffer:    64,
		join:      make(chan chan []byte),
		leave:     make(chan chan []byte),
		rebuild:   make(chan Rebuild, 64),
		count:     make(chan chan int),
		stop:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.loop()
	return b
}

// frame encodes one SSE message. Unmarshalable data yields nil.
func frame(id uint64, event string, data any) []byte {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	return fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", id, event, payload)
}

func (b *Broker) loop() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var last Rebuild
	var lastSummary time.Time

	send := func(ch chan []byte, msg []byte) {
		select {
		case ch <- msg:
		default:
		}
	}
	fanout := func(msg []byte) {
		for ch := range clients {
			send(ch, msg)
		}
	}

	for {
		select {
		case <-b.stop:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.join:
			clients[ch] = struct{}{}
			if last.Generation > 0 {
				send(ch, frame(last.Generation, EventHello, Rebuild{Generation: last.Generation, Nodes: last.Nodes}))
			}

		case ch := <-b.leave:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case r := <-b.rebuild:
			r.Generation = last.Generation + 1
			last = r
			fanout(frame(r.Generation, EventTreeChanged, r))
			if now := time.Now(); now.Sub(lastSummary) >= b.throttle {
				lastSummary = now
				fanout(frame(r.Generation, EventTreeUpdated, map[string]int{"nodes": r.Nodes}))
			}

		case resp := <-b.count:
			resp <- len(clients)
		}
	}
}

// Close stops the broker and closes every client channel. It is safe to call
// more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stop)
	}
	<-b.stopped
}

// Subscribe registers a client. The returned channel is closed on
// Unsubscribe or Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, b.buffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.join <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.leave <- ch:
	case <-b.stopped:
	}
}

// Clients returns the number of connected clients.
func (b *Broker) Clients() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.count <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// PublishTreeEvent records a rebuild of nodes menus caused by changes to the
// given root-relative paths.
func (b *Broker) PublishTreeEvent(changed []string, nodes int) {
	if b.closed.Load() {
		return
	}
	select {
	case b.rebuild <- Rebuild{Paths: changed, Nodes: nodes}:
	case <-b.stopped:
	}
}

// ServeHTTP streams events to one client until it disconnects.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	var tick <-chan time.Time
	if b.keepAlive > 0 {
		t := time.NewTicker(b.keepAlive)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
