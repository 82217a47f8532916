// Package sse implements a Server-Sent Events broker that streams session
// snapshots and catalog changes to clients.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types.
const (
	EventSnapshot       = "session.snapshot"
	EventSessionExpired = "session.expired"
	EventCatalogUpdated = "catalog.updated"
)

// Event represents an SSE event to deliver. An empty Topic broadcasts to
// every subscriber; otherwise only subscribers of that topic receive it.
type Event struct {
	Topic string
	Type  string
	Data  any
}

type subscription struct {
	topic string
	ch    chan []byte
}

type catalogEventReq struct {
	version string
}

// Broker manages SSE client connections and delivers events.
//
// A single internal event loop owns mutable state (subscribers and the
// catalog throttle timestamp). Public methods talk to the loop through
// channels, so no mutexes are required.
type Broker struct {
	catalogMin time.Duration

	subscribeCh   chan subscription
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	catalogCh     chan catalogEventReq
	countReqCh    chan countReq

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

type countReq struct {
	topic string
	resp  chan int
}

// NewBroker creates a broker. catalogThrottle is the minimum interval
// between two catalog.updated broadcasts.
func NewBroker(catalogThrottle time.Duration) *Broker {
	if catalogThrottle <= 0 {
		catalogThrottle = 2 * time.Second
	}

	b := &Broker{
		catalogMin:    catalogThrottle,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		catalogCh:     make(chan catalogEventReq, 16),
		countReqCh:    make(chan countReq),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func encode(event Event) ([]byte, bool) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, false
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)), true
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]string)
	var lastCatalog time.Time

	deliver := func(event Event) {
		raw, ok := encode(event)
		if !ok {
			return
		}
		for ch, topic := range clients {
			if event.Topic != "" && topic != event.Topic {
				continue
			}
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subscribeCh:
			clients[sub.ch] = sub.topic

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			deliver(event)

		case req := <-b.catalogCh:
			now := time.Now()
			if now.Sub(lastCatalog) >= b.catalogMin {
				lastCatalog = now
				deliver(Event{Type: EventCatalogUpdated, Data: map[string]string{"version": req.version}})
			}

		case req := <-b.countReqCh:
			n := 0
			for _, topic := range clients {
				if req.topic == "" || topic == req.topic {
					n++
				}
			}
			req.resp <- n
		}
	}
}

// Close gracefully stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client for topic and returns its channel. An empty topic
// receives only broadcast events.
func (b *Broker) Subscribe(topic string) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscription{topic: topic, ch: ch}:
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
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of subscribers of topic, or of all topics
// when topic is empty.
func (b *Broker) ClientCount(topic string) int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- countReq{topic: topic, resp: resp}:
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

// Publish sends an event to its topic's subscribers.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishSnapshot sends a session snapshot to that session's subscribers.
func (b *Broker) PublishSnapshot(sessionID string, view any) {
	b.Publish(Event{Topic: sessionID, Type: EventSnapshot, Data: view})
}

// PublishExpired tells a session's subscribers it no longer exists.
func (b *Broker) PublishExpired(sessionID string) {
	b.Publish(Event{Topic: sessionID, Type: EventSessionExpired, Data: map[string]string{"id": sessionID}})
}

// PublishCatalogEvent broadcasts a throttled catalog.updated event.
func (b *Broker) PublishCatalogEvent(version string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.catalogCh <- catalogEventReq{version: version}:
	case <-b.stopped:
	}
}

// Stream serves an SSE response for topic until the client disconnects or
// the broker closes. initial, if non-nil, is written first.
func (b *Broker) Stream(w http.ResponseWriter, r *http.Request, topic string, initial *Event) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)

	ch := b.Subscribe(topic)
	defer b.Unsubscribe(ch)

	if initial != nil {
		if raw, ok := encode(*initial); ok {
			_, _ = w.Write(raw)
		}
	}
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}

// ServeHTTP streams broadcast events only (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.Stream(w, r, "", nil)
}
