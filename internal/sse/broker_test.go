package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func recv(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg := <-ch:
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
		return ""
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount("") != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe("s1")
	if b.ClientCount("") != 1 {
		t.Fatalf("expected 1 client")
	}
	if b.ClientCount("s1") != 1 || b.ClientCount("s2") != 0 {
		t.Fatalf("topic counts wrong")
	}
	b.Unsubscribe(ch)
	if b.ClientCount("") != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishTopicIsolation(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	a := b.Subscribe("a")
	defer b.Unsubscribe(a)
	other := b.Subscribe("b")
	defer b.Unsubscribe(other)

	b.PublishSnapshot("a", map[string]string{"state": "correct"})

	select {
	case msg := <-a:
		s := string(msg)
		if !strings.Contains(s, "event: "+EventSnapshot) {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"state":"correct"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}

	// Delivery to all matching clients happens in one loop pass.
	if got := drain(other); len(got) != 0 {
		t.Errorf("topic b received %v", got)
	}
}

func TestBroadcastReachesAllTopics(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	a := b.Subscribe("a")
	defer b.Unsubscribe(a)
	global := b.Subscribe("")
	defer b.Unsubscribe(global)

	b.Publish(Event{Type: "ping", Data: map[string]int{"n": 1}})

	if s := recv(t, a); !strings.Contains(s, "event: ping") {
		t.Errorf("topic a got %q", s)
	}
	if s := recv(t, global); !strings.Contains(s, "event: ping") {
		t.Errorf("global got %q", s)
	}
}

func TestCatalogEventThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe("")
	defer b.Unsubscribe(ch)

	b.PublishCatalogEvent("v1")
	b.PublishCatalogEvent("v2")

	if s := recv(t, ch); !strings.Contains(s, `"version":"v1"`) {
		t.Errorf("unexpected payload %q", s)
	}
	time.Sleep(50 * time.Millisecond)
	if got := drain(ch); len(got) != 0 {
		t.Errorf("extra catalog events %v, want throttled", got)
	}
}

func TestStreamWritesInitialAndEvents(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/s1/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.Stream(w, req, "s1", &Event{Type: EventSnapshot, Data: map[string]string{"state": "selecting"}})
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for b.ClientCount("s1") != 1 {
		if time.Now().After(deadline) {
			t.Fatal("handler never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	b.PublishExpired("s1")
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, `"state":"selecting"`) {
		t.Errorf("handler output missing initial snapshot: %q", body)
	}
	if !strings.Contains(body, "event: "+EventSessionExpired) {
		t.Errorf("handler output missing expiry: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount("") != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe("s")
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then some; must not block.
	for i := 0; i < 70; i++ {
		b.PublishSnapshot("s", map[string]int{"i": i})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe("s")
	if b.ClientCount("") != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount("") != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Safe no-ops after close.
	b.PublishSnapshot("s", nil)
	b.PublishCatalogEvent("v")
	b.Close()
	late := b.Subscribe("s")
	if _, ok := <-late; ok {
		t.Fatal("subscribe after close should yield closed channel")
	}
}
