package httpapi

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"notifyd/internal/broker"
	"notifyd/pkg/types"
)

func TestSubscribeStreamReceivesPublishedEvent(t *testing.T) {
	b := broker.NewWithConfig(broker.BrokerConfig{})
	srv := httptest.NewServer(NewMux(b))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/subscribe?topic=orders")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Fatalf("content-type=%s", ct)
	}

	// Headers were flushed after registration, so the listener is live.
	if _, delivered, err := b.Publish("orders", json.RawMessage(`{"id":9}`)); err != nil || delivered != 1 {
		t.Fatalf("Publish delivered=%d err=%v", delivered, err)
	}

	type line struct {
		s   string
		err error
	}
	lines := make(chan line, 16)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- line{s: sc.Text()}
		}
		lines <- line{err: sc.Err()}
	}()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for event on stream")
		case l := <-lines:
			if l.err != nil {
				t.Fatalf("stream read: %v", l.err)
			}
			if !strings.HasPrefix(l.s, "data: ") {
				continue
			}
			var ev types.Event
			if err := json.Unmarshal([]byte(strings.TrimPrefix(l.s, "data: ")), &ev); err != nil {
				t.Fatalf("event json: %v", err)
			}
			if ev.Topic != "orders" || ev.Seq != 1 || string(ev.Payload) != `{"id":9}` {
				t.Fatalf("event=%+v", ev)
			}
			return
		}
	}
}

func TestSubscribeStreamUnregistersOnDisconnect(t *testing.T) {
	b := broker.NewWithConfig(broker.BrokerConfig{})
	srv := httptest.NewServer(NewMux(b))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/subscribe?topic=t")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if n := subscriberCount(b, "t"); n != 1 {
		t.Fatalf("subscribers=%d, want 1", n)
	}
	resp.Body.Close()

	deadline := time.Now().Add(5 * time.Second)
	for subscriberCount(b, "t") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("listener still registered after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func subscriberCount(b *broker.Broker, topic string) int {
	for _, tp := range b.Topics() {
		if tp.Name == topic {
			return tp.Subscribers
		}
	}
	return 0
}
