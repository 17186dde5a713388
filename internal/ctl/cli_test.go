package ctl

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"notifyd/internal/broker"
	"notifyd/internal/httpapi"
)

func TestCommandTree(t *testing.T) {
	root := BuildRootCmd()
	for _, name := range []string{"topics", "status", "publish", "latest", "subscribe"} {
		found := false
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("command %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("addr") == nil {
		t.Fatal("--addr flag missing")
	}
	if root.PersistentFlags().Lookup("log-level") == nil {
		t.Fatal("--log-level flag missing")
	}
}

func newTestServer(t *testing.T) (*broker.Broker, *Config, func()) {
	t.Helper()
	b := broker.NewWithConfig(broker.BrokerConfig{})
	srv := httptest.NewServer(httpapi.NewMux(b))
	cfg := &Config{Addr: srv.URL, LogLvl: "error"}
	return b, cfg, srv.Close
}

func TestPublishTopicsLatestRoundTrip(t *testing.T) {
	_, cfg, done := newTestServer(t)
	defer done()

	var out bytes.Buffer
	if err := fnPublish(cfg, "orders", `{"id":1}`, &out); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !strings.Contains(out.String(), "seq=1") || !strings.Contains(out.String(), "topic=orders") {
		t.Fatalf("publish output %q", out.String())
	}

	out.Reset()
	if err := fnTopics(cfg, &out); err != nil {
		t.Fatalf("topics: %v", err)
	}
	if !strings.Contains(out.String(), "orders") {
		t.Fatalf("topics output %q", out.String())
	}

	out.Reset()
	if err := fnLatest(cfg, "orders", &out); err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !strings.Contains(out.String(), `"seq": 1`) {
		t.Fatalf("latest output %q", out.String())
	}

	out.Reset()
	if err := fnStatus(cfg, &out); err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out.String(), `"published_total": 1`) {
		t.Fatalf("status output %q", out.String())
	}
}

func TestPublishNonJSONPayloadQuoted(t *testing.T) {
	_, cfg, done := newTestServer(t)
	defer done()

	var out bytes.Buffer
	if err := fnPublish(cfg, "t", "plain text", &out); err != nil {
		t.Fatalf("publish: %v", err)
	}
	out.Reset()
	if err := fnLatest(cfg, "t", &out); err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !strings.Contains(out.String(), `"plain text"`) {
		t.Fatalf("payload not quoted: %q", out.String())
	}
}

func TestLatestNoEventsYet(t *testing.T) {
	b, cfg, done := newTestServer(t)
	defer done()

	// Create the topic without publishing by subscribing briefly.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	var stream bytes.Buffer
	go func() { errCh <- fnSubscribe(ctx, cfg, "empty", &stream) }()

	deadline := time.Now().Add(5 * time.Second)
	for subscriberCount(b, "empty") != 1 {
		if time.Now().After(deadline) {
			t.Fatal("subscription never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	var out bytes.Buffer
	if err := fnLatest(cfg, "empty", &out); err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !strings.Contains(out.String(), "no events yet") {
		t.Fatalf("latest output %q", out.String())
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("subscribe: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("subscribe did not stop on cancel")
	}
}

func TestServerErrorDecoded(t *testing.T) {
	b := broker.NewWithConfig(broker.BrokerConfig{StrictTopics: true})
	srv := httptest.NewServer(httpapi.NewMux(b))
	defer srv.Close()
	cfg := &Config{Addr: srv.URL, LogLvl: "error"}

	var out bytes.Buffer
	err := fnPublish(cfg, "undeclared", "", &out)
	if err == nil || !strings.Contains(err.Error(), "topic not found") {
		t.Fatalf("err=%v, want topic not found", err)
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
