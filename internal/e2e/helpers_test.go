package e2e

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"notifyd/internal/broker"
	"notifyd/internal/config"
	"notifyd/internal/httpapi"
)

// writeConfig drops a config file into a temp dir and returns its path.
func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

// newServerFromConfig wires config -> broker -> mux the way cmd/notifyd does.
func newServerFromConfig(t *testing.T, cfg config.Config) (*httptest.Server, *broker.Broker) {
	t.Helper()
	b := broker.NewWithConfig(broker.BrokerConfig{
		Topics:         cfg.Topics,
		StrictTopics:   cfg.StrictTopics,
		MaxSubscribers: cfg.MaxSubscribers,
		HistorySize:    cfg.HistorySize,
	})
	srv := httptest.NewServer(httpapi.NewMux(b))
	t.Cleanup(srv.Close)
	return srv, b
}

// openStream subscribes to topic and returns a channel of SSE data lines.
func openStream(t *testing.T, srv *httptest.Server, topic string) (<-chan string, func()) {
	t.Helper()
	resp, err := http.Get(srv.URL + "/subscribe?topic=" + topic)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("subscribe status=%d", resp.StatusCode)
	}
	lines := make(chan string, 16)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			if strings.HasPrefix(sc.Text(), "data: ") {
				lines <- strings.TrimPrefix(sc.Text(), "data: ")
			}
		}
	}()
	return lines, func() { resp.Body.Close() }
}

// waitSubscribers polls until topic has n subscribers or the deadline passes.
func waitSubscribers(t *testing.T, b *broker.Broker, topic string, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		count := 0
		for _, tp := range b.Topics() {
			if tp.Name == topic {
				count = tp.Subscribers
			}
		}
		if count == n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("topic %s never reached %d subscribers", topic, n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
