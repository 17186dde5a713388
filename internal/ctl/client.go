package ctl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"notifyd/pkg/types"
)

var unaryClient = &http.Client{Timeout: 10 * time.Second}

// baseURL normalizes the --addr value into an absolute http URL.
func baseURL(cfg *Config) string {
	a := strings.TrimRight(cfg.Addr, "/")
	if !strings.Contains(a, "://") {
		a = "http://" + a
	}
	return a
}

// decodeError extracts the server's JSON error payload, falling back to the
// raw body.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var er types.ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return fmt.Errorf("server: %s (status %d)", er.Error, resp.StatusCode)
	}
	return fmt.Errorf("server returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
}

func getJSON(cfg *Config, path string, out any) error {
	u := baseURL(cfg) + path
	debugf("GET %s", u)
	resp, err := unaryClient.Get(u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func fnTopics(cfg *Config, out io.Writer) error {
	var tr types.TopicsResponse
	if err := getJSON(cfg, "/topics", &tr); err != nil {
		return err
	}
	if len(tr.Topics) == 0 {
		fmt.Fprintln(out, "no topics")
		return nil
	}
	for _, t := range tr.Topics {
		fmt.Fprintf(out, "%s\tsubscribers=%d\tpublished=%d\n", t.Name, t.Subscribers, t.Published)
	}
	return nil
}

func fnStatus(cfg *Config, out io.Writer) error {
	var st types.StatusResponse
	if err := getJSON(cfg, "/status", &st); err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}

func fnPublish(cfg *Config, topic, payload string, out io.Writer) error {
	req := types.PublishRequest{Topic: topic}
	if payload != "" {
		if json.Valid([]byte(payload)) {
			req.Payload = json.RawMessage(payload)
		} else {
			// Not JSON; send it as a JSON string.
			quoted, err := json.Marshal(payload)
			if err != nil {
				return err
			}
			req.Payload = quoted
		}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	u := baseURL(cfg) + "/publish"
	debugf("POST %s", u)
	resp, err := unaryClient.Post(u, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	var pr types.PublishResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return err
	}
	fmt.Fprintf(out, "published seq=%d topic=%s delivered=%d\n", pr.Seq, pr.Topic, pr.Delivered)
	return nil
}

func fnLatest(cfg *Config, topic string, out io.Writer) error {
	u := baseURL(cfg) + "/topics/" + url.PathEscape(topic) + "/latest"
	debugf("GET %s", u)
	resp, err := unaryClient.Get(u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		fmt.Fprintln(out, "no events yet")
		return nil
	default:
		return decodeError(resp)
	}
	var ev types.Event
	if err := json.NewDecoder(resp.Body).Decode(&ev); err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(ev)
}

// fnSubscribe tails the SSE stream for topic until ctx is canceled or the
// server closes the connection. Each received event is printed as one JSON
// line.
func fnSubscribe(ctx context.Context, cfg *Config, topic string, out io.Writer) error {
	u := baseURL(cfg) + "/subscribe?topic=" + url.QueryEscape(topic)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	infof("subscribing to %s", topic)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		fmt.Fprintln(out, strings.TrimPrefix(line, "data: "))
	}
	if err := sc.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	if ctx.Err() != nil {
		warnf("subscription closed")
	}
	return nil
}
