package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"notifyd/pkg/types"
)

// keepaliveInterval is how often an idle subscribe stream emits an SSE
// comment so intermediaries keep the connection open.
var keepaliveInterval = 15 * time.Second

// chanListener bridges a registry listener onto a buffered channel. A slow
// client whose buffer is full loses the event instead of stalling the
// publisher; the registry contract requires Notify to return promptly.
type chanListener struct {
	ch chan types.Event
}

func (l *chanListener) Notify(ev types.Event) {
	select {
	case l.ch <- ev:
	default:
	}
}

// subscribeHandler streams topic events as Server-Sent Events. The HTTP
// client becomes a registered listener for the lifetime of the request;
// disconnecting (or server shutdown) unregisters it.
func subscribeHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic := r.URL.Query().Get("topic")
		if strings.TrimSpace(topic) == "" {
			writeJSONError(w, http.StatusBadRequest, "topic is required")
			return
		}
		fl, ok := w.(http.Flusher)
		if !ok {
			writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		l := &chanListener{ch: make(chan types.Event, subscriberBuffer)}
		if err := svc.Subscribe(topic, l); err != nil {
			status := publishErrorStatus(err)
			if status == http.StatusTooManyRequests {
				IncrementBackpressure("subscribe")
			}
			writeJSONError(w, status, err.Error())
			return
		}
		defer svc.Unsubscribe(topic, l)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		fl.Flush()

		if zlog != nil {
			zlog.Debug().Str("topic", topic).Msg("subscribe stream open")
		}

		// Join server base context with request context so shutdown ends streams too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()

		ticker := time.NewTicker(keepaliveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				if zlog != nil {
					zlog.Debug().Str("topic", topic).Msg("subscribe stream closed")
				}
				return
			case ev := <-l.ch:
				data, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "event: notification\ndata: %s\n\n", data); err != nil {
					return
				}
				fl.Flush()
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}
				fl.Flush()
			}
		}
	}
}
