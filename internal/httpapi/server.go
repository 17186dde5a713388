package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"notifyd/internal/broker"
	"notifyd/internal/registry"
	"notifyd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Topics() []types.Topic
	Status() types.StatusResponse
	Publish(topic string, payload json.RawMessage) (types.Event, int, error)
	Subscribe(topic string, l registry.Listener) error
	Unsubscribe(topic string, l registry.Listener)
	Latest(topic string) (types.Event, bool, error)
	History(topic string) ([]types.Event, error)
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}

	r.Get("/topics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(types.TopicsResponse{Topics: svc.Topics()}); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Post("/publish", func(w http.ResponseWriter, r *http.Request) {
		// Content-Type check
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		// Limit body size (configurable, default 1MiB)
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.PublishRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			// If exceeded size, MaxBytesReader may cause an error; still return 400 to avoid size leak details
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Topic) == "" {
			writeJSONError(w, http.StatusBadRequest, "topic is required")
			return
		}

		start := time.Now()
		lvl := requestLogLevel(r)
		ev, delivered, err := svc.Publish(req.Topic, req.Payload)
		if err != nil {
			status := publishErrorStatus(err)
			if status == http.StatusTooManyRequests {
				IncrementBackpressure("publish")
			}
			writeJSONError(w, status, err.Error())
			if lvl >= LevelInfo {
				logPublishEnd(r, status, req.Topic, start, err)
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(types.PublishResponse{
			Topic:     ev.Topic,
			Seq:       ev.Seq,
			Delivered: delivered,
		})
		if lvl >= LevelInfo {
			logPublishEnd(r, http.StatusOK, req.Topic, start, nil)
		}
	})

	r.Get("/topics/{topic}/latest", func(w http.ResponseWriter, r *http.Request) {
		topic := chi.URLParam(r, "topic")
		ev, ok, err := svc.Latest(topic)
		if err != nil {
			writeJSONError(w, publishErrorStatus(err), err.Error())
			return
		}
		if !ok {
			// Topic exists but nothing has been published yet.
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ev)
	})

	r.Get("/topics/{topic}/history", func(w http.ResponseWriter, r *http.Request) {
		topic := chi.URLParam(r, "topic")
		events, err := svc.History(topic)
		if err != nil {
			writeJSONError(w, publishErrorStatus(err), err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"topic": topic, "events": events})
	})

	r.Get("/subscribe", subscribeHandler(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("starting"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// publishErrorStatus maps well-known broker errors to HTTP status codes.
func publishErrorStatus(err error) int {
	switch {
	case broker.IsTopicNotFound(err):
		return http.StatusNotFound
	case broker.IsTooManySubscribers(err):
		return http.StatusTooManyRequests
	case broker.IsNilListener(err):
		return http.StatusBadRequest
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}
