package types

import "encoding/json"

// PublishRequest is the body of POST /publish.
type PublishRequest struct {
	// Required topic name.
	// example: orders
	Topic string `json:"topic" example:"orders"`
	// Optional application payload. Omit it to publish a signal-only
	// notification: subscribers are told something changed and query
	// /topics/{topic}/latest themselves.
	Payload json.RawMessage `json:"payload,omitempty" swaggertype:"object"`
}

// PublishResponse is returned by POST /publish.
type PublishResponse struct {
	// Topic the event was published to.
	// example: orders
	Topic string `json:"topic" example:"orders"`
	// Sequence number assigned to the event.
	// example: 42
	Seq uint64 `json:"seq" example:"42"`
	// Number of subscribers the event was delivered to.
	// example: 3
	Delivered int `json:"delivered" example:"3"`
}

// TopicsResponse wraps the list of topics returned by GET /topics.
type TopicsResponse struct {
	// Known topics with their subscriber counts.
	Topics []Topic `json:"topics"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// TopicStatus summarizes one topic for GET /status.
type TopicStatus struct {
	// Topic name.
	// example: orders
	Name string `json:"name" example:"orders"`
	// Current subscriber count.
	// example: 3
	Subscribers int `json:"subscribers" example:"3"`
	// Events published to this topic since startup.
	// example: 128
	Published uint64 `json:"published" example:"128"`
	// Listener deliveries performed for this topic since startup.
	// example: 384
	Delivered uint64 `json:"delivered" example:"384"`
	// Sequence number of the latest event, 0 when none yet.
	// example: 42
	LatestSeq uint64 `json:"latest_seq" example:"42"`
	// Events currently retained in the topic history.
	// example: 16
	HistoryLen int `json:"history_len" example:"16"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Per-topic counters.
	Topics []TopicStatus `json:"topics"`
	// Total events published across all topics.
	// example: 512
	PublishedTotal uint64 `json:"published_total" example:"512"`
	// Total listener deliveries across all topics.
	// example: 1536
	DeliveredTotal uint64 `json:"delivered_total" example:"1536"`
	// Deliveries abandoned because the listener panicked.
	// example: 0
	DroppedTotal uint64 `json:"dropped_total" example:"0"`
	// Uptime of the broker in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
