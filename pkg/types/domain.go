package types

import "encoding/json"

// Topic describes a named notification channel on the broker.
type Topic struct {
	// Stable topic name.
	// example: orders
	Name string `json:"name" example:"orders"`
	// Number of currently registered subscribers.
	// example: 3
	Subscribers int `json:"subscribers" example:"3"`
	// Total events published to this topic since startup.
	// example: 128
	Published uint64 `json:"published" example:"128"`
}

// Event is the immutable unit of delivery. The payload is application-defined
// and carried opaquely as raw JSON.
type Event struct {
	// Topic the event was published to.
	// example: orders
	Topic string `json:"topic" example:"orders"`
	// Per-topic sequence number, starting at 1.
	// example: 42
	Seq uint64 `json:"seq" example:"42"`
	// Publish time in unix seconds.
	// example: 1700000000
	TimeUnix int64 `json:"time_unix" example:"1700000000"`
	// Application payload; absent for signal-only notifications.
	Payload json.RawMessage `json:"payload,omitempty" swaggertype:"object"`
}
