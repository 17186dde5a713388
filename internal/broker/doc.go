// Package broker provides topic management and dispatch on top of the
// listener registry. It is structured into small files by concern:
//
//   - broker.go: core Broker type, constructor, topic lookup, status reporting.
//   - config.go: BrokerConfig and package defaults; NewWithConfig applies defaults.
//   - topic.go: per-topic state (registry, sequence, latest event, history).
//   - errors.go: error types and helpers (IsTopicNotFound, IsTooManySubscribers).
//   - events.go: EventPublisher hook for broker lifecycle events; memory
//     implementation for tests.
//   - metrics.go: prometheus collectors for publish/delivery counters.
//
// External packages should treat this package as the orchestration layer and
// use public methods only (New/NewWithConfig, Publish, Subscribe, Unsubscribe,
// Latest, History, Topics, Status, Ready). Internal types are subject to
// change.
package broker
