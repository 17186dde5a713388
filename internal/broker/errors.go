package broker

import (
	"errors"
	"strconv"

	"notifyd/internal/registry"
)

// topicNotFoundError signals a publish/subscribe against an undeclared topic
// when StrictTopics is set; the HTTP layer maps it to 404.
type topicNotFoundError struct{ name string }

func (e topicNotFoundError) Error() string { return "topic not found: " + e.name }

// ErrTopicNotFound constructs a topicNotFoundError.
func ErrTopicNotFound(name string) error { return topicNotFoundError{name: name} }

// IsTopicNotFound reports whether err indicates an unknown topic.
func IsTopicNotFound(err error) bool {
	_, ok := err.(topicNotFoundError)
	return ok
}

// tooManySubscribersError signals the per-topic subscriber cap for 429 mapping.
type tooManySubscribersError struct {
	topic string
	max   int
}

func (e tooManySubscribersError) Error() string {
	return "too many subscribers on " + e.topic + " (max " + strconv.Itoa(e.max) + ")"
}

// IsTooManySubscribers reports whether err indicates backpressure (return 429).
func IsTooManySubscribers(err error) bool {
	_, ok := err.(tooManySubscribersError)
	return ok
}

// IsNilListener reports whether err came from registering a nil listener.
func IsNilListener(err error) bool { return errors.Is(err, registry.ErrNilListener) }
