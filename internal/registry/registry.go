package registry

import (
	"errors"
	"reflect"
	"sync"

	"github.com/rs/zerolog"

	"notifyd/pkg/types"
)

// ErrNilListener is returned by Register when the listener is nil.
var ErrNilListener = errors.New("registry: nil listener")

// Registry holds an ordered collection of listeners. The zero value is not
// usable; construct with New. All methods are safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	listeners []Listener
	log       *zerolog.Logger
}

func New() *Registry { return &Registry{} }

// SetLogger installs a structured logger used to report listener panics.
// If unset, panics are swallowed silently.
func (r *Registry) SetLogger(l zerolog.Logger) {
	r.mu.Lock()
	r.log = &l
	r.mu.Unlock()
}

// Register appends the listener. Duplicate registrations are allowed: the
// listener is invoked once per registration, and Unregister removes one
// registration at a time.
func (r *Registry) Register(l Listener) error {
	if l == nil {
		return ErrNilListener
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, l)
	r.mu.Unlock()
	return nil
}

// Unregister removes the most recently added registration matching l by
// interface identity and reports whether anything was removed. Unregistering
// a listener that was never registered is a no-op. Once Unregister returns,
// no notification triggered afterwards reaches the removed registration; a
// delivery already in flight may still complete against its snapshot.
func (r *Registry) Unregister(l Listener) bool {
	if l == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.listeners) - 1; i >= 0; i-- {
		if matches(r.listeners[i], l) {
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Len reports the current number of registrations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}

// NotifyAll delivers ev to every listener registered at the time of the call,
// in registration order. Delivery iterates a snapshot, so listeners may
// register or unregister (including themselves) during delivery without
// affecting the current round. A panicking listener is isolated: the panic is
// logged and delivery continues with the rest. Returns the number of
// successful deliveries and the number abandoned by panics.
func (r *Registry) NotifyAll(ev types.Event) (delivered, dropped int) {
	r.mu.Lock()
	snap := make([]Listener, len(r.listeners))
	copy(snap, r.listeners)
	log := r.log
	r.mu.Unlock()

	for _, l := range snap {
		if deliver(l, ev, log) {
			delivered++
		} else {
			dropped++
		}
	}
	return delivered, dropped
}

// Signal delivers a payload-less event: the pull variant. Listeners learn
// that something changed and query the registry owner for details through
// whatever reference they retained at registration time.
func (r *Registry) Signal() (delivered, dropped int) {
	return r.NotifyAll(types.Event{})
}

func deliver(l Listener, ev types.Event, log *zerolog.Logger) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			ok = false
			if log != nil {
				log.Error().
					Str("topic", ev.Topic).
					Uint64("seq", ev.Seq).
					Interface("panic", p).
					Msg("listener panicked; continuing with remaining listeners")
			}
		}
	}()
	l.Notify(ev)
	return true
}

// matches reports interface identity between two listeners. Listeners with
// incomparable dynamic types (funcs, slices) never match, so they simply
// cannot be unregistered rather than panicking the comparison.
func matches(a, b Listener) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
