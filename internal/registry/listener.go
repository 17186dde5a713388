package registry

import "notifyd/pkg/types"

// Listener receives notifications. Implementations should be lightweight and
// return quickly; Notify must not block on I/O. Any type with a Notify method
// qualifies, no embedding or base type required.
//
// Unregistration matches by interface identity, so listeners that want to be
// removable should be registered as pointers (or other comparable values).
type Listener interface {
	Notify(types.Event)
}

// ListenerFunc adapts a plain function to the Listener interface.
//
// Func values are not comparable, so a ListenerFunc registered by value can
// never be unregistered. Register a pointer to it when removal matters:
//
//	f := registry.ListenerFunc(func(ev types.Event) { ... })
//	r.Register(&f)
//	r.Unregister(&f)
type ListenerFunc func(types.Event)

// Notify calls f(ev).
func (f ListenerFunc) Notify(ev types.Event) { f(ev) }
