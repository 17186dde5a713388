// Package registry implements an ordered listener registry with snapshot
// delivery. It is the primitive the broker builds topics on: listeners are
// registered in order, duplicates are allowed, and every notification is
// delivered against a snapshot of the listener list taken when delivery
// starts, so listeners may register or unregister (including themselves)
// mid-delivery without skips, double deliveries, or races.
//
// Two delivery models are supported:
//
//   - Push: NotifyAll carries the event, payload included, to every listener.
//   - Pull: Signal delivers a payload-less event; listeners that need data
//     query the registry owner through a reference retained at registration
//     time (over HTTP, GET /topics/{topic}/latest).
//
// The registry is a passive shared resource. It spawns no goroutines and
// never blocks beyond its own mutex; callers pick their own threading model.
package registry
