package broker

import (
	"sync"

	"notifyd/internal/registry"
	"notifyd/pkg/types"
)

// topic owns one registry plus the state the pull model queries: the latest
// event and a bounded history. Counters are guarded by mu; delivery happens
// outside mu so listeners may call back into Latest/History.
type topic struct {
	name string
	reg  *registry.Registry

	mu        sync.Mutex
	seq       uint64
	latest    *types.Event
	history   []types.Event
	published uint64
	delivered uint64
	dropped   uint64
}

func newTopic(name string) *topic {
	return &topic{name: name, reg: registry.New()}
}

// stamp assigns the next sequence number, records ev as latest, and appends
// it to the bounded history. Returns the stamped event.
func (t *topic) stamp(ev types.Event, now int64, historySize int) types.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	ev.Topic = t.name
	ev.Seq = t.seq
	ev.TimeUnix = now
	t.latest = &ev
	t.published++
	if historySize > 0 {
		t.history = append(t.history, ev)
		if len(t.history) > historySize {
			t.history = t.history[len(t.history)-historySize:]
		}
	}
	return ev
}

func (t *topic) droppedCount() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

func (t *topic) recordDelivery(delivered, dropped int) {
	t.mu.Lock()
	t.delivered += uint64(delivered)
	t.dropped += uint64(dropped)
	t.mu.Unlock()
}

// latestEvent returns the most recently published event, if any.
func (t *topic) latestEvent() (types.Event, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.latest == nil {
		return types.Event{}, false
	}
	return *t.latest, true
}

// snapshotHistory returns a copy of the retained events, oldest first.
func (t *topic) snapshotHistory() []types.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]types.Event, len(t.history))
	copy(out, t.history)
	return out
}

func (t *topic) status() types.TopicStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return types.TopicStatus{
		Name:        t.name,
		Subscribers: t.reg.Len(),
		Published:   t.published,
		Delivered:   t.delivered,
		LatestSeq:   t.seq,
		HistoryLen:  len(t.history),
	}
}
