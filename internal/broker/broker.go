package broker

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"notifyd/internal/registry"
	"notifyd/pkg/types"
)

// Broker owns one registry per named topic and dispatches published events
// to the topic's listeners. It is a passive shared resource: it spawns no
// goroutines and all methods are safe for concurrent use.
type Broker struct {
	mu     sync.RWMutex
	topics map[string]*topic
	cfg    BrokerConfig
	log    *zerolog.Logger
	events EventPublisher
	start  time.Time
}

func New(topics []string, strict bool, maxSubscribers, historySize int) *Broker {
	// Delegate to NewWithConfig to centralize defaults and option parsing
	return NewWithConfig(BrokerConfig{
		Topics:         topics,
		StrictTopics:   strict,
		MaxSubscribers: maxSubscribers,
		HistorySize:    historySize,
	})
}

func NewWithConfig(cfg BrokerConfig) *Broker {
	cfg.applyDefaults()
	b := &Broker{
		topics: make(map[string]*topic),
		cfg:    cfg,
		events: noopPublisher{},
		start:  time.Now(),
	}
	for _, name := range cfg.Topics {
		if name == "" {
			continue
		}
		if _, ok := b.topics[name]; !ok {
			b.topics[name] = newTopic(name)
		}
	}
	return b
}

// SetLogger installs a structured logger, also handed to topic registries so
// listener panics are reported. Call before the broker is shared.
func (b *Broker) SetLogger(l zerolog.Logger) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log = &l
	for _, t := range b.topics {
		t.reg.SetLogger(l)
	}
}

// SetEventPublisher installs a lifecycle event sink. Call before the broker
// is shared.
func (b *Broker) SetEventPublisher(p EventPublisher) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p == nil {
		p = noopPublisher{}
	}
	b.events = p
}

// Publish stamps and delivers an event on the named topic. A nil payload
// publishes a signal-only event (pull model): subscribers are told something
// changed and query Latest themselves. Returns the stamped event and the
// number of listeners it reached.
func (b *Broker) Publish(name string, payload json.RawMessage) (types.Event, int, error) {
	t, err := b.topic(name, true)
	if err != nil {
		return types.Event{}, 0, err
	}
	ev := t.stamp(types.Event{Payload: payload}, time.Now().Unix(), b.cfg.HistorySize)
	// Deliver outside the topic lock so listeners can call Latest/History.
	delivered, dropped := t.reg.NotifyAll(ev)
	t.recordDelivery(delivered, dropped)

	eventsPublishedTotal.WithLabelValues(name).Inc()
	deliveriesTotal.WithLabelValues(name).Add(float64(delivered))
	if dropped > 0 {
		droppedDeliveriesTotal.WithLabelValues(name).Add(float64(dropped))
		if b.log != nil {
			b.log.Warn().Str("topic", name).Uint64("seq", ev.Seq).Int("dropped", dropped).Msg("listener panics during delivery")
		}
	}
	b.publisher().Publish(Event{Name: "publish", Topic: name, Fields: map[string]any{
		"seq":       ev.Seq,
		"delivered": delivered,
	}})
	return ev, delivered, nil
}

// Subscribe registers l on the named topic, enforcing the per-topic
// subscriber cap.
func (b *Broker) Subscribe(name string, l registry.Listener) error {
	t, err := b.topic(name, true)
	if err != nil {
		return err
	}
	t.mu.Lock()
	if t.reg.Len() >= b.cfg.MaxSubscribers {
		t.mu.Unlock()
		return tooManySubscribersError{topic: name, max: b.cfg.MaxSubscribers}
	}
	err = t.reg.Register(l)
	t.mu.Unlock()
	if err != nil {
		return err
	}
	subscribersGauge.WithLabelValues(name).Inc()
	b.publisher().Publish(Event{Name: "subscribe", Topic: name})
	return nil
}

// Unsubscribe removes one registration of l from the named topic. Unknown
// topics and unknown listeners are no-ops.
func (b *Broker) Unsubscribe(name string, l registry.Listener) {
	t, err := b.topic(name, false)
	if err != nil {
		return
	}
	if t.reg.Unregister(l) {
		subscribersGauge.WithLabelValues(name).Dec()
		b.publisher().Publish(Event{Name: "unsubscribe", Topic: name})
	}
}

// Latest returns the most recent event on the topic; ok is false when the
// topic has seen no publishes yet. This is the pull-model query surface.
func (b *Broker) Latest(name string) (types.Event, bool, error) {
	t, err := b.topic(name, false)
	if err != nil {
		return types.Event{}, false, err
	}
	ev, ok := t.latestEvent()
	return ev, ok, nil
}

// History returns the retained events on the topic, oldest first.
func (b *Broker) History(name string) ([]types.Event, error) {
	t, err := b.topic(name, false)
	if err != nil {
		return nil, err
	}
	return t.snapshotHistory(), nil
}

// Topics lists known topics sorted by name.
func (b *Broker) Topics() []types.Topic {
	b.mu.RLock()
	ts := make([]*topic, 0, len(b.topics))
	for _, t := range b.topics {
		ts = append(ts, t)
	}
	b.mu.RUnlock()
	sort.Slice(ts, func(i, j int) bool { return ts[i].name < ts[j].name })
	out := make([]types.Topic, 0, len(ts))
	for _, t := range ts {
		st := t.status()
		out = append(out, types.Topic{Name: st.Name, Subscribers: st.Subscribers, Published: st.Published})
	}
	return out
}

// Status reports per-topic and aggregate counters.
func (b *Broker) Status() types.StatusResponse {
	b.mu.RLock()
	ts := make([]*topic, 0, len(b.topics))
	for _, t := range b.topics {
		ts = append(ts, t)
	}
	start := b.start
	b.mu.RUnlock()
	sort.Slice(ts, func(i, j int) bool { return ts[i].name < ts[j].name })

	resp := types.StatusResponse{
		Topics:         make([]types.TopicStatus, 0, len(ts)),
		UptimeSeconds:  int64(time.Since(start).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
	}
	for _, t := range ts {
		st := t.status()
		resp.Topics = append(resp.Topics, st)
		resp.PublishedTotal += st.Published
		resp.DeliveredTotal += st.Delivered
		resp.DroppedTotal += t.droppedCount()
	}
	return resp
}

// Ready reports whether the broker accepts traffic. The broker has no warmup
// phase, so it is ready as soon as it is constructed.
func (b *Broker) Ready() bool { return true }

func (b *Broker) publisher() EventPublisher {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.events
}

// topic returns the named topic, creating it on first use unless
// StrictTopics is set or create is false.
func (b *Broker) topic(name string, create bool) (*topic, error) {
	b.mu.RLock()
	t := b.topics[name]
	b.mu.RUnlock()
	if t != nil {
		return t, nil
	}
	if !create || b.cfg.StrictTopics {
		return nil, ErrTopicNotFound(name)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if t = b.topics[name]; t != nil {
		return t, nil
	}
	t = newTopic(name)
	if b.log != nil {
		t.reg.SetLogger(*b.log)
	}
	b.topics[name] = t
	b.events.Publish(Event{Name: "topic_created", Topic: name})
	return t, nil
}
