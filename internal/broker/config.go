package broker

// Package defaults; applied by NewWithConfig when the corresponding
// BrokerConfig field is zero.
const (
	defaultMaxSubscribers = 1024
	defaultHistorySize    = 16
)

// BrokerConfig carries construction-time options. Zero values mean
// "unspecified" and are replaced with package defaults.
type BrokerConfig struct {
	// Topics to create up front. Independent of StrictTopics.
	Topics []string
	// StrictTopics rejects publishes and subscriptions to undeclared topics
	// instead of creating them on first use.
	StrictTopics bool
	// MaxSubscribers caps registrations per topic (0 = default).
	MaxSubscribers int
	// HistorySize bounds the retained per-topic event history (0 = default,
	// negative disables retention entirely).
	HistorySize int
}

func (c *BrokerConfig) applyDefaults() {
	if c.MaxSubscribers <= 0 {
		c.MaxSubscribers = defaultMaxSubscribers
	}
	if c.HistorySize == 0 {
		c.HistorySize = defaultHistorySize
	}
	if c.HistorySize < 0 {
		c.HistorySize = 0
	}
}
