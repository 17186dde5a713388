package broker

import "github.com/prometheus/client_golang/prometheus"

var (
	eventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notifyd",
			Subsystem: "broker",
			Name:      "events_published_total",
			Help:      "Total events published per topic",
		},
		[]string{"topic"},
	)

	deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notifyd",
			Subsystem: "broker",
			Name:      "deliveries_total",
			Help:      "Total listener deliveries per topic",
		},
		[]string{"topic"},
	)

	droppedDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notifyd",
			Subsystem: "broker",
			Name:      "dropped_deliveries_total",
			Help:      "Deliveries abandoned because the listener panicked",
		},
		[]string{"topic"},
	)

	subscribersGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "notifyd",
			Subsystem: "broker",
			Name:      "subscribers",
			Help:      "Currently registered subscribers per topic",
		},
		[]string{"topic"},
	)
)

func init() {
	prometheus.MustRegister(eventsPublishedTotal, deliveriesTotal, droppedDeliveriesTotal, subscribersGauge)
}
