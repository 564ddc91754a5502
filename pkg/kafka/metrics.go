package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	outcomeReceived     = "received"
	outcomeProcessed    = "processed"
	outcomeFailed       = "failed"
	outcomeDuplicate    = "duplicate"
	outcomeDeadLettered = "dead_lettered"
	outcomePublished    = "published"
	outcomeError        = "error"
)

var (
	consumerMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "statscustoms",
		Subsystem: "kafka_consumer",
		Name:      "messages_total",
		Help:      "Consumed messages by outcome.",
	}, []string{"topic", "consumer_group", "outcome"})

	consumerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "statscustoms",
		Subsystem: "kafka_consumer",
		Name:      "handle_duration_seconds",
		Help:      "Handler time per message, retries included.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"topic", "consumer_group"})

	producerMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "statscustoms",
		Subsystem: "kafka_producer",
		Name:      "messages_total",
		Help:      "Publish attempts by outcome.",
	}, []string{"topic", "outcome"})

	producerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "statscustoms",
		Subsystem: "kafka_producer",
		Name:      "publish_duration_seconds",
		Help:      "Duration of publish calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"topic"})
)
