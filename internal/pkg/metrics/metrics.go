// Package metrics 进程级 prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ChangeEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "huddle",
		Name:      "change_events_total",
		Help:      "Change events delivered to sync sessions.",
	}, []string{"table", "type"})

	ChangeEventsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "huddle",
		Name:      "change_events_dropped_total",
		Help:      "Change events dropped before reaching the store.",
	}, []string{"reason"})

	FetchFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "huddle",
		Name:      "enrich_fetch_failures_total",
		Help:      "Row fetches that failed while enriching a partial event.",
	}, []string{"kind"})

	InvalidMessages = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "huddle",
		Name:      "invalid_message_rows_total",
		Help:      "Message rows rejected by the projector.",
	})

	StoreMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "huddle",
		Name:      "store_mutations_total",
		Help:      "Message store mutations by operation and outcome.",
	}, []string{"op", "changed"})

	SubscriptionSetupFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "huddle",
		Name:      "subscription_setup_failures_total",
		Help:      "Context subscriptions that failed to become active.",
	})

	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "huddle",
		Name:      "ws_sessions",
		Help:      "Open websocket sync sessions.",
	})

	ActiveSubscriptions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "huddle",
		Name:      "stream_subscriptions",
		Help:      "Live change stream subscriptions.",
	})

	RelayPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "huddle",
		Name:      "relay_published_total",
		Help:      "CDC rows republished to the change stream.",
	}, []string{"table"})

	RelayErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "huddle",
		Name:      "relay_errors_total",
		Help:      "CDC messages the relay failed to decode or publish.",
	}, []string{"stage"})
)

// MustRegister 注册到指定 registry，默认注册到全局
func MustRegister(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		ChangeEvents,
		ChangeEventsDropped,
		FetchFailures,
		InvalidMessages,
		StoreMutations,
		SubscriptionSetupFailures,
		ActiveSessions,
		ActiveSubscriptions,
		RelayPublished,
		RelayErrors,
	)
}

// Changed bool 转为标签值
func Changed(ok bool) string {
	if ok {
		return "true"
	}
	return "false"
}
