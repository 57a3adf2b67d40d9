package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_sent_total",
		Help: "Messages appended to the message log.",
	})

	EventsPushed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_events_pushed_total",
		Help: "Real-time events handed to the delivery router, by type.",
	}, []string{"type"})

	OpenConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_ws_connections",
		Help: "Currently registered websocket clients.",
	})
)
