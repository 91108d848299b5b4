package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agent_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	// Reply metrics
	RepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_replies_total",
			Help: "Replies generated, by source",
		},
		[]string{"source"}, // "api" or "fallback"
	)

	CompletionLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agent_completion_latency_seconds",
			Help:    "Completion API call latency",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 40, 60},
		},
	)

	// Side-effect metrics
	TelegramSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_telegram_sends_total",
			Help: "Outbound Telegram sendMessage calls",
		},
		[]string{"result"}, // "ok" or "error"
	)

	ConversationWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_conversation_writes_total",
			Help: "Conversation record writes",
		},
		[]string{"result"},
	)

	LiveChatConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agent_livechat_connections",
			Help: "Open live-chat websocket connections",
		},
	)
)
