// Package metrics provides Prometheus instrumentation for the sentinel bot:
// counters for evaluation throughput, enforcement decisions and platform call
// failures.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesEvaluated counts messages that entered the scoring pipeline.
	MessagesEvaluated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_messages_evaluated_total",
		Help: "Total number of messages evaluated by the security engine",
	})

	// Decisions counts enforcement decisions, labeled by action:
	// "ignore", "watchlist", "delete" or "ban".
	Decisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_decisions_total",
		Help: "Total number of enforcement decisions",
	}, []string{"action"})

	// PlatformErrors counts failed platform calls, labeled by operation:
	// "delete", "ban", "purge" or "alert".
	PlatformErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_platform_errors_total",
		Help: "Total number of failed platform moderation calls",
	}, []string{"op"})

	// BanGuardSkips counts duplicate concurrent ban attempts that were
	// suppressed by the per-author guard.
	BanGuardSkips = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_ban_guard_skips_total",
		Help: "Total number of duplicate ban attempts suppressed",
	})
)

func init() {
	prometheus.MustRegister(
		MessagesEvaluated,
		Decisions,
		PlatformErrors,
		BanGuardSkips,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
