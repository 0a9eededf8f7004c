package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/keybox9823/apollo/pkg/logger"
)

var (
	// ActionsTotal counts dispatched operator actions by action and result.
	ActionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hmi_actions_total",
		Help: "Total number of dispatched operator actions",
	}, []string{"action", "result"})
	// PublishesTotal counts status publishes by what triggered them.
	PublishesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hmi_status_publishes_total",
		Help: "Total number of status publishes",
	}, []string{"trigger"})
	// HandshakeAttempts counts driving-mode handshake request attempts.
	HandshakeAttempts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hmi_handshake_attempts_total",
		Help: "Total number of driving-mode handshake attempts",
	})
	// HandshakeDuration tracks how long driving-mode changes take in seconds.
	HandshakeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "hmi_handshake_duration_seconds",
		Help: "Time taken to change driving mode",
	})
	// ModuleCommands counts module start/stop commands by operation and result.
	ModuleCommands = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hmi_module_commands_total",
		Help: "Total number of module lifecycle commands",
	}, []string{"op", "result"})
)

// InitMetrics registers Prometheus metrics and starts an HTTP server to expose
// them. It takes an address string (e.g. ":9090") on which to listen.
func InitMetrics(addr string) {
	prometheus.MustRegister(ActionsTotal)
	prometheus.MustRegister(PublishesTotal)
	prometheus.MustRegister(HandshakeAttempts)
	prometheus.MustRegister(HandshakeDuration)
	prometheus.MustRegister(ModuleCommands)

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		logger.Log.Info("Metrics server starting", "addr", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Log.Error("Metrics server failed", "err", err)
		}
	}()
}
