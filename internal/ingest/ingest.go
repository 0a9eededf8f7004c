// Package ingest merges the inbound monitor and chassis feeds into the
// status store. Merges happen under the store's write lock; freshness gating
// keeps stale feeds from flapping module state.
package ingest

import (
	"time"

	"github.com/keybox9823/apollo/internal/status"
	"github.com/keybox9823/apollo/pkg/consts"
	"github.com/keybox9823/apollo/pkg/logger"
	"github.com/keybox9823/apollo/pkg/protocol"
)

// unreportedMessage annotates components the monitor said nothing about.
const unreportedMessage = "Status not reported by Monitor."

// Ingestor applies feed deliveries to the store.
type Ingestor struct {
	store *status.Store

	useSimTime bool
	lifetime   time.Duration
	now        func() time.Time

	// onHighBeam fires when fresh telemetry carries a high-beam signal. The
	// supervisor currently wires it to the NONE action: a hook point, nothing
	// happens on it today.
	onHighBeam func()
}

// New creates an Ingestor bound to the store. lifetime bounds the accepted
// message age when not running under simulated time.
func New(store *status.Store, useSimTime bool, lifetime time.Duration, onHighBeam func()) *Ingestor {
	return &Ingestor{
		store:      store,
		useSimTime: useSimTime,
		lifetime:   lifetime,
		now:        time.Now,
		onHighBeam: onHighBeam,
	}
}

// ApplySystemStatus merges one monitor feed delivery.
//
// Module running flags only move on fresh data: a module is running iff the
// fresh feed reports it OK. Stale deliveries leave the previous flags
// untouched. Monitored components always take the reported summary, or are
// marked unknown when the monitor did not report them.
func (i *Ingestor) ApplySystemStatus(msg *protocol.SystemStatus) {
	fresh := i.isFresh(msg.RealtimeInSimulation, msg.Timestamp)

	i.store.Merge(func(r *protocol.StatusRecord) {
		if fresh {
			for name := range r.Modules {
				code, reported := msg.Modules[name]
				r.Modules[name] = reported && code == consts.StatusOK
			}
		}
		for name := range r.MonitoredComponents {
			if summary, ok := msg.Components[name]; ok {
				r.MonitoredComponents[name] = summary
			} else {
				r.MonitoredComponents[name] = protocol.ComponentSummary{
					Status:  consts.StatusUnknown,
					Message: unreportedMessage,
				}
			}
		}
	})
}

// ApplyVehicleTelemetry records the latest chassis feedback for the
// driving-mode handshake and fires the high-beam hook on fresh signals.
func (i *Ingestor) ApplyVehicleTelemetry(msg *protocol.VehicleTelemetry) {
	i.store.SetVehicleTelemetry(*msg)

	if i.now().Sub(msg.Timestamp) < i.lifetime && msg.Signal.HighBeam {
		if i.onHighBeam != nil {
			i.onHighBeam()
		} else {
			logger.Log.Warn("High beam signal observed but no trigger is wired")
		}
	}
}

// isFresh decides whether a feed delivery may toggle module state. Under
// simulated time wall-clock age is meaningless, so the message's own realtime
// flag decides.
func (i *Ingestor) isFresh(realtimeInSimulation bool, timestamp time.Time) bool {
	if i.useSimTime {
		return realtimeInSimulation
	}
	return i.now().Sub(timestamp) < i.lifetime
}
