package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/keybox9823/apollo/internal/status"
	"github.com/keybox9823/apollo/pkg/consts"
	"github.com/keybox9823/apollo/pkg/protocol"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newStore() *status.Store {
	s := status.New(protocol.StatusRecord{})
	s.SetActiveMode(protocol.ModeDefinition{
		Name: "A",
		Modules: map[string]protocol.ModuleDefinition{
			"m1": {WatchKeywords: []string{"m1"}},
		},
		MonitoredComponents: []string{"GPS"},
	})
	s.ConsumeChanged()
	return s
}

func newIngestor(s *status.Store, useSimTime bool, onHighBeam func()) *Ingestor {
	i := New(s, useSimTime, consts.DefaultStatusLifetime, onHighBeam)
	i.now = func() time.Time { return now }
	return i
}

func freshStatus(code consts.ComponentStatusCode) *protocol.SystemStatus {
	return &protocol.SystemStatus{
		Timestamp: now.Add(-time.Second),
		Modules:   map[string]consts.ComponentStatusCode{"m1": code},
		Components: map[string]protocol.ComponentSummary{
			"GPS": {Status: consts.StatusOK},
		},
	}
}

func TestApplySystemStatus_FreshOK(t *testing.T) {
	s := newStore()
	newIngestor(s, false, nil).ApplySystemStatus(freshStatus(consts.StatusOK))

	rec := s.Get()
	assert.True(t, rec.Modules["m1"])
	assert.Equal(t, consts.StatusOK, rec.MonitoredComponents["GPS"].Status)
	assert.True(t, s.ConsumeChanged())
}

func TestApplySystemStatus_FreshNotOK(t *testing.T) {
	s := newStore()
	i := newIngestor(s, false, nil)
	i.ApplySystemStatus(freshStatus(consts.StatusOK))
	i.ApplySystemStatus(freshStatus(consts.StatusError))

	assert.False(t, s.Get().Modules["m1"])
}

func TestApplySystemStatus_StaleLeavesModules(t *testing.T) {
	s := newStore()
	i := newIngestor(s, false, nil)
	i.ApplySystemStatus(freshStatus(consts.StatusOK))

	stale := freshStatus(consts.StatusError)
	stale.Timestamp = now.Add(-time.Hour)
	i.ApplySystemStatus(stale)

	assert.True(t, s.Get().Modules["m1"], "stale feed must not toggle module state")
}

func TestApplySystemStatus_SimTimeUsesRealtimeFlag(t *testing.T) {
	s := newStore()
	i := newIngestor(s, true, nil)

	msg := freshStatus(consts.StatusOK)
	msg.Timestamp = now.Add(-time.Hour)
	msg.RealtimeInSimulation = true
	i.ApplySystemStatus(msg)
	assert.True(t, s.Get().Modules["m1"])

	down := freshStatus(consts.StatusError)
	down.RealtimeInSimulation = false
	i.ApplySystemStatus(down)
	assert.True(t, s.Get().Modules["m1"], "non-realtime sim message is stale")
}

func TestApplySystemStatus_UnreportedComponent(t *testing.T) {
	s := newStore()
	msg := freshStatus(consts.StatusOK)
	msg.Components = nil
	newIngestor(s, false, nil).ApplySystemStatus(msg)

	summary := s.Get().MonitoredComponents["GPS"]
	assert.Equal(t, consts.StatusUnknown, summary.Status)
	assert.Equal(t, "Status not reported by Monitor.", summary.Message)
}

func TestApplySystemStatus_ModuleMissingFromFeed(t *testing.T) {
	s := newStore()
	i := newIngestor(s, false, nil)
	i.ApplySystemStatus(freshStatus(consts.StatusOK))

	empty := freshStatus(consts.StatusOK)
	empty.Modules = nil
	i.ApplySystemStatus(empty)

	assert.False(t, s.Get().Modules["m1"], "fresh feed without the module marks it down")
}

func TestApplySystemStatus_ChangeFlagOnlyOnNewContent(t *testing.T) {
	s := newStore()
	i := newIngestor(s, false, nil)

	i.ApplySystemStatus(freshStatus(consts.StatusOK))
	assert.True(t, s.ConsumeChanged())

	i.ApplySystemStatus(freshStatus(consts.StatusOK))
	assert.False(t, s.ConsumeChanged(), "identical content must not wake the publisher")
}

func TestApplyVehicleTelemetry_RecordsLatest(t *testing.T) {
	s := newStore()
	newIngestor(s, false, nil).ApplyVehicleTelemetry(&protocol.VehicleTelemetry{
		Timestamp:   now,
		DrivingMode: consts.DrivingModeAuto,
	})

	latest, ok := s.VehicleTelemetry()
	assert.True(t, ok)
	assert.Equal(t, consts.DrivingModeAuto, latest.DrivingMode)
}

func TestApplyVehicleTelemetry_HighBeamHook(t *testing.T) {
	s := newStore()
	fired := 0
	i := newIngestor(s, false, func() { fired++ })

	i.ApplyVehicleTelemetry(&protocol.VehicleTelemetry{
		Timestamp: now.Add(-time.Second),
		Signal:    protocol.LightSignal{HighBeam: true},
	})
	assert.Equal(t, 1, fired)

	// Stale telemetry must not fire the hook.
	i.ApplyVehicleTelemetry(&protocol.VehicleTelemetry{
		Timestamp: now.Add(-time.Hour),
		Signal:    protocol.LightSignal{HighBeam: true},
	})
	assert.Equal(t, 1, fired)

	// Neither does fresh telemetry without the signal.
	i.ApplyVehicleTelemetry(&protocol.VehicleTelemetry{Timestamp: now})
	assert.Equal(t, 1, fired)
}
