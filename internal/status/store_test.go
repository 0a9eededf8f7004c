package status

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keybox9823/apollo/pkg/consts"
	"github.com/keybox9823/apollo/pkg/protocol"
)

func modeDef(name string, modules ...string) protocol.ModeDefinition {
	def := protocol.ModeDefinition{Name: name, Modules: map[string]protocol.ModuleDefinition{}}
	for _, m := range modules {
		def.Modules[m] = protocol.ModuleDefinition{
			StartCommand:  "start " + m,
			StopCommand:   "stop " + m,
			WatchKeywords: []string{m},
		}
	}
	return def
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := New(protocol.StatusRecord{CurrentMap: "Town"})
	s.SetActiveMode(modeDef("A", "m1"))

	snapshot := s.Get()
	snapshot.Modules["m1"] = true
	snapshot.CurrentMap = "Elsewhere"

	fresh := s.Get()
	assert.False(t, fresh.Modules["m1"], "mutating a snapshot must not touch the store")
	assert.Equal(t, "Town", fresh.CurrentMap)
}

func TestStore_SetActiveModeRebuilds(t *testing.T) {
	s := New(protocol.StatusRecord{})

	defA := modeDef("A", "m1")
	defA.MonitoredComponents = []string{"GPS"}
	s.SetActiveMode(defA)

	s.Merge(func(r *protocol.StatusRecord) {
		r.Modules["m1"] = true
		r.MonitoredComponents["GPS"] = protocol.ComponentSummary{Status: consts.StatusOK}
	})

	s.SetActiveMode(modeDef("B", "m2"))
	rec := s.Get()
	assert.Equal(t, "B", rec.CurrentMode)
	assert.Equal(t, map[string]bool{"m2": false}, rec.Modules)
	assert.Empty(t, rec.MonitoredComponents, "components of the old mode must not survive")
}

func TestStore_SetActiveModeComponentsStartUnknown(t *testing.T) {
	s := New(protocol.StatusRecord{})

	def := modeDef("A", "m1")
	def.MonitoredComponents = []string{"GPS", "CANBus"}
	s.SetActiveMode(def)

	rec := s.Get()
	require.Len(t, rec.MonitoredComponents, 2)
	for name, summary := range rec.MonitoredComponents {
		assert.Equal(t, consts.StatusUnknown, summary.Status,
			"component %s must report unknown health until the monitor feed arrives", name)
	}
}

func TestStore_ConsumeChanged(t *testing.T) {
	s := New(protocol.StatusRecord{})
	assert.False(t, s.ConsumeChanged())

	s.Update(func(r *protocol.StatusRecord) bool {
		r.CurrentMap = "Town"
		return true
	})
	assert.True(t, s.ConsumeChanged())
	assert.False(t, s.ConsumeChanged(), "flag must clear on read")

	mutated := s.Update(func(r *protocol.StatusRecord) bool { return false })
	assert.False(t, mutated)
	assert.False(t, s.ConsumeChanged(), "declined updates must not raise the flag")
}

func TestStore_MergeFingerprintGate(t *testing.T) {
	s := New(protocol.StatusRecord{})
	s.SetActiveMode(modeDef("A", "m1"))
	s.ConsumeChanged()

	merge := func() {
		s.Merge(func(r *protocol.StatusRecord) {
			r.Modules["m1"] = true
		})
	}
	merge()
	assert.True(t, s.ConsumeChanged(), "first merge changes content")
	merge()
	assert.False(t, s.ConsumeChanged(), "identical merge must stay silent")
}

func TestStore_VehicleTelemetry(t *testing.T) {
	s := New(protocol.StatusRecord{})

	_, ok := s.VehicleTelemetry()
	assert.False(t, ok, "no telemetry observed yet")

	s.SetVehicleTelemetry(protocol.VehicleTelemetry{DrivingMode: consts.DrivingModeAuto})
	latest, ok := s.VehicleTelemetry()
	require.True(t, ok)
	assert.Equal(t, consts.DrivingModeAuto, latest.DrivingMode)
}

func TestStore_ActiveModeIsCopy(t *testing.T) {
	s := New(protocol.StatusRecord{})
	s.SetActiveMode(modeDef("A", "m1"))

	def := s.ActiveMode()
	delete(def.Modules, "m1")

	assert.Contains(t, s.ActiveMode().Modules, "m1")
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New(protocol.StatusRecord{})
	s.SetActiveMode(modeDef("A", "m1"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Get()
				_, _ = s.VehicleTelemetry()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Merge(func(r *protocol.StatusRecord) {
					r.Modules["m1"] = j%2 == 0
				})
			}
		}()
	}
	wg.Wait()
}
