// Package status owns the authoritative HMI status record. Every read and
// write goes through the Store's single reader/writer lock; callers never see
// the record itself, only clones, so the lock scope cannot escape this
// package. The lock is held only for in-memory updates; no caller is allowed
// to do I/O inside an Update/Merge function.
package status

import (
	"sync"

	"github.com/keybox9823/apollo/pkg/consts"
	"github.com/keybox9823/apollo/pkg/protocol"
)

// Store serializes concurrent access to the shared status record, the active
// mode definition and the latest observed vehicle telemetry.
type Store struct {
	mu sync.RWMutex

	record    protocol.StatusRecord
	mode      protocol.ModeDefinition
	telemetry *protocol.VehicleTelemetry

	changed     bool
	fingerprint uint64
}

// New creates a Store seeded with the given initial record.
func New(initial protocol.StatusRecord) *Store {
	s := &Store{record: initial}
	s.fingerprint = fingerprint(&s.record)
	return s
}

// Get returns a deep copy of the current record under a read lock.
func (s *Store) Get() protocol.StatusRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.Clone()
}

// CurrentMode returns the name of the active mode.
func (s *Store) CurrentMode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.CurrentMode
}

// Update applies fn under the write lock. fn reports whether it mutated the
// record; the changed flag is raised only then, which lets operator actions
// short-circuit idempotently without waking the publish loop.
func (s *Store) Update(fn func(*protocol.StatusRecord) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutated := fn(&s.record)
	if mutated {
		s.changed = true
	}
	return mutated
}

// Merge applies fn under the write lock, then recomputes the record
// fingerprint. The changed flag is raised only when the fingerprint moved, so
// feed deliveries that do not alter observable content stay silent.
func (s *Store) Merge(fn func(*protocol.StatusRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.record)
	if fp := fingerprint(&s.record); fp != s.fingerprint {
		s.fingerprint = fp
		s.changed = true
	}
}

// SetActiveMode atomically replaces the active mode and rebuilds the module
// and monitored-component sections from the new definition. Nothing from the
// previous mode survives: modules start as not running, components as unknown.
func (s *Store) SetActiveMode(def protocol.ModeDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = def
	s.record.CurrentMode = def.Name
	s.record.Modules = make(map[string]bool, len(def.Modules))
	for name := range def.Modules {
		s.record.Modules[name] = false
	}
	s.record.MonitoredComponents = make(map[string]protocol.ComponentSummary, len(def.MonitoredComponents))
	for _, name := range def.MonitoredComponents {
		s.record.MonitoredComponents[name] = protocol.ComponentSummary{Status: consts.StatusUnknown}
	}
	s.changed = true
}

// ActiveMode returns a copy of the active mode definition.
func (s *Store) ActiveMode() protocol.ModeDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def := s.mode
	if s.mode.Modules != nil {
		def.Modules = make(map[string]protocol.ModuleDefinition, len(s.mode.Modules))
		for k, v := range s.mode.Modules {
			def.Modules[k] = v
		}
	}
	def.MonitoredComponents = append([]string(nil), s.mode.MonitoredComponents...)
	return def
}

// ConsumeChanged atomically reads and clears the changed flag.
func (s *Store) ConsumeChanged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.changed
	s.changed = false
	return changed
}

// SetVehicleTelemetry records the most recently observed chassis feedback.
func (s *Store) SetVehicleTelemetry(t protocol.VehicleTelemetry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.telemetry = &t
}

// VehicleTelemetry returns the latest chassis feedback, if any was observed.
func (s *Store) VehicleTelemetry() (protocol.VehicleTelemetry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.telemetry == nil {
		return protocol.VehicleTelemetry{}, false
	}
	return *s.telemetry, true
}
