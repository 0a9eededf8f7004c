package protocol

import (
	"time"

	"github.com/keybox9823/apollo/pkg/consts"
)

// ModeFile is the raw per-mode YAML definition as written by integrators.
// Cyber modules are expanded into full ModuleDefinitions at load time; plain
// modules carry their commands verbatim.
type ModeFile struct {
	CyberModules        map[string]CyberModule      `yaml:"cyber_modules"`
	Modules             map[string]ModuleDefinition `yaml:"modules"`
	MonitoredComponents []string                    `yaml:"monitored_components"`
}

// CyberModule describes a module launched through the mainboard runtime.
type CyberModule struct {
	DagFiles          []string `yaml:"dag_files"`
	ProcessGroup      string   `yaml:"process_group"`
	RequiredForSafety bool     `yaml:"required_for_safety"`
}

// ModuleDefinition is an immutable, fully expanded module entry of a mode.
type ModuleDefinition struct {
	StartCommand      string `yaml:"start_command"`
	StopCommand       string `yaml:"stop_command"`
	RequiredForSafety bool   `yaml:"required_for_safety"`
	// WatchKeywords locate the module's processes for external liveness
	// monitoring.
	WatchKeywords []string `yaml:"watch_keywords"`
}

// ModeDefinition is an immutable, fully expanded mode: its modules and the
// components monitored while it is active.
type ModeDefinition struct {
	Name                string
	Modules             map[string]ModuleDefinition
	MonitoredComponents []string
}

// ComponentSummary is the per-component health surfaced in status.
type ComponentSummary struct {
	Status  consts.ComponentStatusCode `json:"status"`
	Message string                     `json:"message,omitempty"`
}

// StatusRecord is the authoritative aggregate published to consumers. All
// access goes through the status store; consumers only ever see clones.
type StatusRecord struct {
	Modes    []string `json:"modes"`
	Maps     []string `json:"maps"`
	Vehicles []string `json:"vehicles"`

	CurrentMode    string `json:"current_mode"`
	CurrentMap     string `json:"current_map"`
	CurrentVehicle string `json:"current_vehicle"`

	Modules             map[string]bool             `json:"modules"`
	MonitoredComponents map[string]ComponentSummary `json:"monitored_components"`

	DockerImage string `json:"docker_image,omitempty"`
	UTMZoneID   int    `json:"utm_zone_id,omitempty"`

	// SendTime is stamped by the outbound handler right before emission.
	SendTime time.Time `json:"send_time,omitempty"`
}

// Clone returns a deep copy safe to hand outside the store's lock.
func (s *StatusRecord) Clone() StatusRecord {
	out := *s
	out.Modes = append([]string(nil), s.Modes...)
	out.Maps = append([]string(nil), s.Maps...)
	out.Vehicles = append([]string(nil), s.Vehicles...)
	if s.Modules != nil {
		out.Modules = make(map[string]bool, len(s.Modules))
		for k, v := range s.Modules {
			out.Modules[k] = v
		}
	}
	if s.MonitoredComponents != nil {
		out.MonitoredComponents = make(map[string]ComponentSummary, len(s.MonitoredComponents))
		for k, v := range s.MonitoredComponents {
			out.MonitoredComponents[k] = v
		}
	}
	return out
}

// SystemStatus is the inbound monitor feed merged into the status record.
type SystemStatus struct {
	Timestamp time.Time `json:"timestamp"`
	// RealtimeInSimulation marks the message as fresh when the stack runs
	// under simulated time, where wall-clock age is meaningless.
	RealtimeInSimulation bool `json:"realtime_in_simulation,omitempty"`

	Modules    map[string]consts.ComponentStatusCode `json:"modules"`
	Components map[string]ComponentSummary           `json:"components"`
}

// LightSignal carries the lighting state of the vehicle telemetry feed.
type LightSignal struct {
	HighBeam       bool `json:"high_beam,omitempty"`
	LowBeam        bool `json:"low_beam,omitempty"`
	EmergencyLight bool `json:"emergency_light,omitempty"`
}

// VehicleTelemetry is the inbound chassis feed. It is tracked independently
// of the merged status record and consulted by the driving-mode handshake.
type VehicleTelemetry struct {
	Timestamp   time.Time          `json:"timestamp"`
	DrivingMode consts.DrivingMode `json:"driving_mode"`
	Signal      LightSignal        `json:"signal"`
}

// DrivingRequest is the pad message emitted while changing driving mode.
type DrivingRequest struct {
	Action consts.DrivingAction `json:"action"`
}

// DriveEvent is an operator-submitted event forwarded to the recorder.
type DriveEvent struct {
	ID         string                  `json:"id"`
	Time       time.Time               `json:"time"`
	Event      string                  `json:"event"`
	Types      []consts.DriveEventType `json:"types,omitempty"`
	Reportable bool                    `json:"is_reportable"`
}
