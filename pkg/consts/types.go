package consts

import "time"

// Action is an operator action dispatched through the HMI worker.
type Action string

const (
	ActionNone          Action = "NONE"
	ActionSetupMode     Action = "SETUP_MODE"
	ActionEnterAutoMode Action = "ENTER_AUTO_MODE"
	ActionDisengage     Action = "DISENGAGE"
	ActionResetMode     Action = "RESET_MODE"
	ActionChangeMode    Action = "CHANGE_MODE"
	ActionChangeMap     Action = "CHANGE_MAP"
	ActionChangeVehicle Action = "CHANGE_VEHICLE"
	ActionStartModule   Action = "START_MODULE"
	ActionStopModule    Action = "STOP_MODULE"
)

// DrivingMode is the vehicle's low-level control state as reported by the
// chassis telemetry feed.
type DrivingMode string

const (
	DrivingModeManual DrivingMode = "COMPLETE_MANUAL"
	DrivingModeAuto   DrivingMode = "COMPLETE_AUTO_DRIVE"
)

// DrivingAction is the request sent to the control stack while changing
// driving mode.
type DrivingAction string

const (
	DrivingActionReset DrivingAction = "RESET"
	DrivingActionStart DrivingAction = "START"
)

// ComponentStatusCode summarizes the health of a module or monitored
// component as reported by the monitor feed.
type ComponentStatusCode string

const (
	StatusUnknown ComponentStatusCode = "UNKNOWN"
	StatusOK      ComponentStatusCode = "OK"
	StatusWarn    ComponentStatusCode = "WARN"
	StatusError   ComponentStatusCode = "ERROR"
	StatusFatal   ComponentStatusCode = "FATAL"
)

// DriveEventType tags an operator-submitted drive event.
type DriveEventType string

const (
	EventCritical    DriveEventType = "CRITICAL"
	EventProblem     DriveEventType = "PROBLEM"
	EventDesired     DriveEventType = "DESIRED"
	EventOutOfScope  DriveEventType = "OUT_OF_SCOPE"
	EventMapMismatch DriveEventType = "MAP_MISMATCH"
)

// ParseDriveEventType maps an event type name onto its typed tag.
func ParseDriveEventType(name string) (DriveEventType, bool) {
	switch t := DriveEventType(name); t {
	case EventCritical, EventProblem, EventDesired, EventOutOfScope, EventMapMismatch:
		return t, true
	}
	return "", false
}

// Timing defaults for the status loop and the driving-mode handshake.
const (
	DefaultStatusTick      = 200 * time.Millisecond
	DefaultPublishInterval = 5 * time.Second
	DefaultStatusLifetime  = 30 * time.Second

	HandshakeMaxTries = 3
	HandshakeInterval = 500 * time.Millisecond
)

const (
	// CurrentModeKVKey stores the last selected HMI mode across restarts.
	CurrentModeKVKey = "/apollo/hmi/status:current_mode"

	// NavigationModeName is preferred at startup when navigation mode is
	// forced through configuration.
	NavigationModeName = "Navigation"

	// DockerImageEnv carries the container image id surfaced in status.
	DockerImageEnv = "DOCKER_IMG"
)
