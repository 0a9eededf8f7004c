// Package handshake implements the bounded-retry protocol that moves the
// vehicle between driving modes. A single request/acknowledge round trip is
// not reliable over the lossy chassis feedback channel, so the protocol
// repeats an idempotent request and watches the observed feedback instead.
package handshake

import (
	"time"

	"github.com/keybox9823/apollo/internal/monitor"
	"github.com/keybox9823/apollo/pkg/consts"
	"github.com/keybox9823/apollo/pkg/errors"
	"github.com/keybox9823/apollo/pkg/logger"
	"github.com/keybox9823/apollo/pkg/protocol"
)

// RequestWriter sends driving requests towards the control stack.
type RequestWriter interface {
	WriteDrivingRequest(req protocol.DrivingRequest) error
}

// TelemetrySource exposes the most recently observed chassis feedback.
type TelemetrySource interface {
	VehicleTelemetry() (protocol.VehicleTelemetry, bool)
}

// Shifter drives the handshake. Callers must expect each target to block for
// up to MaxTries × Interval and must not hold any lock across a shift.
type Shifter struct {
	requests  RequestWriter
	telemetry TelemetrySource

	maxTries int
	interval time.Duration
	sleep    func(time.Duration)
}

// NewShifter creates a Shifter with the production retry bounds.
func NewShifter(requests RequestWriter, telemetry TelemetrySource) *Shifter {
	return &Shifter{
		requests:  requests,
		telemetry: telemetry,
		maxTries:  consts.HandshakeMaxTries,
		interval:  consts.HandshakeInterval,
		sleep:     time.Sleep,
	}
}

// ChangeTo moves the vehicle into the target driving mode. Any non-manual
// target is reached through an explicit two-step sequence: first confirm
// manual, then shift to the target. A failed manual reset aborts the whole
// operation.
func (s *Shifter) ChangeTo(target consts.DrivingMode) error {
	if target != consts.DrivingModeManual {
		if err := s.shift(consts.DrivingModeManual); err != nil {
			logger.Log.Error("Failed to reset to manual before target shift",
				"target", target, "err", err)
			return err
		}
	}
	return s.shift(target)
}

// shift runs one bounded retry loop towards a single target mode.
func (s *Shifter) shift(target consts.DrivingMode) error {
	action, err := requestFor(target)
	if err != nil {
		return err
	}
	req := protocol.DrivingRequest{Action: action}

	for try := 0; try < s.maxTries; try++ {
		// Send the request periodically until the vehicle confirms the target
		// mode through its feedback.
		monitor.HandshakeAttempts.Inc()
		if err := s.requests.WriteDrivingRequest(req); err != nil {
			logger.Log.Error("Failed to send driving request", "action", action, "err", err)
		}
		s.sleep(s.interval)

		latest, ok := s.telemetry.VehicleTelemetry()
		if !ok {
			logger.Log.Error("No vehicle telemetry received yet", "target", target)
			continue
		}
		if latest.DrivingMode == target {
			return nil
		}
	}
	return errors.New(errors.ErrCodeHandshakeFailed, "ChangeDrivingMode",
		"vehicle did not confirm "+string(target), nil)
}

// requestFor maps a target driving mode onto the request that reaches it.
func requestFor(target consts.DrivingMode) (consts.DrivingAction, error) {
	switch target {
	case consts.DrivingModeManual:
		return consts.DrivingActionReset, nil
	case consts.DrivingModeAuto:
		return consts.DrivingActionStart, nil
	default:
		return "", errors.New(errors.ErrCodeActionUnsupported, "ChangeDrivingMode",
			"no request defined for driving mode "+string(target), nil)
	}
}
