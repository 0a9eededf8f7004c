package hmi

import (
	"sort"
	"time"

	"github.com/keybox9823/apollo/internal/catalog"
	"github.com/keybox9823/apollo/internal/monitor"
	"github.com/keybox9823/apollo/pkg/consts"
	"github.com/keybox9823/apollo/pkg/errors"
	"github.com/keybox9823/apollo/pkg/logger"
	"github.com/keybox9823/apollo/pkg/protocol"
)

// Trigger dispatches a single-argument operator action. Unsupported actions
// are reported, never silently ignored.
func (w *Worker) Trigger(action consts.Action) error {
	logger.Log.Info("Action triggered", "action", action)
	var err error
	switch action {
	case consts.ActionNone:
		// Hook point, intentionally inert.
	case consts.ActionSetupMode:
		w.SetupMode()
	case consts.ActionEnterAutoMode:
		err = w.ChangeDrivingMode(consts.DrivingModeAuto)
	case consts.ActionDisengage:
		err = w.ChangeDrivingMode(consts.DrivingModeManual)
	case consts.ActionResetMode:
		w.ResetMode()
	default:
		err = errors.New(errors.ErrCodeActionUnsupported, "Trigger",
			"action "+string(action)+" not implemented", nil)
	}
	w.countAction(action, err)
	return err
}

// TriggerWith dispatches a value-argument operator action.
func (w *Worker) TriggerWith(action consts.Action, value string) error {
	logger.Log.Info("Action triggered", "action", action, "value", value)
	var err error
	switch action {
	case consts.ActionChangeMode:
		err = w.ChangeMode(value)
	case consts.ActionChangeMap:
		err = w.ChangeMap(value)
	case consts.ActionChangeVehicle:
		err = w.ChangeVehicle(value)
	case consts.ActionStartModule:
		err = w.StartModule(value)
	case consts.ActionStopModule:
		err = w.StopModule(value)
	default:
		err = errors.New(errors.ErrCodeActionUnsupported, "Trigger",
			"action "+string(action)+" takes no value or is not implemented", nil)
	}
	w.countAction(action, err)
	return err
}

func (w *Worker) countAction(action consts.Action, err error) {
	result := "ok"
	if err != nil {
		logger.Log.Error("Action failed", "action", action, "err", err)
		result = "error"
	}
	monitor.ActionsTotal.WithLabelValues(string(action), result).Inc()
}

// ChangeMode switches the active operating mode. Switching stops the previous
// mode's modules best-effort, then atomically replaces the mode selection and
// rebuilds the module/component sections, and finally persists the selection.
// Changing to the already active mode is a no-op.
func (w *Worker) ChangeMode(name string) error {
	path, ok := w.catalog.Modes[name]
	if !ok {
		return errors.New(errors.ErrCodeUnknownMode, "ChangeMode",
			"cannot change to unknown mode "+name, nil)
	}
	if w.store.CurrentMode() == name {
		return nil
	}

	w.ResetMode()

	def, err := catalog.LoadMode(name, path)
	if err != nil {
		return err
	}
	w.store.SetActiveMode(def)

	if err := w.kv.Put(consts.CurrentModeKVKey, name); err != nil {
		// Selection survives in memory; only restart recovery is degraded.
		logger.Log.Error("Cannot persist current mode", "mode", name, "err", err)
	}
	return nil
}

// ChangeMap selects a map. Running modules may hold stale map state, so the
// active mode is reset before the new map takes effect.
func (w *Worker) ChangeMap(name string) error {
	dir, ok := w.catalog.Maps[name]
	if !ok {
		return errors.New(errors.ErrCodeUnknownMap, "ChangeMap",
			"unknown map "+name, nil)
	}

	mutated := w.store.Update(func(r *protocol.StatusRecord) bool {
		if r.CurrentMap == name {
			return false
		}
		r.CurrentMap = name
		return true
	})
	if !mutated {
		return nil
	}

	err := w.flags.set("map_dir", dir)
	// The selection is already committed, so the old mode's modules must stop
	// even when the flagfile write failed.
	w.ResetMode()
	return err
}

// ChangeVehicle selects a vehicle profile and activates its resources.
// Activation failure leaves the stack inconsistent and is surfaced as fatal
// to the action.
func (w *Worker) ChangeVehicle(name string) error {
	dir, ok := w.catalog.Vehicles[name]
	if !ok {
		return errors.New(errors.ErrCodeUnknownVehicle, "ChangeVehicle",
			"unknown vehicle "+name, nil)
	}

	mutated := w.store.Update(func(r *protocol.StatusRecord) bool {
		if r.CurrentVehicle == name {
			return false
		}
		r.CurrentVehicle = name
		return true
	})
	if !mutated {
		return nil
	}

	w.ResetMode()

	if w.vehicle == nil {
		return nil
	}
	if err := w.vehicle.Activate(dir); err != nil {
		logger.Log.Error("Vehicle activation failed", "vehicle", name, "err", err)
		return err
	}
	return nil
}

// ChangeDrivingMode runs the driving-mode handshake towards the target.
func (w *Worker) ChangeDrivingMode(target consts.DrivingMode) error {
	started := time.Now()
	err := w.shifter.ChangeTo(target)
	monitor.HandshakeDuration.Observe(time.Since(started).Seconds())
	return err
}

// StartModule starts one module of the active mode. The call does not wait
// for the process to come up; liveness is only known through the monitor
// feed.
func (w *Worker) StartModule(name string) error {
	module, ok := w.store.ActiveMode().Modules[name]
	if !ok {
		return errors.New(errors.ErrCodeModuleNotFound, "StartModule",
			"cannot find module "+name, nil)
	}
	w.runCommand("start", module.StartCommand)
	return nil
}

// StopModule stops one module of the active mode.
func (w *Worker) StopModule(name string) error {
	module, ok := w.store.ActiveMode().Modules[name]
	if !ok {
		return errors.New(errors.ErrCodeModuleNotFound, "StopModule",
			"cannot find module "+name, nil)
	}
	w.runCommand("stop", module.StopCommand)
	return nil
}

// SetupMode starts every module of the active mode.
func (w *Worker) SetupMode() {
	def := w.store.ActiveMode()
	for _, name := range sortedModuleNames(def) {
		w.runCommand("start", def.Modules[name].StartCommand)
	}
}

// ResetMode stops every module of the active mode. Stop failures are logged,
// not fatal: a module that did not stop shows up in the monitor feed.
func (w *Worker) ResetMode() {
	def := w.store.ActiveMode()
	for _, name := range sortedModuleNames(def) {
		w.runCommand("stop", def.Modules[name].StopCommand)
	}
}

func (w *Worker) runCommand(op, command string) {
	result := "ok"
	if err := w.runner.Run(command); err != nil {
		result = "error"
	}
	monitor.ModuleCommands.WithLabelValues(op, result).Inc()
}

func sortedModuleNames(def protocol.ModeDefinition) []string {
	names := make([]string, 0, len(def.Modules))
	for name := range def.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
