// Package hmi hosts the supervisor worker: the facade that owns mode and
// module orchestration, aggregates status and publishes it to registered
// handlers.
package hmi

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/keybox9823/apollo/internal/catalog"
	"github.com/keybox9823/apollo/internal/handshake"
	"github.com/keybox9823/apollo/internal/monitor"
	"github.com/keybox9823/apollo/internal/process"
	"github.com/keybox9823/apollo/internal/status"
	"github.com/keybox9823/apollo/pkg/consts"
	"github.com/keybox9823/apollo/pkg/logger"
	"github.com/keybox9823/apollo/pkg/protocol"
)

// StatusHandler is invoked on every publish with the snapshot to emit.
// Handlers run synchronously on the publish-loop goroutine, in registration
// order, and may decorate the snapshot before it leaves the process. They
// must not block significantly.
type StatusHandler func(changed bool, st *protocol.StatusRecord)

// KV is the persistence contract for remembering state across restarts.
type KV interface {
	Get(key string) (string, error)
	Put(key, value string) error
}

// EventWriter forwards operator-submitted drive events.
type EventWriter interface {
	WriteDriveEvent(ev protocol.DriveEvent) error
}

// VehicleActivator installs a vehicle profile into the runtime environment.
type VehicleActivator interface {
	Activate(profileDir string) error
}

// DrivingModeChanger runs the driving-mode handshake.
type DrivingModeChanger interface {
	ChangeTo(target consts.DrivingMode) error
}

// Options carries the worker's collaborators. Catalog, KV and Runner are
// required; the rest default to production implementations or no-ops.
type Options struct {
	Catalog  *catalog.Catalog
	KV       KV
	Runner   process.Runner
	Requests handshake.RequestWriter
	Events   EventWriter
	Vehicles VehicleActivator

	// Shifter overrides the default handshake implementation, used in tests.
	Shifter DrivingModeChanger
	// Tick and PublishInterval override the loop timing, used in tests.
	Tick            time.Duration
	PublishInterval time.Duration
	Now             func() time.Time
}

// Worker is the HMI orchestrator facade.
type Worker struct {
	cfg     protocol.Config
	catalog *catalog.Catalog
	store   *status.Store
	kv      KV
	runner  process.Runner
	shifter DrivingModeChanger
	events  EventWriter
	vehicle VehicleActivator
	flags   *flagfile

	tick            time.Duration
	publishInterval time.Duration
	now             func() time.Time

	handlersMu sync.Mutex
	handlers   []StatusHandler

	stop chan struct{}
	done chan struct{}
}

// New builds a Worker, initializes the status record from the catalog and the
// environment, and enters the initial mode. Mode selection priority: forced
// navigation mode, then the mode cached in the KV store, then the configured
// default, then the first catalog entry.
func New(cfg protocol.Config, opts Options) (*Worker, error) {
	initial := protocol.StatusRecord{
		Modes:       opts.Catalog.ModeNames(),
		Maps:        opts.Catalog.MapNames(),
		Vehicles:    opts.Catalog.VehicleNames(),
		DockerImage: os.Getenv(consts.DockerImageEnv),
		UTMZoneID:   cfg.Runtime.UTMZoneID,
	}
	for title, dir := range opts.Catalog.Maps {
		if dir != "" && dir == cfg.Runtime.MapDir {
			initial.CurrentMap = title
		}
	}

	w := &Worker{
		cfg:             cfg,
		catalog:         opts.Catalog,
		store:           status.New(initial),
		kv:              opts.KV,
		runner:          opts.Runner,
		events:          opts.Events,
		vehicle:         opts.Vehicles,
		flags:           newFlagfile(cfg.Runtime.GlobalFlagfile, map[string]string{"map_dir": cfg.Runtime.MapDir}),
		tick:            opts.Tick,
		publishInterval: opts.PublishInterval,
		now:             opts.Now,
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
	}
	if w.tick <= 0 {
		w.tick = consts.DefaultStatusTick
	}
	if w.publishInterval <= 0 {
		w.publishInterval = cfg.Runtime.PublishIntervalOrDefault()
	}
	if w.now == nil {
		w.now = time.Now
	}
	w.shifter = opts.Shifter
	if w.shifter == nil {
		w.shifter = handshake.NewShifter(opts.Requests, w.store)
	}

	if err := w.ChangeMode(w.initialMode()); err != nil {
		return nil, err
	}
	return w, nil
}

// initialMode picks the mode to enter at startup.
func (w *Worker) initialMode() string {
	has := func(name string) bool {
		_, ok := w.catalog.Modes[name]
		return ok
	}
	if w.cfg.Runtime.UseNavigationMode && has(consts.NavigationModeName) {
		return consts.NavigationModeName
	}
	cached, err := w.kv.Get(consts.CurrentModeKVKey)
	if err != nil {
		logger.Log.Error("Cannot read cached mode", "err", err)
	}
	if cached != "" && has(cached) {
		return cached
	}
	if has(w.cfg.Runtime.DefaultMode) {
		return w.cfg.Runtime.DefaultMode
	}
	return w.catalog.ModeNames()[0]
}

// Store exposes the status store for feed ingestion wiring.
func (w *Worker) Store() *status.Store {
	return w.store
}

// GetStatus returns a snapshot of the current status record.
func (w *Worker) GetStatus() protocol.StatusRecord {
	return w.store.Get()
}

// RegisterStatusHandler adds a handler invoked on every publish.
func (w *Worker) RegisterStatusHandler(h StatusHandler) {
	w.handlersMu.Lock()
	defer w.handlersMu.Unlock()
	w.handlers = append(w.handlers, h)
}

// Start launches the publish loop.
func (w *Worker) Start() {
	go w.publishLoop()
}

// Stop signals the publish loop and blocks until it acknowledges, so no
// publish is in flight when Stop returns.
func (w *Worker) Stop() {
	close(w.stop)
	<-w.done
}

// publishLoop decides once per tick whether to publish: immediately after a
// status change, otherwise once the periodic deadline passes. The deadline is
// re-armed after every publish.
func (w *Worker) publishLoop() {
	defer close(w.done)
	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	var deadline time.Time
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
		}

		changed := w.store.ConsumeChanged()
		if !changed && w.now().Before(deadline) {
			continue
		}
		deadline = w.now().Add(w.publishInterval)

		trigger := "periodic"
		if changed {
			trigger = "change"
		}
		monitor.PublishesTotal.WithLabelValues(trigger).Inc()

		st := w.store.Get()
		for _, h := range w.statusHandlers() {
			h(changed, &st)
		}
	}
}

func (w *Worker) statusHandlers() []StatusHandler {
	w.handlersMu.Lock()
	defer w.handlersMu.Unlock()
	return append([]StatusHandler(nil), w.handlers...)
}

// SubmitDriveEvent forwards an operator event to the recorder. Unknown event
// type names are logged and skipped rather than failing the submission.
func (w *Worker) SubmitDriveEvent(eventTime time.Time, message string, types []string, reportable bool) error {
	ev := protocol.DriveEvent{
		ID:         uuid.NewString(),
		Time:       eventTime,
		Event:      message,
		Reportable: reportable,
	}
	for _, name := range types {
		t, ok := consts.ParseDriveEventType(name)
		if !ok {
			logger.Log.Error("Failed to parse drive event type", "type", name)
			continue
		}
		ev.Types = append(ev.Types, t)
	}
	if w.events == nil {
		return nil
	}
	return w.events.WriteDriveEvent(ev)
}
