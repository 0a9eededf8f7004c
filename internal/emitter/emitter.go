// Package emitter delivers the supervisor's outbound messages (status
// snapshots, driving requests and drive events) as CloudEvents over HTTP.
package emitter

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"

	"github.com/keybox9823/apollo/pkg/errors"
	"github.com/keybox9823/apollo/pkg/logger"
	"github.com/keybox9823/apollo/pkg/protocol"
)

// Event types carried on the wire.
const (
	TypeStatus         = "apollo.hmi.status"
	TypeDrivingRequest = "apollo.hmi.pad"
	TypeDriveEvent     = "apollo.hmi.drive_event"
)

type sender interface {
	Send(ctx context.Context, event cloudevents.Event) cloudevents.Result
}

// Emitter publishes supervisor messages to a single HTTP target. A nil
// Emitter is valid and drops everything, which keeps the worker decoupled
// from transport configuration.
type Emitter struct {
	client sender
	source string
}

// New creates an Emitter delivering to target. An empty target returns nil:
// emission is disabled.
func New(target, source string) (*Emitter, error) {
	if target == "" {
		return nil, nil
	}
	client, err := cloudevents.NewClientHTTP(cloudevents.WithTarget(target))
	if err != nil {
		return nil, errors.New(errors.ErrCodeEmitFailed, "NewEmitter",
			"cannot create cloudevents client for "+target, err)
	}
	return &Emitter{client: client, source: source}, nil
}

// WriteStatus emits a status snapshot.
func (e *Emitter) WriteStatus(st *protocol.StatusRecord) error {
	return e.send(TypeStatus, st)
}

// WriteDrivingRequest emits a pad message of the driving-mode handshake.
func (e *Emitter) WriteDrivingRequest(req protocol.DrivingRequest) error {
	return e.send(TypeDrivingRequest, req)
}

// WriteDriveEvent emits an operator-submitted drive event.
func (e *Emitter) WriteDriveEvent(ev protocol.DriveEvent) error {
	return e.send(TypeDriveEvent, ev)
}

func (e *Emitter) send(eventType string, data any) error {
	if e == nil {
		return nil
	}
	event, err := build(eventType, e.source, data)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if result := e.client.Send(ctx, event); cloudevents.IsUndelivered(result) {
		logger.Log.Error("Event undelivered", "type", eventType, "err", result)
		return errors.New(errors.ErrCodeEmitFailed, "Emit",
			"undelivered "+eventType, result)
	}
	return nil
}

// build assembles a CloudEvent envelope around the payload.
func build(eventType, source string, data any) (cloudevents.Event, error) {
	event := cloudevents.NewEvent()
	event.SetID(uuid.NewString())
	event.SetSource(source)
	event.SetType(eventType)
	event.SetTime(time.Now())
	if err := event.SetData(cloudevents.ApplicationJSON, data); err != nil {
		return event, errors.New(errors.ErrCodeEmitFailed, "Emit",
			"cannot encode "+eventType, err)
	}
	return event, nil
}
