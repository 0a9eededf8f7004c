// Package receiver accepts the inbound monitor and chassis feeds as
// CloudEvents over HTTP and hands them to the ingestor.
package receiver

import (
	"context"

	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/keybox9823/apollo/internal/ingest"
	"github.com/keybox9823/apollo/pkg/errors"
	"github.com/keybox9823/apollo/pkg/logger"
	"github.com/keybox9823/apollo/pkg/protocol"
)

// Event types accepted on the wire.
const (
	TypeSystemStatus = "apollo.monitor.system_status"
	TypeChassis      = "apollo.canbus.chassis"
)

// Receiver listens for feed deliveries and merges them through the ingestor.
type Receiver struct {
	client cloudevents.Client
	ing    *ingest.Ingestor
}

// New creates a Receiver listening on the given port.
func New(port int, ing *ingest.Ingestor) (*Receiver, error) {
	client, err := cloudevents.NewClientHTTP(cloudevents.WithPort(port))
	if err != nil {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "NewReceiver",
			"cannot create cloudevents receiver", err)
	}
	return &Receiver{client: client, ing: ing}, nil
}

// Run blocks receiving events until the context is cancelled.
func (r *Receiver) Run(ctx context.Context) error {
	return r.client.StartReceiver(ctx, r.handle)
}

func (r *Receiver) handle(_ context.Context, event cloudevents.Event) {
	switch event.Type() {
	case TypeSystemStatus:
		var msg protocol.SystemStatus
		if err := event.DataAs(&msg); err != nil {
			logger.Log.Error("Malformed system status event", "err", err)
			return
		}
		r.ing.ApplySystemStatus(&msg)
	case TypeChassis:
		var msg protocol.VehicleTelemetry
		if err := event.DataAs(&msg); err != nil {
			logger.Log.Error("Malformed chassis event", "err", err)
			return
		}
		r.ing.ApplyVehicleTelemetry(&msg)
	default:
		logger.Log.Warn("Ignoring event of unknown type", "type", event.Type())
	}
}
