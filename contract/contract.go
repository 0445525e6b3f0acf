package contract

import (
	"context"
	"reflect"

	"game-relay/domain"
)

// Envelope is one outbound protocol message: an event name plus its payload.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// EventSink is a connection's outbound channel. Delivery is best-effort:
// the relay never waits for confirmation and a failed Consume must not
// abort the lifecycle sequence that produced it.
type EventSink interface {
	Consume(ctx context.Context, e Envelope) error
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type WorkerName string

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker
// interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Stats is the registry occupancy snapshot handed to observability.
type Stats struct {
	Rooms     int
	Occupants int
	Sessions  int
}

// StatsSource lets telemetry read occupancy counters without ever touching
// live room state.
type StatsSource interface {
	Stats() Stats
}

// IController is the transport-facing surface of the lifecycle controller.
type IController interface {
	Connect(ctx context.Context, connID string, sink EventSink)
	Disconnect(ctx context.Context, connID string)
	CreateRoom(ctx context.Context, connID, name, kind string)
	JoinRoom(ctx context.Context, connID, name string)
	Update(ctx context.Context, connID, channel string, data domain.State)
}
