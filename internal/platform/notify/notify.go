// Package notify delivers best-effort study lifecycle events. Delivery
// never blocks the caller and failures are only logged.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/studypath/internal/platform/logger"
)

type Event string

const (
	EventStudyCreated    Event = "study_created"
	EventUploadProcessed Event = "upload_processed"
	EventStudyGenerated  Event = "study_generated"
)

type Message struct {
	Event   Event `json:"event"`
	Payload any   `json:"payload"`
}

// Sink is one delivery target.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, msg Message) error
}

// Notifier sends events without waiting for delivery.
type Notifier interface {
	Notify(event Event, payload any)
}

const defaultDeliveryTimeout = 10 * time.Second

// Dispatcher fans each event out to its sinks on a background goroutine.
// With no sinks it is a no-op.
type Dispatcher struct {
	log     *logger.Logger
	sinks   []Sink
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(log *logger.Logger, sinks ...Sink) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	kept := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &Dispatcher{
		log:     log.With("service", "Notifier"),
		sinks:   kept,
		timeout: defaultDeliveryTimeout,
	}
}

// Noop returns a Notifier that drops every event.
func Noop() Notifier { return NewDispatcher(nil) }

func (d *Dispatcher) Notify(event Event, payload any) {
	if d == nil || len(d.sinks) == 0 {
		return
	}
	msg := Message{Event: event, Payload: payload}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		for _, s := range d.sinks {
			if err := s.Deliver(ctx, msg); err != nil {
				d.log.Warn("notification delivery failed", "sink", s.Name(), "event", event, "error", err)
				continue
			}
			d.log.Debug("notification delivered", "sink", s.Name(), "event", event)
		}
	}()
}

// Wait blocks until in-flight deliveries finish. Used on shutdown and in tests.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
