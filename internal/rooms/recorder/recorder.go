// Package recorder delivers start/stop signals to the external recording
// backend off the request path.
//
// Dispatch is asynchronous with its own retry policy: a failed delivery
// never rolls back the room's recording flag, and a full queue drops the
// signal rather than block the caller.
package recorder

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/louisbranch/gather.space/internal/platform/timeouts"
	"github.com/louisbranch/gather.space/internal/rooms/storage"
)

// Action is a recording backend command.
type Action string

const (
	// ActionStart begins recording a room.
	ActionStart Action = "start"
	// ActionStop ends recording a room.
	ActionStop Action = "stop"
)

// Signal is one start/stop command keyed by room and sharing destination.
type Signal struct {
	RoomID string
	Target string
	Action Action
}

// Egress is the external recording backend boundary.
type Egress interface {
	StartRecording(ctx context.Context, roomID, target string) error
	StopRecording(ctx context.Context, roomID, target string) error
}

// Config controls queueing and retry behavior for signal delivery.
type Config struct {
	QueueSize      int
	MaxAttempts    int
	RetryBackoff   time.Duration
	RetryMaxDelay  time.Duration
	AttemptTimeout time.Duration
}

func (c Config) normalized() Config {
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 2 * time.Second
	}
	if c.RetryMaxDelay <= 0 {
		c.RetryMaxDelay = 30 * time.Second
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = timeouts.RecordingSignal
	}
	return c
}

// Dispatcher queues signals and delivers them on a background loop.
type Dispatcher struct {
	egress   Egress
	attempts storage.SignalStore
	cfg      Config
	queue    chan Signal
	logf     func(format string, args ...any)
}

// New creates a dispatcher for the given egress. The attempt store is
// optional; when present, every delivery outcome is recorded best effort.
func New(egress Egress, attempts storage.SignalStore, cfg Config) *Dispatcher {
	cfg = cfg.normalized()
	return &Dispatcher{
		egress:   egress,
		attempts: attempts,
		cfg:      cfg,
		queue:    make(chan Signal, cfg.QueueSize),
		logf:     log.Printf,
	}
}

// Enqueue hands a signal to the background loop without blocking. It reports
// false when the queue is full and the signal was dropped.
func (d *Dispatcher) Enqueue(signal Signal) bool {
	if d == nil {
		return false
	}
	select {
	case d.queue <- signal:
		return true
	default:
		d.logf("recorder: queue full, dropping %s signal for room %s", signal.Action, signal.RoomID)
		return false
	}
}

// Run processes queued signals until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	if d == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case signal := <-d.queue:
			d.deliver(ctx, signal)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, signal Signal) {
	var lastErr error
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, d.cfg.AttemptTimeout)
		err := d.send(attemptCtx, signal)
		cancel()

		d.recordAttempt(signal, attempt, err)
		if err == nil {
			return
		}
		lastErr = err
		d.logf("recorder: %s signal for room %s attempt %d/%d: %v",
			signal.Action, signal.RoomID, attempt, d.cfg.MaxAttempts, err)

		if attempt == d.cfg.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.backoffDelay(attempt)):
		}
	}
	d.logf("recorder: giving up on %s signal for room %s: %v", signal.Action, signal.RoomID, lastErr)
}

func (d *Dispatcher) send(ctx context.Context, signal Signal) error {
	if d.egress == nil {
		return fmt.Errorf("recording egress is not configured")
	}
	switch signal.Action {
	case ActionStart:
		return d.egress.StartRecording(ctx, signal.RoomID, signal.Target)
	case ActionStop:
		return d.egress.StopRecording(ctx, signal.RoomID, signal.Target)
	default:
		return fmt.Errorf("unknown recording action %q", signal.Action)
	}
}

func (d *Dispatcher) recordAttempt(signal Signal, attempt int, deliveryErr error) {
	if d.attempts == nil {
		return
	}
	record := storage.SignalAttempt{
		RoomID:    signal.RoomID,
		Action:    string(signal.Action),
		Target:    signal.Target,
		Outcome:   "delivered",
		Attempt:   attempt,
		CreatedAt: time.Now().UTC(),
	}
	if deliveryErr != nil {
		record.Outcome = "failed"
		record.LastError = deliveryErr.Error()
	}
	if err := d.attempts.RecordSignalAttempt(context.Background(), record); err != nil {
		d.logf("recorder: record signal attempt for room %s: %v", signal.RoomID, err)
	}
}

// backoffDelay doubles the base delay per attempt, capped at RetryMaxDelay.
func (d *Dispatcher) backoffDelay(attempt int) time.Duration {
	delay := d.cfg.RetryBackoff
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= d.cfg.RetryMaxDelay {
			return d.cfg.RetryMaxDelay
		}
	}
	if delay > d.cfg.RetryMaxDelay {
		return d.cfg.RetryMaxDelay
	}
	return delay
}
