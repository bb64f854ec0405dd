package recorder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/louisbranch/gather.space/internal/rooms/storage"
)

type fakeEgress struct {
	mu        sync.Mutex
	failures  int
	starts    []Signal
	stops     []Signal
	delivered chan struct{}
}

func newFakeEgress(failures int) *fakeEgress {
	return &fakeEgress{failures: failures, delivered: make(chan struct{}, 16)}
}

func (f *fakeEgress) StartRecording(ctx context.Context, roomID, target string) error {
	return f.record(ActionStart, roomID, target)
}

func (f *fakeEgress) StopRecording(ctx context.Context, roomID, target string) error {
	return f.record(ActionStop, roomID, target)
}

func (f *fakeEgress) record(action Action, roomID, target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("egress unreachable")
	}
	signal := Signal{RoomID: roomID, Target: target, Action: action}
	if action == ActionStart {
		f.starts = append(f.starts, signal)
	} else {
		f.stops = append(f.stops, signal)
	}
	f.delivered <- struct{}{}
	return nil
}

type memorySignalStore struct {
	mu       sync.Mutex
	attempts []storage.SignalAttempt
}

func (m *memorySignalStore) RecordSignalAttempt(ctx context.Context, attempt storage.SignalAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, attempt)
	return nil
}

func (m *memorySignalStore) ListSignalAttempts(ctx context.Context, roomID string, limit int) ([]storage.SignalAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]storage.SignalAttempt(nil), m.attempts...), nil
}

func testConfig() Config {
	return Config{
		QueueSize:      4,
		MaxAttempts:    3,
		RetryBackoff:   time.Millisecond,
		RetryMaxDelay:  5 * time.Millisecond,
		AttemptTimeout: time.Second,
	}
}

func waitDelivered(t *testing.T, egress *fakeEgress) {
	t.Helper()
	select {
	case <-egress.delivered:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestDispatcherDeliversStartSignal(t *testing.T) {
	egress := newFakeEgress(0)
	dispatcher := New(egress, nil, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Run(ctx)

	if !dispatcher.Enqueue(Signal{RoomID: "room-1", Target: "shared-drive", Action: ActionStart}) {
		t.Fatal("enqueue should succeed")
	}
	waitDelivered(t, egress)

	egress.mu.Lock()
	defer egress.mu.Unlock()
	if len(egress.starts) != 1 {
		t.Fatalf("starts = %d, want 1", len(egress.starts))
	}
	if egress.starts[0].Target != "shared-drive" {
		t.Fatalf("target = %q, want shared-drive", egress.starts[0].Target)
	}
}

func TestDispatcherRetriesUntilSuccess(t *testing.T) {
	egress := newFakeEgress(2)
	attempts := &memorySignalStore{}
	dispatcher := New(egress, attempts, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Run(ctx)

	dispatcher.Enqueue(Signal{RoomID: "room-1", Target: "shared-drive", Action: ActionStop})
	waitDelivered(t, egress)

	egress.mu.Lock()
	stops := len(egress.stops)
	egress.mu.Unlock()
	if stops != 1 {
		t.Fatalf("stops = %d, want 1", stops)
	}

	// Two failed attempts recorded, then one delivered.
	deadline := time.Now().Add(5 * time.Second)
	for {
		records, _ := attempts.ListSignalAttempts(context.Background(), "room-1", 10)
		if len(records) == 3 {
			if records[0].Outcome != "failed" || records[2].Outcome != "delivered" {
				t.Fatalf("unexpected attempt outcomes: %+v", records)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("attempt records = %d, want 3", len(records))
		}
		time.Sleep(time.Millisecond)
	}
}

func TestDispatcherGivesUpAfterMaxAttempts(t *testing.T) {
	egress := newFakeEgress(100)
	attempts := &memorySignalStore{}
	dispatcher := New(egress, attempts, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Run(ctx)

	dispatcher.Enqueue(Signal{RoomID: "room-1", Target: "shared-drive", Action: ActionStart})

	deadline := time.Now().Add(5 * time.Second)
	for {
		records, _ := attempts.ListSignalAttempts(context.Background(), "room-1", 10)
		if len(records) == 3 {
			for _, record := range records {
				if record.Outcome != "failed" {
					t.Fatalf("outcome = %q, want failed", record.Outcome)
				}
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("attempt records = %d, want 3", len(records))
		}
		time.Sleep(time.Millisecond)
	}
}

func TestEnqueueDropsWhenQueueFull(t *testing.T) {
	egress := newFakeEgress(0)
	cfg := testConfig()
	cfg.QueueSize = 1
	dispatcher := New(egress, nil, cfg)
	// No Run loop: the queue never drains.

	if !dispatcher.Enqueue(Signal{RoomID: "room-1", Action: ActionStart}) {
		t.Fatal("first enqueue should succeed")
	}
	if dispatcher.Enqueue(Signal{RoomID: "room-2", Action: ActionStart}) {
		t.Fatal("second enqueue should drop")
	}
}

func TestBackoffDelayCapped(t *testing.T) {
	dispatcher := New(newFakeEgress(0), nil, Config{
		RetryBackoff:  time.Second,
		RetryMaxDelay: 3 * time.Second,
	})

	if got := dispatcher.backoffDelay(1); got != time.Second {
		t.Fatalf("attempt 1 delay = %v, want 1s", got)
	}
	if got := dispatcher.backoffDelay(2); got != 2*time.Second {
		t.Fatalf("attempt 2 delay = %v, want 2s", got)
	}
	if got := dispatcher.backoffDelay(3); got != 3*time.Second {
		t.Fatalf("attempt 3 delay = %v, want cap", got)
	}
	if got := dispatcher.backoffDelay(10); got != 3*time.Second {
		t.Fatalf("attempt 10 delay = %v, want cap", got)
	}
}
