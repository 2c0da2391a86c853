package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/garyjia/surat-menyurat/internal/domain/event"
)

// mockLogger implements Logger for testing
type mockLogger struct {
	mu      sync.Mutex
	infos   []string
	errors  []string
	entries []map[string]interface{}
}

func (m *mockLogger) record(level, msg string, keysAndValues []interface{}) {
	entry := map[string]interface{}{"msg": msg, "level": level}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		entry[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	m.entries = append(m.entries, entry)
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
	m.record("info", msg, keysAndValues)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
	m.record("error", msg, keysAndValues)
}

func (m *mockLogger) ErrorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errors)
}

func (m *mockLogger) HasInfo(msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, info := range m.infos {
		if info == msg {
			return true
		}
	}
	return false
}

func (m *mockLogger) EntriesFor(msg string) []map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []map[string]interface{}
	for _, e := range m.entries {
		if e["msg"] == msg {
			out = append(out, e)
		}
	}
	return out
}

func newLetterEvent(t event.Type) *event.Event {
	return event.NewEvent(t, "L1", "u1", nil)
}

func noop(ctx context.Context, evt *event.Event) error { return nil }

func TestSubscribe(t *testing.T) {
	t.Run("subscribes multiple handlers to same event type", func(t *testing.T) {
		d := NewDispatcher()
		called1, called2 := false, false

		d.Subscribe(event.TypeLetterSubmitted, func(ctx context.Context, evt *event.Event) error {
			called1 = true
			return nil
		})
		d.Subscribe(event.TypeLetterSubmitted, func(ctx context.Context, evt *event.Event) error {
			called2 = true
			return nil
		})

		if err := d.Dispatch(context.Background(), newLetterEvent(event.TypeLetterSubmitted)); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
		if !called1 || !called2 {
			t.Error("expected both handlers to be called")
		}

		handlers := d.ListHandlers(event.TypeLetterSubmitted)
		if len(handlers) != 2 || handlers[0].Name == handlers[1].Name {
			t.Errorf("expected two distinctly named handlers, got %+v", handlers)
		}
	})

	t.Run("logs named registration", func(t *testing.T) {
		logger := &mockLogger{}
		d := NewDispatcher(WithLogger(logger))

		d.SubscribeNamed(event.TypeLetterApproved, "cc-notify", noop)

		if !logger.HasInfo("Handler registered") {
			t.Error("expected registration to be logged")
		}
	})
}

func TestUnsubscribe(t *testing.T) {
	d := NewDispatcher()
	called1, called2 := false, false

	d.SubscribeNamed(event.TypeLetterSent, "handler-1", func(ctx context.Context, evt *event.Event) error {
		called1 = true
		return nil
	})
	d.SubscribeNamed(event.TypeLetterSent, "handler-2", func(ctx context.Context, evt *event.Event) error {
		called2 = true
		return nil
	})

	d.Unsubscribe(event.TypeLetterSent, "handler-1")

	if err := d.Dispatch(context.Background(), newLetterEvent(event.TypeLetterSent)); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if called1 {
		t.Error("expected handler-1 not to be called")
	}
	if !called2 {
		t.Error("expected handler-2 to be called")
	}
}

func TestDispatch(t *testing.T) {
	t.Run("runs handlers in order", func(t *testing.T) {
		d := NewDispatcher()
		var order []int

		d.Subscribe(event.TypeLetterApproved, func(ctx context.Context, evt *event.Event) error {
			order = append(order, 1)
			return nil
		})
		d.Subscribe(event.TypeLetterApproved, func(ctx context.Context, evt *event.Event) error {
			order = append(order, 2)
			return nil
		})

		if err := d.Dispatch(context.Background(), newLetterEvent(event.TypeLetterApproved)); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
		if len(order) != 2 || order[0] != 1 || order[1] != 2 {
			t.Errorf("expected handlers to run in order [1, 2], got %v", order)
		}
	})

	t.Run("stops at first error", func(t *testing.T) {
		d := NewDispatcher()
		expectedErr := errors.New("handler error")
		called := false

		d.Subscribe(event.TypeLetterApproved, func(ctx context.Context, evt *event.Event) error {
			return expectedErr
		})
		d.Subscribe(event.TypeLetterApproved, func(ctx context.Context, evt *event.Event) error {
			called = true
			return nil
		})

		err := d.Dispatch(context.Background(), newLetterEvent(event.TypeLetterApproved))
		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error to wrap %v, got %v", expectedErr, err)
		}
		if called {
			t.Error("expected second handler not to be called after first error")
		}
	})

	t.Run("recovers from handler panic", func(t *testing.T) {
		logger := &mockLogger{}
		d := NewDispatcher(WithLogger(logger))

		d.Subscribe(event.TypeLetterRejected, func(ctx context.Context, evt *event.Event) error {
			panic("boom")
		})

		if err := d.Dispatch(context.Background(), newLetterEvent(event.TypeLetterRejected)); err == nil {
			t.Fatal("expected error from panic recovery")
		}
		if logger.ErrorCount() == 0 {
			t.Error("expected panic to be logged as error")
		}
	})

	t.Run("rejects events after close", func(t *testing.T) {
		d := NewDispatcher()
		if err := d.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}
		if err := d.Dispatch(context.Background(), newLetterEvent(event.TypeLetterSent)); err == nil {
			t.Fatal("expected error when dispatching to closed dispatcher")
		}
	})
}

func TestDispatchAsync(t *testing.T) {
	t.Run("close waits for handlers", func(t *testing.T) {
		d := NewDispatcher()
		var called atomic.Int32

		for i := 0; i < 2; i++ {
			d.Subscribe(event.TypeLetterSigned, func(ctx context.Context, evt *event.Event) error {
				time.Sleep(10 * time.Millisecond)
				called.Add(1)
				return nil
			})
		}

		d.DispatchAsync(context.Background(), newLetterEvent(event.TypeLetterSigned))

		if err := d.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}
		if called.Load() != 2 {
			t.Errorf("expected 2 handlers to be called, got %d", called.Load())
		}
	})

	t.Run("handlers outlive request cancellation", func(t *testing.T) {
		d := NewDispatcher()
		var sawCancel atomic.Bool

		d.Subscribe(event.TypeLetterSent, func(ctx context.Context, evt *event.Event) error {
			time.Sleep(20 * time.Millisecond)
			if ctx.Err() != nil {
				sawCancel.Store(true)
			}
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		d.DispatchAsync(ctx, newLetterEvent(event.TypeLetterSent))
		cancel()

		if err := d.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}
		if sawCancel.Load() {
			t.Error("async handler should not observe the caller's cancellation")
		}
	})

	t.Run("errors and panics are logged", func(t *testing.T) {
		logger := &mockLogger{}
		d := NewDispatcher(WithLogger(logger))
		var called atomic.Int32

		d.Subscribe(event.TypeLetterReturned, func(ctx context.Context, evt *event.Event) error {
			return errors.New("handler error")
		})
		d.Subscribe(event.TypeLetterReturned, func(ctx context.Context, evt *event.Event) error {
			panic("async panic")
		})
		d.Subscribe(event.TypeLetterReturned, func(ctx context.Context, evt *event.Event) error {
			called.Add(1)
			return nil
		})

		d.DispatchAsync(context.Background(), newLetterEvent(event.TypeLetterReturned))
		if err := d.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}

		if called.Load() != 1 {
			t.Errorf("expected healthy handler to run once, got %d", called.Load())
		}
		if logger.ErrorCount() < 2 {
			t.Errorf("expected error and panic to be logged, got %d errors", logger.ErrorCount())
		}
	})

	t.Run("ignored after close", func(t *testing.T) {
		logger := &mockLogger{}
		d := NewDispatcher(WithLogger(logger))
		var called atomic.Int32

		d.Subscribe(event.TypeLetterArchived, func(ctx context.Context, evt *event.Event) error {
			called.Add(1)
			return nil
		})
		if err := d.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}

		d.DispatchAsync(context.Background(), newLetterEvent(event.TypeLetterArchived))
		time.Sleep(20 * time.Millisecond)

		if called.Load() > 0 {
			t.Error("expected handler not to be called after close")
		}
		if logger.ErrorCount() == 0 {
			t.Error("expected error log for dispatching to closed dispatcher")
		}
	})
}

func TestListHandlers_HidesFunctions(t *testing.T) {
	d := NewDispatcher()
	d.SubscribeNamed(event.TypeLetterForwarded, "audit", noop)
	d.SubscribeNamed(event.TypeLetterApproved, "other", noop)

	handlers := d.ListHandlers(event.TypeLetterForwarded)
	if len(handlers) != 1 {
		t.Fatalf("expected 1 handler, got %d", len(handlers))
	}
	if handlers[0].Name != "audit" || handlers[0].EventType != event.TypeLetterForwarded {
		t.Errorf("unexpected handler info %+v", handlers[0])
	}
	if handlers[0].Handler != nil {
		t.Error("expected handler function not to be exposed")
	}
	if len(d.ListHandlers(event.TypeLetterSent)) != 0 {
		t.Error("expected no handlers for unregistered type")
	}
}

func TestClose_Twice(t *testing.T) {
	d := NewDispatcher()
	if err := d.Close(); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := d.Close(); err == nil {
		t.Fatal("expected error on second close")
	}
}

func TestConcurrentSubscribeAndDispatch(t *testing.T) {
	d := NewDispatcher()
	var called atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			d.SubscribeNamed(event.TypeLetterSubmitted, fmt.Sprintf("handler-%d", id), func(ctx context.Context, evt *event.Event) error {
				called.Add(1)
				return nil
			})
		}(i)
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = d.Dispatch(context.Background(), newLetterEvent(event.TypeLetterSubmitted))
		}()
	}
	wg.Wait()

	if called.Load() != 50 {
		t.Errorf("expected 50 handler calls, got %d", called.Load())
	}
}

func TestCCNotifyHandler(t *testing.T) {
	t.Run("logs one line per recipient", func(t *testing.T) {
		logger := &mockLogger{}
		var gotIDs []string
		h := NewCCNotifyHandler(logger, func(ctx context.Context, ids []string) ([]CCRecipient, error) {
			gotIDs = ids
			return []CCRecipient{
				{MemberID: "3", Name: "Sari", Email: "sari@example.org"},
				{MemberID: "4", Name: "Budi"},
			}, nil
		})

		evt := event.NewEvent(event.TypeLetterApproved, "L9", "u2", map[string]interface{}{
			"cc":              []string{"3", "4"},
			"referenceNumber": "SU/2025/0ABC",
		})
		if err := h(context.Background(), evt); err != nil {
			t.Fatalf("handler failed: %v", err)
		}

		if len(gotIDs) != 2 {
			t.Errorf("expected resolver to receive 2 ids, got %v", gotIDs)
		}
		entries := logger.EntriesFor("Tembusan notification")
		if len(entries) != 2 {
			t.Fatalf("expected 2 notification lines, got %d", len(entries))
		}
		if entries[0]["letter_id"] != "L9" || entries[0]["reference_number"] != "SU/2025/0ABC" {
			t.Errorf("unexpected log entry %+v", entries[0])
		}
	})

	t.Run("no cc means no lookup", func(t *testing.T) {
		logger := &mockLogger{}
		h := NewCCNotifyHandler(logger, func(ctx context.Context, ids []string) ([]CCRecipient, error) {
			t.Error("resolver should not be called")
			return nil, nil
		})
		if err := h(context.Background(), newLetterEvent(event.TypeLetterApproved)); err != nil {
			t.Fatalf("handler failed: %v", err)
		}
	})

	t.Run("resolver error propagates", func(t *testing.T) {
		h := NewCCNotifyHandler(&mockLogger{}, func(ctx context.Context, ids []string) ([]CCRecipient, error) {
			return nil, errors.New("members unavailable")
		})
		evt := event.NewEvent(event.TypeLetterApproved, "L1", "u1", map[string]interface{}{"cc": []string{"1"}})
		if err := h(context.Background(), evt); err == nil {
			t.Fatal("expected resolver error")
		}
	})
}

func TestAuditLogHandler(t *testing.T) {
	logger := &mockLogger{}
	h := NewAuditLogHandler(logger)

	submitted := event.NewEvent(event.TypeLetterSubmitted, "L1", "u1", map[string]interface{}{"steps": 2})
	signed := event.NewEvent(event.TypeLetterSigned, "L1", "u2", map[string]interface{}{"signatures": float64(1)})
	archived := event.NewEvent(event.TypeLetterArchived, "L1", "admin", nil)
	for _, evt := range []*event.Event{submitted, signed, archived} {
		if err := h(context.Background(), evt); err != nil {
			t.Fatalf("handler failed: %v", err)
		}
	}

	entries := logger.EntriesFor("Letter transition")
	if len(entries) != 3 {
		t.Fatalf("expected 3 audit lines, got %d", len(entries))
	}
	if entries[0]["steps"] != int64(2) {
		t.Errorf("steps = %v, want 2", entries[0]["steps"])
	}
	if entries[1]["signatures"] != int64(1) {
		t.Errorf("signatures = %v, want 1", entries[1]["signatures"])
	}
	if _, ok := entries[2]["steps"]; ok {
		t.Errorf("archive line should carry no counters: %+v", entries[2])
	}
}
