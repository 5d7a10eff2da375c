package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"linklytics-be/internal/entities"
)

type captureWriter struct {
	mu     sync.Mutex
	events []*entities.ClickEvent
	err    error
}

func (w *captureWriter) Insert(_ context.Context, evt *entities.ClickEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.events = append(w.events, evt)
	return nil
}

func (w *captureWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.events)
}

type stubLocator struct {
	country string
	city    string
}

func (s stubLocator) Lookup(_ string) (string, string) {
	return s.country, s.city
}

func TestSinkDeliversEvents(t *testing.T) {
	writer := &captureWriter{}
	sink := NewSink(writer, nil, 16, 2)

	for i := 0; i < 5; i++ {
		if ok := sink.Enqueue(&entities.ClickEvent{ShortCode: "abc123"}); !ok {
			t.Fatalf("enqueue %d rejected with room in the buffer", i)
		}
	}

	sink.Shutdown(2 * time.Second)

	if got := writer.count(); got != 5 {
		t.Errorf("delivered %d events, want 5", got)
	}
}

func TestSinkResolvesGeoBeforeWriting(t *testing.T) {
	writer := &captureWriter{}
	sink := NewSink(writer, stubLocator{country: "IN", city: "Mumbai"}, 16, 1)

	sink.Enqueue(&entities.ClickEvent{
		ShortCode: "abc123",
		ClientIP:  "203.0.113.7",
		Country:   "Unknown",
		City:      "Unknown",
	})
	sink.Shutdown(2 * time.Second)

	if got := writer.count(); got != 1 {
		t.Fatalf("delivered %d events, want 1", got)
	}
	evt := writer.events[0]
	if evt.Country != "IN" || evt.City != "Mumbai" {
		t.Errorf("Country/City = %q/%q, want resolved location", evt.Country, evt.City)
	}
}

func TestSinkSwallowsWriteErrors(t *testing.T) {
	writer := &captureWriter{err: errors.New("db down")}
	sink := NewSink(writer, nil, 16, 1)

	// Enqueue must not surface the write failure to the caller.
	if ok := sink.Enqueue(&entities.ClickEvent{ShortCode: "abc123"}); !ok {
		t.Fatal("enqueue rejected")
	}

	sink.Shutdown(2 * time.Second)
}

func TestSinkDropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	writer := &blockingWriter{release: release}
	sink := NewSink(writer, nil, 1, 1)

	// First event occupies the worker, second fills the buffer.
	sink.Enqueue(&entities.ClickEvent{ShortCode: "a"})
	writer.waitBusy(t)
	sink.Enqueue(&entities.ClickEvent{ShortCode: "b"})

	dropped := false
	for i := 0; i < 10 && !dropped; i++ {
		dropped = !sink.Enqueue(&entities.ClickEvent{ShortCode: "c"})
	}
	if !dropped {
		t.Error("expected a full buffer to drop events")
	}

	close(release)
	sink.Shutdown(2 * time.Second)
}

func TestSinkEnqueueAfterShutdownDrops(t *testing.T) {
	writer := &captureWriter{}
	sink := NewSink(writer, nil, 16, 1)
	sink.Shutdown(2 * time.Second)

	// A late arrival is dropped, never panicked on.
	if ok := sink.Enqueue(&entities.ClickEvent{ShortCode: "late"}); ok {
		t.Error("enqueue after shutdown reported success")
	}
	if got := writer.count(); got != 0 {
		t.Errorf("delivered %d events after shutdown, want 0", got)
	}
}

func TestSinkShutdownIdempotent(t *testing.T) {
	sink := NewSink(&captureWriter{}, nil, 16, 1)
	sink.Shutdown(2 * time.Second)
	sink.Shutdown(2 * time.Second)
}

type blockingWriter struct {
	release chan struct{}
}

func (w *blockingWriter) Insert(_ context.Context, _ *entities.ClickEvent) error {
	<-w.release
	return nil
}

func (w *blockingWriter) waitBusy(t *testing.T) {
	t.Helper()
	// Give the worker a moment to pick up the first event.
	time.Sleep(50 * time.Millisecond)
}
