package analytics

import (
	"context"
	"log"
	"sync"
	"time"

	"linklytics-be/internal/entities"
)

// Writer persists one click event.
type Writer interface {
	Insert(ctx context.Context, evt *entities.ClickEvent) error
}

// Sink is the explicit hand-off point for fire-and-forget click persistence.
// Workers resolve the event's ClientIP to a location before writing, keeping
// the geo lookup off the redirect path. Delivery is at most once: a full
// buffer drops the event, a failed write is logged and swallowed, and neither
// ever reaches the visitor.
type Sink struct {
	writer Writer
	geo    Locator
	events chan *entities.ClickEvent
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewSink starts a sink with the given buffer size and worker count.
// geo may be nil, in which case events keep their Unknown location.
func NewSink(writer Writer, geo Locator, queueSize, workers int) *Sink {
	if queueSize < 1 {
		queueSize = 1
	}
	if workers < 1 {
		workers = 1
	}

	s := &Sink{
		writer: writer,
		geo:    geo,
		events: make(chan *entities.ClickEvent, queueSize),
	}

	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go s.run()
	}

	return s
}

// Enqueue hands a click event to the background workers without blocking the
// caller. Returns false when the event was dropped, either because the buffer
// is full or the sink has been shut down. Safe to call concurrently with
// Shutdown.
func (s *Sink) Enqueue(evt *entities.ClickEvent) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		log.Printf("click sink closed, dropping event for %s", evt.ShortCode)
		return false
	}

	select {
	case s.events <- evt:
		return true
	default:
		log.Printf("click sink buffer full, dropping event for %s", evt.ShortCode)
		return false
	}
}

func (s *Sink) run() {
	defer s.wg.Done()

	for evt := range s.events {
		if s.geo != nil && evt.ClientIP != "" {
			evt.Country, evt.City = s.geo.Lookup(evt.ClientIP)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.writer.Insert(ctx, evt); err != nil {
			// The error sink for the async path: log only, never propagate.
			log.Printf("failed to save click for %s: %v", evt.ShortCode, err)
		}
		cancel()
	}
}

// Shutdown stops accepting events and waits for the workers to drain the
// buffer, up to the given timeout. Late Enqueue calls are dropped, not
// panicked on.
func (s *Sink) Shutdown(timeout time.Duration) {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		log.Printf("click sink shutdown timed out, events may be lost")
	}
}
