package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"dossier/pkg/requestcontext"
)

const (
	defaultBufferSize  = 1024
	defaultSinkTimeout = 5 * time.Second
)

// Publisher delivers events to its sinks asynchronously. Record never
// blocks the caller: events go through a bounded inbox and a background
// worker; when the inbox is full the event is dropped and counted. A slow
// or failing sink therefore cannot delay or fail the operation that emitted
// the event.
type Publisher struct {
	sinks  []Store
	inbox  chan Event
	logger *slog.Logger

	mu      sync.Mutex
	dropped int64

	stop    chan struct{}
	stopped sync.Once
	drainWG sync.WaitGroup
}

// NewPublisher creates an async publisher over the given sinks and starts
// its worker. Call Close to flush and stop.
func NewPublisher(logger *slog.Logger, sinks ...Store) *Publisher {
	p := &Publisher{
		sinks:  sinks,
		inbox:  make(chan Event, defaultBufferSize),
		logger: logger,
		stop:   make(chan struct{}),
	}
	p.drainWG.Add(1)
	go p.run()
	return p
}

// Record enqueues an event, filling in ID, timestamp, and request ID from
// context when absent. Fire-and-forget: a full inbox drops the event and
// Record still returns nil, so emitters never fail on audit pressure.
func (p *Publisher) Record(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	select {
	case p.inbox <- event:
	default:
		p.mu.Lock()
		p.dropped++
		dropped := p.dropped
		p.mu.Unlock()
		if p.logger != nil {
			p.logger.Warn("audit inbox full, event dropped",
				"action", event.Action,
				"entity_id", event.EntityID,
				"dropped_total", dropped,
			)
		}
	}
	return nil
}

// Dropped returns the number of events lost to a full inbox.
func (p *Publisher) Dropped() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Close stops the worker after draining buffered events.
func (p *Publisher) Close() {
	p.stopped.Do(func() { close(p.stop) })
	p.drainWG.Wait()
}

func (p *Publisher) run() {
	defer p.drainWG.Done()
	for {
		select {
		case event := <-p.inbox:
			p.deliver(event)
		case <-p.stop:
			// Drain whatever is already buffered, then exit.
			for {
				select {
				case event := <-p.inbox:
					p.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) deliver(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultSinkTimeout)
	defer cancel()
	for _, sink := range p.sinks {
		if err := sink.Append(ctx, event); err != nil && p.logger != nil {
			p.logger.Error("audit sink append failed",
				"action", event.Action,
				"entity_id", event.EntityID,
				"error", err,
			)
		}
	}
}
