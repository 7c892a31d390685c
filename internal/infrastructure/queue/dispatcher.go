package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gympulse/gateway/internal/core/domain"
	"github.com/gympulse/gateway/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ErrQueueFull is returned by Record when the target worker's buffer is full.
var ErrQueueFull = errors.New("activity queue full")

// Dispatcher hands session events to a fixed set of workers so that audit
// writes never block a request. Events of one session always land on the same
// worker and are written in order.
type Dispatcher struct {
	workers []chan domain.SessionEvent
	next    ports.ActivitySink
	log     zerolog.Logger
	wg      sync.WaitGroup
}

var _ ports.ActivitySink = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher forwarding to next. If numWorkers <= 0,
// defaultWorkers is used.
func NewDispatcher(numWorkers int, next ports.ActivitySink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.SessionEvent, numWorkers),
		next:    next,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SessionEvent, channelBuffer)
	}
	return d
}

// Start launches the workers. Once ctx is cancelled each worker flushes what
// is already buffered and exits.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record enqueues the event without blocking.
func (d *Dispatcher) Record(_ context.Context, event domain.SessionEvent) error {
	select {
	case d.workers[d.shardIndex(event.SessionKey)] <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) shardIndex(sessionKey string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionKey))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.SessionEvent) {
	defer d.wg.Done()
	writeCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case event := <-ch:
					d.write(writeCtx, id, event)
				default:
					return
				}
			}
		case event := <-ch:
			d.write(writeCtx, id, event)
		}
	}
}

func (d *Dispatcher) write(ctx context.Context, id int, event domain.SessionEvent) {
	if err := d.next.Record(ctx, event); err != nil {
		d.log.Error().Err(err).
			Str("session", event.SessionKey).
			Str("event", string(event.Type)).
			Int("worker_id", id).
			Msg("activity write failed")
	}
}
