package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicops/incident-api/internal/api/metrics"
	"github.com/civicops/incident-api/internal/core/domain"
	"github.com/civicops/incident-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	drainTimeout   = 5 * time.Second
)

// Dispatcher routes incident events to a fixed set of workers using
// consistent hashing on the incident id, so the history of one incident is
// written in publish order.
type Dispatcher struct {
	workers []chan domain.IncidentEvent
	service ports.EventService
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.EventService, log zerolog.Logger) *Dispatcher {
	return newDispatcher(numWorkers, channelBuffer, service, log)
}

func newDispatcher(numWorkers, buffer int, service ports.EventService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.IncidentEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.IncidentEvent, buffer)
	}
	return d
}

// Start launches all worker goroutines. When ctx is cancelled each worker
// records what is still buffered, bounded by drainTimeout, and returns.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(len(d.workers))
	for i, ch := range d.workers {
		go func(id int, ch <-chan domain.IncidentEvent) {
			defer d.wg.Done()
			d.runWorker(ctx, id, ch)
		}(i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Publish hands event to the worker responsible for its incident. It never
// blocks: when that worker's buffer is full the event is dropped and logged.
func (d *Dispatcher) Publish(event domain.IncidentEvent) {
	idx := d.shardIndex(event.IncidentID)
	select {
	case d.workers[idx] <- event:
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.EventsRecordedTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("incident_id", event.IncidentID).
			Str("status", string(event.Status)).
			Int("worker_id", idx).
			Msg("event queue full, dropping history event")
	}
}

// shardIndex maps an incident id deterministically to a worker index.
func (d *Dispatcher) shardIndex(incidentID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(incidentID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.IncidentEvent) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case event := <-ch:
			metrics.EventsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.record(ctx, event, id)
		}
	}
}

func (d *Dispatcher) drain(id int, ch <-chan domain.IncidentEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		select {
		case event := <-ch:
			if ctx.Err() != nil {
				left := len(ch) + 1
				metrics.EventsRecordedTotal.WithLabelValues("dropped").Add(float64(left))
				d.log.Warn().Int("worker_id", id).Int("events", left).Msg("drain timed out, dropping history events")
				return
			}
			d.record(ctx, event, id)
		default:
			metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(0)
			return
		}
	}
}

func (d *Dispatcher) record(ctx context.Context, event domain.IncidentEvent, workerID int) {
	start := time.Now()
	err := d.service.Record(ctx, event)
	metrics.EventRecordDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EventsRecordedTotal.WithLabelValues("error").Inc()
		d.log.Error().Err(err).
			Str("incident_id", event.IncidentID).
			Int("worker_id", workerID).
			Msg("event recording failed")
		return
	}
	metrics.EventsRecordedTotal.WithLabelValues("ok").Inc()
}

// SyncPublisher records events inline on the caller's goroutine.
// It is used when EVENT_WORKERS is 0 and by tests that read history right
// after a mutation.
type SyncPublisher struct {
	Service ports.EventService
	Log     zerolog.Logger
}

func (p SyncPublisher) Publish(event domain.IncidentEvent) {
	if err := p.Service.Record(context.Background(), event); err != nil {
		metrics.EventsRecordedTotal.WithLabelValues("error").Inc()
		p.Log.Error().Err(err).Str("incident_id", event.IncidentID).Msg("event recording failed")
		return
	}
	metrics.EventsRecordedTotal.WithLabelValues("ok").Inc()
}
