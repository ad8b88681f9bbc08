package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/casdu/portal-api/internal/api/metrics"
	"github.com/casdu/portal-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes HR sync jobs to a fixed set of workers using consistent
// hashing on the CID, so two jobs for the same principal never run
// concurrently. Jobs are fire-and-forget: the login request that scheduled
// one never waits for it, and a full queue drops the job rather than
// blocking the request path.
type Dispatcher struct {
	workers []chan ports.HRSyncInput
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.HRSyncInput, numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.HRSyncInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines executing service.Sync. Workers stop
// when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context, service ports.SyncService) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch, service)
	}
}

// Schedule enqueues a sync job without blocking: when the shard's buffer is
// full the job is dropped with a warning. A missed refresh is acceptable,
// a stalled login is not.
func (d *Dispatcher) Schedule(in ports.HRSyncInput) {
	idx := d.shardIndex(in.CID)
	select {
	case d.workers[idx] <- in:
		metrics.SyncQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.HRSyncsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Int64("principal_id", in.PrincipalID).Int("worker_id", idx).Msg("sync queue full, job dropped")
	}
}

// shardIndex maps a CID deterministically to a worker index.
func (d *Dispatcher) shardIndex(cid string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(cid))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.HRSyncInput, service ports.SyncService) {
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-ch:
			if !ok {
				return
			}
			d.process(ctx, id, in, service)
			metrics.SyncQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
		}
	}
}

// process supervises one job: a panic or error inside a sync must never
// escape the worker.
func (d *Dispatcher) process(ctx context.Context, id int, in ports.HRSyncInput, service ports.SyncService) {
	defer func() {
		if r := recover(); r != nil {
			metrics.HRSyncsTotal.WithLabelValues("error").Inc()
			d.log.Error().Interface("panic", r).Int64("principal_id", in.PrincipalID).Int("worker_id", id).Msg("sync panicked")
		}
	}()

	if err := service.Sync(ctx, in); err != nil {
		metrics.HRSyncsTotal.WithLabelValues("error").Inc()
		d.log.Error().Err(err).Int64("principal_id", in.PrincipalID).Int("worker_id", id).Msg("sync failed")
		return
	}
	metrics.HRSyncsTotal.WithLabelValues("ok").Inc()
}
