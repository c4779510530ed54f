package jobs

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"salesops/internal/common"
	"salesops/internal/services"
)

// Dispatcher serializes pipeline runs per call: at most one run per call id is
// in flight at any time, across the synchronous upload path and the
// asynchronous recovery sweep.
type Dispatcher struct {
	pipeline services.PipelineService
	log      zerolog.Logger

	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}
	wg       sync.WaitGroup
}

func NewDispatcher(pipeline services.PipelineService, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		pipeline: pipeline,
		log:      log,
		inflight: make(map[uuid.UUID]struct{}),
	}
}

// Run executes the pipeline for the call and blocks until it finishes. The
// upload endpoint uses it so the response carries the call's final state. A
// second concurrent run for the same call returns ErrInFlight.
func (d *Dispatcher) Run(ctx context.Context, callID uuid.UUID) error {
	if !d.acquire(callID) {
		return common.ErrInFlight
	}
	defer d.release(callID)
	return d.pipeline.Process(ctx, callID)
}

// Submit schedules an asynchronous run. A call already in flight is silently
// skipped, which makes the recovery sweep safe to fire at any time.
func (d *Dispatcher) Submit(callID uuid.UUID) {
	if !d.acquire(callID) {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.release(callID)
		if err := d.pipeline.Process(context.Background(), callID); err != nil {
			d.log.Error().Err(err).Str("call_id", callID.String()).Msg("background pipeline run failed")
		}
	}()
}

// Wait blocks until all submitted runs have finished. Used on shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) acquire(callID uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, busy := d.inflight[callID]; busy {
		return false
	}
	d.inflight[callID] = struct{}{}
	return true
}

func (d *Dispatcher) release(callID uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inflight, callID)
}
