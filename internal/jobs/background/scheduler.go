package background

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"salesops/internal/repositories"
)

// Submitter is the dispatcher surface the sweep needs.
type Submitter interface {
	Submit(callID uuid.UUID)
}

// Scheduler runs the periodic recovery sweep. Uploads whose synchronous
// pipeline run was interrupted (process crash, deploy) stay in uploaded
// forever; the sweep finds them and re-submits them to the dispatcher.
type Scheduler struct {
	scheduler  gocron.Scheduler
	calls      repositories.CallRepository
	dispatcher Submitter
	stuckAfter time.Duration
	log        zerolog.Logger
}

func NewScheduler(calls repositories.CallRepository, dispatcher Submitter, log zerolog.Logger) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		scheduler:  scheduler,
		calls:      calls,
		dispatcher: dispatcher,
		stuckAfter: 10 * time.Minute,
		log:        log,
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(s.sweepStuckUploads, context.Background()),
		gocron.WithName("stuck-upload-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.log.Info().Msg("starting background scheduler")
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	s.log.Info().Msg("stopping background scheduler")
	return s.scheduler.Shutdown()
}

func (s *Scheduler) sweepStuckUploads(ctx context.Context) error {
	cutoff := time.Now().Add(-s.stuckAfter)
	ids, err := s.calls.ListStuckUploads(ctx, cutoff)
	if err != nil {
		s.log.Error().Err(err).Msg("stuck upload sweep query failed")
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	s.log.Info().Int("count", len(ids)).Msg("re-submitting stuck uploads")
	for _, id := range ids {
		s.dispatcher.Submit(id)
	}
	return nil
}
