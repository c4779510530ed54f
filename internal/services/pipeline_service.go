package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"salesops/internal/analysis"
	"salesops/internal/common"
	"salesops/internal/models"
	"salesops/internal/repositories"
)

// failureMarker is the persisted analysis-field marker for a failed call. The
// caller only ever sees a generic 5xx; this marker is what the dashboard reads.
var failureMarker = json.RawMessage(`{"error": "Analysis failed"}`)

// AnalysisCache is the slice of the cache the pipeline writes through.
type AnalysisCache interface {
	SetAnalysis(ctx context.Context, organizationID, callID uuid.UUID, payload json.RawMessage, ttl time.Duration) error
}

// PipelineService drives a call through transcription and analysis. Each step
// commits atomically, so a crash leaves the call at the last completed state
// and Process can be replayed from there.
type PipelineService interface {
	Process(ctx context.Context, callID uuid.UUID) error
}

type pipelineService struct {
	calls       repositories.CallRepository
	analyses    repositories.AnalysisRepository
	transcriber Transcriber
	cache       AnalysisCache
	cacheTTL    time.Duration
	log         zerolog.Logger
}

func NewPipelineService(
	calls repositories.CallRepository,
	analyses repositories.AnalysisRepository,
	transcriber Transcriber,
	cache AnalysisCache,
	log zerolog.Logger,
) PipelineService {
	return &pipelineService{
		calls:       calls,
		analyses:    analyses,
		transcriber: transcriber,
		cache:       cache,
		cacheTTL:    time.Hour,
		log:         log,
	}
}

func (s *pipelineService) Process(ctx context.Context, callID uuid.UUID) error {
	call, err := s.calls.GetForProcessing(ctx, callID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.log.Warn().Str("call_id", callID.String()).Msg("pipeline triggered for unknown call")
			return nil
		}
		return fmt.Errorf("load call %s: %w", callID, err)
	}
	if call.Status.Terminal() {
		// Replayed trigger after completion; nothing to do.
		return nil
	}

	if call.Status == models.CallStatusUploaded {
		if err := s.transcribe(ctx, call); err != nil {
			return err
		}
	}

	return s.analyze(ctx, call)
}

func (s *pipelineService) transcribe(ctx context.Context, call *models.Call) error {
	result, err := s.transcriber.Transcribe(ctx, call.StorageKey)
	if err != nil {
		s.log.Error().Err(err).Str("call_id", call.ID.String()).Msg("transcription failed")
		s.fail(ctx, call.ID)
		if errors.Is(err, common.ErrTranscription) {
			return err
		}
		return fmt.Errorf("%w: %v", common.ErrTranscription, err)
	}

	call.Transcript = &result.Transcript
	call.TalkRatioRep = result.TalkRatioRep
	call.TalkRatioProspect = result.TalkRatioProspect

	if err := s.calls.SetTranscribed(ctx, call); err != nil {
		return fmt.Errorf("persist transcription for call %s: %w", call.ID, err)
	}
	return nil
}

func (s *pipelineService) analyze(ctx context.Context, call *models.Call) error {
	if call.Transcript == nil {
		s.fail(ctx, call.ID)
		return fmt.Errorf("%w: call %s has no transcript", common.ErrAnalysis, call.ID)
	}

	result := analysis.Analyze(*call.Transcript)

	payload, err := json.Marshal(result)
	if err != nil {
		s.fail(ctx, call.ID)
		return fmt.Errorf("%w: encode payload: %v", common.ErrAnalysis, err)
	}
	actionItems, err := json.Marshal(result.NextSteps)
	if err != nil {
		s.fail(ctx, call.ID)
		return fmt.Errorf("%w: encode action items: %v", common.ErrAnalysis, err)
	}

	record := &models.CallAnalysis{
		ID:                 uuid.New(),
		CallID:             call.ID,
		ExecutiveSummary:   result.ExecutiveSummary.Overview,
		SentimentScore:     result.Scores.SentimentScore,
		BuyingIntentScore:  result.Scores.BuyingIntentScore,
		ClosingProbability: result.Scores.ClosingProbability,
		EngagementScore:    result.Scores.EngagementScore,
		Objections:         result.Objections,
		ActionItems:        actionItems,
		Payload:            payload,
	}

	if err := s.analyses.Complete(ctx, call, record); err != nil {
		s.log.Error().Err(err).Str("call_id", call.ID.String()).Msg("analysis persistence failed")
		s.fail(ctx, call.ID)
		return fmt.Errorf("%w: %v", common.ErrAnalysis, err)
	}

	if err := s.cache.SetAnalysis(ctx, call.OrganizationID, call.ID, payload, s.cacheTTL); err != nil {
		// Cache is read-through; a write failure is not a pipeline failure.
		s.log.Warn().Err(err).Str("call_id", call.ID.String()).Msg("analysis cache write failed")
	}

	s.log.Info().
		Str("call_id", call.ID.String()).
		Int("closing_probability", result.Scores.ClosingProbability).
		Msg("call analyzed")
	return nil
}

// fail moves the call to the terminal failed state with the error marker. The
// row stays queryable; only the marker is exposed, never internal detail.
func (s *pipelineService) fail(ctx context.Context, callID uuid.UUID) {
	if err := s.calls.MarkFailed(ctx, callID, failureMarker); err != nil {
		s.log.Error().Err(err).Str("call_id", callID.String()).Msg("failed to mark call failed")
	}
}
