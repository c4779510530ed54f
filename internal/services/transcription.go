package services

import (
	"context"
	"fmt"
	"path"
	"time"

	"salesops/internal/common"
)

// Transcription is the result of a speech-to-text pass over a recording. The
// two talk ratios are each in [0,1] and sum to at most 1.
type Transcription struct {
	Transcript        string
	TalkRatioRep      float64
	TalkRatioProspect float64
}

// Transcriber abstracts the speech-to-text provider. Implementations receive
// the storage key of the uploaded recording and return the full transcript
// plus talk-ratio metrics, or common.ErrTranscription for unreadable media.
type Transcriber interface {
	Transcribe(ctx context.Context, storageKey string) (*Transcription, error)
}

// LocalTranscriber is the deterministic development provider. It fabricates a
// plausible transcript from the file name so the downstream pipeline is fully
// exercisable without a cloud STT account.
type LocalTranscriber struct{}

func NewLocalTranscriber() *LocalTranscriber {
	return &LocalTranscriber{}
}

func (t *LocalTranscriber) Transcribe(ctx context.Context, storageKey string) (*Transcription, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTranscription, err)
	}

	fileName := path.Base(storageKey)
	transcript := fmt.Sprintf(
		"Rep: Thanks for joining, let's discuss priorities for %s. "+
			"Prospect: Budget and timeline are my biggest concerns.",
		fileName,
	)
	return &Transcription{
		Transcript:        transcript,
		TalkRatioRep:      0.42,
		TalkRatioProspect: 0.58,
	}, nil
}

// timeoutTranscriber bounds the provider call and maps a deadline hit to a
// transcription error so the pipeline fails the call instead of hanging.
type timeoutTranscriber struct {
	inner   Transcriber
	timeout time.Duration
}

// DefaultTranscribeTimeout bounds a single transcription run.
const DefaultTranscribeTimeout = 5 * time.Minute

// WithTimeout wraps a Transcriber with a per-call deadline.
func WithTimeout(inner Transcriber, timeout time.Duration) Transcriber {
	return &timeoutTranscriber{inner: inner, timeout: timeout}
}

func (t *timeoutTranscriber) Transcribe(ctx context.Context, storageKey string) (*Transcription, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	result, err := t.inner.Transcribe(ctx, storageKey)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: provider timed out", common.ErrTranscription)
		}
		return nil, err
	}
	return result, nil
}
