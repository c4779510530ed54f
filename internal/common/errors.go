package common

import "errors"

// Sentinel errors shared across services and repositories. Handlers map these
// to HTTP statuses; internal detail never reaches the client.
var (
	ErrValidation     = errors.New("invalid request payload")
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("duplicate unique field")
	ErrForbidden      = errors.New("insufficient role")
	ErrBadCredentials = errors.New("invalid email or password")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token malformed or forged")
	ErrTranscription  = errors.New("transcription failed")
	ErrAnalysis       = errors.New("analysis failed")
	ErrInFlight       = errors.New("pipeline already running for call")
	ErrStatusMove     = errors.New("illegal call status transition")
)
