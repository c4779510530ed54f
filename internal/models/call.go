package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CallStatus is the pipeline state machine. Progression is strictly forward
// (uploaded -> transcribed -> analyzed); failed is terminal and reachable from
// any non-terminal state. A status never regresses.
type CallStatus string

const (
	CallStatusUploaded    CallStatus = "uploaded"
	CallStatusTranscribed CallStatus = "transcribed"
	CallStatusAnalyzed    CallStatus = "analyzed"
	CallStatusFailed      CallStatus = "failed"
)

// Terminal reports whether no further pipeline transitions are allowed.
func (s CallStatus) Terminal() bool {
	return s == CallStatusAnalyzed || s == CallStatusFailed
}

// CanTransition validates a pipeline move. Status-advancing repo writes check
// it before touching the database; the status guards in their SQL catch
// concurrent movers.
func (s CallStatus) CanTransition(next CallStatus) bool {
	switch s {
	case CallStatusUploaded:
		return next == CallStatusTranscribed || next == CallStatusFailed
	case CallStatusTranscribed:
		return next == CallStatusAnalyzed || next == CallStatusFailed
	case CallStatusAnalyzed, CallStatusFailed:
		return false
	}
	return false
}

type Call struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	OrganizationID    uuid.UUID       `json:"organization_id" db:"organization_id"`
	UserID            uuid.UUID       `json:"user_id" db:"user_id"`
	FileName          string          `json:"file_name" db:"file_name"`
	StorageKey        string          `json:"storage_key" db:"storage_key"`
	Transcript        *string         `json:"transcript" db:"transcript"`
	Status            CallStatus      `json:"status" db:"status"`
	TalkRatioRep      float64         `json:"talk_ratio_rep" db:"talk_ratio_rep"`
	TalkRatioProspect float64         `json:"talk_ratio_prospect" db:"talk_ratio_prospect"`
	Analysis          json.RawMessage `json:"analysis" db:"analysis"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}
