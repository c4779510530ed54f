package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CallAnalysis is the 1:1 structured record derived from a call transcript.
// Payload carries the full engine output; the named columns are the fields the
// dashboard queries directly.
type CallAnalysis struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	CallID             uuid.UUID       `json:"call_id" db:"call_id"`
	ExecutiveSummary   string          `json:"executive_summary" db:"executive_summary"`
	SentimentScore     int             `json:"sentiment_score" db:"sentiment_score"`
	BuyingIntentScore  int             `json:"buying_intent_score" db:"buying_intent_score"`
	ClosingProbability int             `json:"closing_probability" db:"closing_probability"`
	EngagementScore    int             `json:"engagement_score" db:"engagement_score"`
	Objections         []string        `json:"objections" db:"objections"`
	ActionItems        json.RawMessage `json:"action_items" db:"action_items"`
	Payload            json.RawMessage `json:"payload" db:"payload"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}
