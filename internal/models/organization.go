package models

import (
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID               uuid.UUID      `json:"id" db:"id"`
	Name             string         `json:"name" db:"name"`
	SubscriptionTier string         `json:"subscription_tier" db:"subscription_tier"`
	Settings         map[string]any `json:"settings" db:"settings"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

// Subscription tiers. New organizations start on the free tier.
const (
	TierFree = "free"
	TierPro  = "pro"
)

// Settings keys recognized by the settings templates endpoints.
const (
	SettingCRMFieldMapping      = "crm_field_mapping"
	SettingCallAnalysisTemplate = "call_analysis_template"
)
