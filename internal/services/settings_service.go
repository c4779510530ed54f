package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"salesops/internal/models"
	"salesops/internal/repositories"
)

// Templates are the per-organization configuration blobs exposed through the
// settings endpoints. Both are free-form documents owned by the client.
type Templates struct {
	CRMFieldMapping      map[string]any `json:"crm_field_mapping"`
	CallAnalysisTemplate map[string]any `json:"call_analysis_template"`
}

type OrgInvalidator interface {
	InvalidateOrganization(ctx context.Context, organizationID uuid.UUID) error
}

type SettingsService interface {
	GetTemplates(ctx context.Context, organizationID uuid.UUID) (*Templates, error)
	// UpdateTemplates replaces both templates. Missing documents are stored as
	// empty objects, never null.
	UpdateTemplates(ctx context.Context, organizationID uuid.UUID, templates *Templates) error
}

type settingsService struct {
	orgs  repositories.OrganizationRepository
	cache OrgInvalidator
	log   zerolog.Logger
}

func NewSettingsService(orgs repositories.OrganizationRepository, cache OrgInvalidator, log zerolog.Logger) SettingsService {
	return &settingsService{orgs: orgs, cache: cache, log: log}
}

func (s *settingsService) GetTemplates(ctx context.Context, organizationID uuid.UUID) (*Templates, error) {
	org, err := s.orgs.GetByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	return &Templates{
		CRMFieldMapping:      settingsDoc(org.Settings, models.SettingCRMFieldMapping),
		CallAnalysisTemplate: settingsDoc(org.Settings, models.SettingCallAnalysisTemplate),
	}, nil
}

func (s *settingsService) UpdateTemplates(ctx context.Context, organizationID uuid.UUID, templates *Templates) error {
	org, err := s.orgs.GetByID(ctx, organizationID)
	if err != nil {
		return err
	}

	settings := org.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	settings[models.SettingCRMFieldMapping] = orEmptyDoc(templates.CRMFieldMapping)
	settings[models.SettingCallAnalysisTemplate] = orEmptyDoc(templates.CallAnalysisTemplate)

	if err := s.orgs.UpdateSettings(ctx, organizationID, settings); err != nil {
		return err
	}

	if err := s.cache.InvalidateOrganization(ctx, organizationID); err != nil {
		s.log.Warn().Err(err).Str("organization_id", organizationID.String()).Msg("settings cache invalidation failed")
	}
	return nil
}

func settingsDoc(settings map[string]any, key string) map[string]any {
	if doc, ok := settings[key].(map[string]any); ok {
		return doc
	}
	return map[string]any{}
}

func orEmptyDoc(doc map[string]any) map[string]any {
	if doc == nil {
		return map[string]any{}
	}
	return doc
}
