package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"salesops/internal/models"
)

type MockCallRepository struct {
	mock.Mock
}

func (m *MockCallRepository) Create(ctx context.Context, call *models.Call) error {
	args := m.Called(ctx, call)
	return args.Error(0)
}

func (m *MockCallRepository) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Call, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Call), args.Error(1)
}

func (m *MockCallRepository) GetForProcessing(ctx context.Context, id uuid.UUID) (*models.Call, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Call), args.Error(1)
}

func (m *MockCallRepository) List(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]*models.Call, error) {
	args := m.Called(ctx, organizationID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Call), args.Error(1)
}

func (m *MockCallRepository) SetTranscribed(ctx context.Context, call *models.Call) error {
	args := m.Called(ctx, call)
	return args.Error(0)
}

func (m *MockCallRepository) MarkFailed(ctx context.Context, id uuid.UUID, marker json.RawMessage) error {
	args := m.Called(ctx, id, marker)
	return args.Error(0)
}

func (m *MockCallRepository) ListStuckUploads(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockAnalysisRepository struct {
	mock.Mock
}

func (m *MockAnalysisRepository) Complete(ctx context.Context, call *models.Call, analysis *models.CallAnalysis) error {
	args := m.Called(ctx, call, analysis)
	return args.Error(0)
}

func (m *MockAnalysisRepository) GetByCallID(ctx context.Context, organizationID, callID uuid.UUID) (*models.CallAnalysis, error) {
	args := m.Called(ctx, organizationID, callID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CallAnalysis), args.Error(1)
}

type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) Transcribe(ctx context.Context, storageKey string) (*Transcription, error) {
	args := m.Called(ctx, storageKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Transcription), args.Error(1)
}

type MockAnalysisCache struct {
	mock.Mock
}

func (m *MockAnalysisCache) SetAnalysis(ctx context.Context, organizationID, callID uuid.UUID, payload json.RawMessage, ttl time.Duration) error {
	args := m.Called(ctx, organizationID, callID, payload, ttl)
	return args.Error(0)
}

type MockOrgInvalidator struct {
	mock.Mock
}

func (m *MockOrgInvalidator) InvalidateOrganization(ctx context.Context, organizationID uuid.UUID) error {
	args := m.Called(ctx, organizationID)
	return args.Error(0)
}

type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) CreateTx(ctx context.Context, tx pgx.Tx, org *models.Organization) error {
	args := m.Called(ctx, tx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) GetByName(ctx context.Context, name string) (*models.Organization, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) UpdateSettings(ctx context.Context, id uuid.UUID, settings map[string]any) error {
	args := m.Called(ctx, id, settings)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) CreateTx(ctx context.Context, tx pgx.Tx, user *models.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, organizationID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
