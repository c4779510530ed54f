package handlers

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"salesops/internal/models"
	"salesops/internal/services"
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

type MockRecordingStorage struct {
	mock.Mock
}

func (m *MockRecordingStorage) Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, objectKey, reader, size, contentType)
	return args.Error(0)
}

func (m *MockRecordingStorage) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectKey, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockRecordingStorage) Remove(ctx context.Context, objectKey string) error {
	args := m.Called(ctx, objectKey)
	return args.Error(0)
}

func (m *MockRecordingStorage) EnsureBucket(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetAnalysis(ctx context.Context, organizationID, callID uuid.UUID) (json.RawMessage, error) {
	args := m.Called(ctx, organizationID, callID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockCacheService) SetAnalysis(ctx context.Context, organizationID, callID uuid.UUID, payload json.RawMessage, ttl time.Duration) error {
	args := m.Called(ctx, organizationID, callID, payload, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateOrganization(ctx context.Context, organizationID uuid.UUID) error {
	args := m.Called(ctx, organizationID)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, input services.RegisterInput) (*models.Organization, *models.User, error) {
	args := m.Called(ctx, input)
	var org *models.Organization
	var user *models.User
	if args.Get(0) != nil {
		org = args.Get(0).(*models.Organization)
	}
	if args.Get(1) != nil {
		user = args.Get(1).(*models.User)
	}
	return org, user, args.Error(2)
}

func (m *MockAccountService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	args := m.Called(ctx, email, password)
	var user *models.User
	if args.Get(1) != nil {
		user = args.Get(1).(*models.User)
	}
	return args.String(0), user, args.Error(2)
}

func (m *MockAccountService) CreateUser(ctx context.Context, input services.CreateUserInput) (*models.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) GetTemplates(ctx context.Context, organizationID uuid.UUID) (*services.Templates, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Templates), args.Error(1)
}

func (m *MockSettingsService) UpdateTemplates(ctx context.Context, organizationID uuid.UUID, templates *services.Templates) error {
	args := m.Called(ctx, organizationID, templates)
	return args.Error(0)
}

type MockUserRepositoryHandlers struct {
	mock.Mock
}

func (m *MockUserRepositoryHandlers) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepositoryHandlers) CreateTx(ctx context.Context, tx pgx.Tx, user *models.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUserRepositoryHandlers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepositoryHandlers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepositoryHandlers) List(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, organizationID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

// stubPipeline lets dispatcher-backed handler tests choose the pipeline
// outcome without standing up repositories.
type stubPipeline struct {
	err error
	fn  func(callID uuid.UUID)
}

func (p *stubPipeline) Process(_ context.Context, callID uuid.UUID) error {
	if p.fn != nil {
		p.fn(callID)
	}
	return p.err
}
