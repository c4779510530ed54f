package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"salesops/internal/common"
	"salesops/internal/models"
	"salesops/internal/repositories"
)

type RegisterInput struct {
	OrganizationName string
	Email            string
	Password         string
	FullName         string
}

type CreateUserInput struct {
	OrganizationID uuid.UUID
	Email          string
	Password       string
	FullName       string
	Role           models.Role
}

// AccountService owns registration, login and user provisioning.
type AccountService interface {
	// Register creates the organization and its first admin in one
	// transaction. A duplicate email or organization name yields ErrConflict.
	Register(ctx context.Context, input RegisterInput) (*models.Organization, *models.User, error)
	// Login verifies credentials and issues a bearer token. Unknown email and
	// wrong password are indistinguishable to the caller.
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	// CreateUser provisions an additional user inside an existing organization.
	CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error)
}

type accountService struct {
	db       repositories.Database
	orgs     repositories.OrganizationRepository
	users    repositories.UserRepository
	auth     AuthService
	tokenTTL time.Duration
	log      zerolog.Logger
}

func NewAccountService(
	db repositories.Database,
	orgs repositories.OrganizationRepository,
	users repositories.UserRepository,
	auth AuthService,
	tokenTTL time.Duration,
	log zerolog.Logger,
) AccountService {
	return &accountService{
		db:       db,
		orgs:     orgs,
		users:    users,
		auth:     auth,
		tokenTTL: tokenTTL,
		log:      log,
	}
}

func (s *accountService) Register(ctx context.Context, input RegisterInput) (*models.Organization, *models.User, error) {
	name := strings.TrimSpace(input.OrganizationName)

	// Pre-check the name so the common duplicate gets a clean conflict before
	// any bcrypt work. The unique index still backstops concurrent registers.
	if _, err := s.orgs.GetByName(ctx, name); err == nil {
		return nil, nil, fmt.Errorf("%w: organization name already in use", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, nil, err
	}

	hash, err := s.auth.HashPassword(input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	org := &models.Organization{
		ID:               uuid.New(),
		Name:             name,
		SubscriptionTier: models.TierFree,
		Settings:         map[string]any{},
	}
	user := &models.User{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		Email:          normalizeEmail(input.Email),
		PasswordHash:   hash,
		FullName:       strings.TrimSpace(input.FullName),
		Role:           models.RoleAdmin,
		Active:         true,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin registration tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.orgs.CreateTx(ctx, tx, org); err != nil {
		return nil, nil, err
	}
	if err := s.users.CreateTx(ctx, tx, user); err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit registration tx: %w", err)
	}

	s.log.Info().
		Str("organization_id", org.ID.String()).
		Str("user_id", user.ID.String()).
		Msg("organization registered")
	return org, user, nil
}

func (s *accountService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		// Burn a hash compare anyway so response timing does not reveal
		// whether the email exists.
		s.auth.VerifyPassword(password, dummyHash)
		return "", nil, common.ErrBadCredentials
	}
	if !user.Active || !s.auth.VerifyPassword(password, user.PasswordHash) {
		return "", nil, common.ErrBadCredentials
	}

	token, err := s.auth.IssueToken(user.ID, s.tokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

func (s *accountService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	if !input.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrValidation, input.Role)
	}

	hash, err := s.auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:             uuid.New(),
		OrganizationID: input.OrganizationID,
		Email:          normalizeEmail(input.Email),
		PasswordHash:   hash,
		FullName:       strings.TrimSpace(input.FullName),
		Role:           input.Role,
		Active:         true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// dummyHash is a bcrypt hash of a random throwaway string, used only to keep
// login timing uniform for unknown emails.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
