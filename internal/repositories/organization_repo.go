package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"salesops/internal/models"
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	CreateTx(ctx context.Context, tx pgx.Tx, org *models.Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	GetByName(ctx context.Context, name string) (*models.Organization, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, settings map[string]any) error
}

type organizationRepo struct {
	db Database
}

func NewOrganizationRepo(db Database) OrganizationRepository {
	return &organizationRepo{db: db}
}

const insertOrganizationSQL = `
		INSERT INTO organizations (id, name, subscription_tier, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`

func (r *organizationRepo) Create(ctx context.Context, org *models.Organization) error {
	_, err := r.db.Exec(ctx, insertOrganizationSQL, org.ID, org.Name, org.SubscriptionTier, org.Settings)
	return mapError(err)
}

// CreateTx inserts the organization inside a caller-owned transaction. Used by
// registration, which must create the organization and its admin atomically.
func (r *organizationRepo) CreateTx(ctx context.Context, tx pgx.Tx, org *models.Organization) error {
	_, err := tx.Exec(ctx, insertOrganizationSQL, org.ID, org.Name, org.SubscriptionTier, org.Settings)
	return mapError(err)
}

func (r *organizationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	org := &models.Organization{}
	query := `
		SELECT id, name, subscription_tier, settings, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&org.ID, &org.Name, &org.SubscriptionTier, &org.Settings, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return org, nil
}

func (r *organizationRepo) GetByName(ctx context.Context, name string) (*models.Organization, error) {
	org := &models.Organization{}
	query := `
		SELECT id, name, subscription_tier, settings, created_at, updated_at
		FROM organizations
		WHERE name = $1
	`
	err := r.db.QueryRow(ctx, query, name).Scan(&org.ID, &org.Name, &org.SubscriptionTier, &org.Settings, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return org, nil
}

func (r *organizationRepo) UpdateSettings(ctx context.Context, id uuid.UUID, settings map[string]any) error {
	query := `
		UPDATE organizations
		SET settings = $1, updated_at = NOW()
		WHERE id = $2
	`
	tag, err := r.db.Exec(ctx, query, settings, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows)
	}
	return nil
}
