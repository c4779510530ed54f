package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"salesops/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	CreateTx(ctx context.Context, tx pgx.Tx, user *models.User) error
	// GetByID is unscoped: the authentication gate resolves the principal
	// before any organization is known.
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// GetByEmail is unscoped: email uniqueness is global, not per organization.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]*models.User, error)
}

type userRepo struct {
	db Database
}

func NewUserRepo(db Database) UserRepository {
	return &userRepo{db: db}
}

const insertUserSQL = `
		INSERT INTO users (id, organization_id, email, password_hash, full_name, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`

const selectUserColumns = `id, organization_id, email, password_hash, full_name, role, active, created_at, updated_at`

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	_, err := r.db.Exec(ctx, insertUserSQL, user.ID, user.OrganizationID, user.Email, user.PasswordHash, user.FullName, user.Role, user.Active)
	return mapError(err)
}

func (r *userRepo) CreateTx(ctx context.Context, tx pgx.Tx, user *models.User) error {
	_, err := tx.Exec(ctx, insertUserSQL, user.ID, user.OrganizationID, user.Email, user.PasswordHash, user.FullName, user.Role, user.Active)
	return mapError(err)
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `SELECT ` + selectUserColumns + ` FROM users WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.OrganizationID, &user.Email, &user.PasswordHash,
		&user.FullName, &user.Role, &user.Active, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT ` + selectUserColumns + ` FROM users WHERE email = $1`
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.OrganizationID, &user.Email, &user.PasswordHash,
		&user.FullName, &user.Role, &user.Active, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *userRepo) List(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]*models.User, error) {
	query := `
		SELECT ` + selectUserColumns + `
		FROM users
		WHERE organization_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, organizationID, limit, offset)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(
			&user.ID, &user.OrganizationID, &user.Email, &user.PasswordHash,
			&user.FullName, &user.Role, &user.Active, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
