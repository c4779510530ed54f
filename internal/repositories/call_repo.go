package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"salesops/internal/common"
	"salesops/internal/models"
)

type CallRepository interface {
	Create(ctx context.Context, call *models.Call) error
	// GetByID is organization-scoped; a call belonging to another tenant is
	// indistinguishable from a missing one.
	GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Call, error)
	// GetForProcessing loads a call by id alone. Only the pipeline uses it.
	GetForProcessing(ctx context.Context, id uuid.UUID) (*models.Call, error)
	List(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]*models.Call, error)
	// SetTranscribed persists transcript and talk ratios and advances the call
	// to transcribed. The UPDATE is guarded by the current status so a
	// concurrent or replayed transition cannot regress the state machine.
	SetTranscribed(ctx context.Context, call *models.Call) error
	// MarkFailed moves a non-terminal call to failed and attaches the error
	// marker to the analysis field.
	MarkFailed(ctx context.Context, id uuid.UUID, marker json.RawMessage) error
	// ListStuckUploads returns ids of calls still in uploaded older than the
	// cutoff, for the recovery sweep.
	ListStuckUploads(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
}

type callRepo struct {
	db Database
}

func NewCallRepo(db Database) CallRepository {
	return &callRepo{db: db}
}

const selectCallColumns = `id, organization_id, user_id, file_name, storage_key, transcript, status, talk_ratio_rep, talk_ratio_prospect, analysis, created_at, updated_at`

func (r *callRepo) Create(ctx context.Context, call *models.Call) error {
	query := `
		INSERT INTO calls (id, organization_id, user_id, file_name, storage_key, status, talk_ratio_rep, talk_ratio_prospect, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, call.ID, call.OrganizationID, call.UserID, call.FileName, call.StorageKey, call.Status, call.TalkRatioRep, call.TalkRatioProspect)
	return mapError(err)
}

func (r *callRepo) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Call, error) {
	call := &models.Call{}
	query := `
		SELECT ` + selectCallColumns + `
		FROM calls
		WHERE organization_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, organizationID, id).Scan(
		&call.ID, &call.OrganizationID, &call.UserID, &call.FileName, &call.StorageKey,
		&call.Transcript, &call.Status, &call.TalkRatioRep, &call.TalkRatioProspect,
		&call.Analysis, &call.CreatedAt, &call.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return call, nil
}

func (r *callRepo) GetForProcessing(ctx context.Context, id uuid.UUID) (*models.Call, error) {
	call := &models.Call{}
	query := `SELECT ` + selectCallColumns + ` FROM calls WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&call.ID, &call.OrganizationID, &call.UserID, &call.FileName, &call.StorageKey,
		&call.Transcript, &call.Status, &call.TalkRatioRep, &call.TalkRatioProspect,
		&call.Analysis, &call.CreatedAt, &call.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return call, nil
}

func (r *callRepo) List(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]*models.Call, error) {
	query := `
		SELECT ` + selectCallColumns + `
		FROM calls
		WHERE organization_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, organizationID, limit, offset)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var calls []*models.Call
	for rows.Next() {
		call := &models.Call{}
		if err := rows.Scan(
			&call.ID, &call.OrganizationID, &call.UserID, &call.FileName, &call.StorageKey,
			&call.Transcript, &call.Status, &call.TalkRatioRep, &call.TalkRatioProspect,
			&call.Analysis, &call.CreatedAt, &call.UpdatedAt,
		); err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	return calls, rows.Err()
}

func (r *callRepo) SetTranscribed(ctx context.Context, call *models.Call) error {
	if !call.Status.CanTransition(models.CallStatusTranscribed) {
		return common.ErrStatusMove
	}
	query := `
		UPDATE calls
		SET transcript = $1, talk_ratio_rep = $2, talk_ratio_prospect = $3, status = $4, updated_at = NOW()
		WHERE id = $5 AND status = $6
	`
	tag, err := r.db.Exec(ctx, query,
		call.Transcript, call.TalkRatioRep, call.TalkRatioProspect,
		models.CallStatusTranscribed, call.ID, models.CallStatusUploaded,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrStatusMove
	}
	call.Status = models.CallStatusTranscribed
	return nil
}

func (r *callRepo) MarkFailed(ctx context.Context, id uuid.UUID, marker json.RawMessage) error {
	query := `
		UPDATE calls
		SET status = $1, analysis = $2, updated_at = NOW()
		WHERE id = $3 AND status IN ($4, $5)
	`
	tag, err := r.db.Exec(ctx, query,
		models.CallStatusFailed, marker, id,
		models.CallStatusUploaded, models.CallStatusTranscribed,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrStatusMove
	}
	return nil
}

func (r *callRepo) ListStuckUploads(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT id
		FROM calls
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at ASC
	`
	rows, err := r.db.Query(ctx, query, models.CallStatusUploaded, cutoff)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
