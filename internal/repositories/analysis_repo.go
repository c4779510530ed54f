package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"salesops/internal/common"
	"salesops/internal/models"
)

type AnalysisRepository interface {
	// Complete stores the analysis record and advances the call to analyzed in
	// a single transaction, so a crash leaves the call in transcribed and the
	// step can be replayed.
	Complete(ctx context.Context, call *models.Call, analysis *models.CallAnalysis) error
	// GetByCallID joins through calls to enforce tenant scoping.
	GetByCallID(ctx context.Context, organizationID, callID uuid.UUID) (*models.CallAnalysis, error)
}

type analysisRepo struct {
	db Database
}

func NewAnalysisRepo(db Database) AnalysisRepository {
	return &analysisRepo{db: db}
}

func (r *analysisRepo) Complete(ctx context.Context, call *models.Call, analysis *models.CallAnalysis) error {
	if !call.Status.CanTransition(models.CallStatusAnalyzed) {
		return common.ErrStatusMove
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin analysis transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery := `
		INSERT INTO call_analysis (id, call_id, executive_summary, sentiment_score, buying_intent_score, closing_probability, engagement_score, objections, action_items, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	`
	if _, err := tx.Exec(ctx, insertQuery,
		analysis.ID, analysis.CallID, analysis.ExecutiveSummary,
		analysis.SentimentScore, analysis.BuyingIntentScore, analysis.ClosingProbability,
		analysis.EngagementScore, analysis.Objections, analysis.ActionItems, analysis.Payload,
	); err != nil {
		return mapError(err)
	}

	updateQuery := `
		UPDATE calls
		SET analysis = $1, status = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
	`
	tag, err := tx.Exec(ctx, updateQuery,
		analysis.Payload, models.CallStatusAnalyzed, call.ID, models.CallStatusTranscribed,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrStatusMove
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit analysis transaction: %w", err)
	}

	call.Status = models.CallStatusAnalyzed
	call.Analysis = analysis.Payload
	return nil
}

func (r *analysisRepo) GetByCallID(ctx context.Context, organizationID, callID uuid.UUID) (*models.CallAnalysis, error) {
	analysis := &models.CallAnalysis{}
	query := `
		SELECT ca.id, ca.call_id, ca.executive_summary, ca.sentiment_score, ca.buying_intent_score, ca.closing_probability, ca.engagement_score, ca.objections, ca.action_items, ca.payload, ca.created_at
		FROM call_analysis ca
		JOIN calls c ON c.id = ca.call_id
		WHERE ca.call_id = $1 AND c.organization_id = $2
	`
	err := r.db.QueryRow(ctx, query, callID, organizationID).Scan(
		&analysis.ID, &analysis.CallID, &analysis.ExecutiveSummary,
		&analysis.SentimentScore, &analysis.BuyingIntentScore, &analysis.ClosingProbability,
		&analysis.EngagementScore, &analysis.Objections, &analysis.ActionItems,
		&analysis.Payload, &analysis.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return analysis, nil
}
