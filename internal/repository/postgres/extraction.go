package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/prescription-api/internal/model"
	"github.com/jwalitptl/prescription-api/internal/repository"
)

type extractionAuditRepository struct {
	db *sqlx.DB
}

func NewExtractionAuditRepository(db *sqlx.DB) repository.ExtractionAuditRepository {
	return &extractionAuditRepository{db: db}
}

func (r *extractionAuditRepository) Create(ctx context.Context, audit *model.ExtractionAudit) error {
	query := `
        INSERT INTO extraction_audits (
            id, request_id, status, error_kind, medicine_count,
            duration_ms, model, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `

	_, err := r.db.ExecContext(ctx, query,
		audit.ID,
		audit.RequestID,
		audit.Status,
		audit.ErrorKind,
		audit.MedicineCount,
		audit.DurationMs,
		audit.Model,
		audit.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create extraction audit: %w", err)
	}
	return nil
}

func (r *extractionAuditRepository) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	query := `
        DELETE FROM extraction_audits
        WHERE created_at < $1
    `

	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup extraction audits: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleaned up audits: %w", err)
	}
	return rows, nil
}
