package repository

import (
	"context"
	"time"

	"github.com/jwalitptl/prescription-api/internal/model"
)

// ExtractionAuditRepository stores pipeline outcomes. Implementations must
// never be handed image bytes or extracted record content.
type ExtractionAuditRepository interface {
	Create(ctx context.Context, audit *model.ExtractionAudit) error
	Cleanup(ctx context.Context, before time.Time) (int64, error)
}
