package model

import (
	"time"

	"github.com/google/uuid"
)

// ExtractionAudit records the outcome of one pipeline run. Only outcome
// metadata is kept; the image bytes and the extracted record never reach
// storage.
type ExtractionAudit struct {
	ID            uuid.UUID `db:"id"`
	RequestID     string    `db:"request_id"`
	Status        string    `db:"status"`
	ErrorKind     string    `db:"error_kind"`
	MedicineCount int       `db:"medicine_count"`
	DurationMs    int64     `db:"duration_ms"`
	Model         string    `db:"model"`
	CreatedAt     time.Time `db:"created_at"`
}

// Audit statuses
const (
	ExtractionSucceeded = "succeeded"
	ExtractionFailed    = "failed"
)
