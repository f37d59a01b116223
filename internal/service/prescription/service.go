package prescription

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/prescription-api/internal/inference"
	"github.com/jwalitptl/prescription-api/internal/middleware"
	"github.com/jwalitptl/prescription-api/internal/model"
	"github.com/jwalitptl/prescription-api/internal/repository"
	"github.com/jwalitptl/prescription-api/internal/repository/staging"
	apperrors "github.com/jwalitptl/prescription-api/pkg/errors"
	"github.com/jwalitptl/prescription-api/pkg/logger"
	"github.com/jwalitptl/prescription-api/pkg/metrics"
)

type PrescriptionService interface {
	Analyze(ctx context.Context, upload *model.Upload) (*model.PrescriptionRecord, error)
	Probe(ctx context.Context) error
}

// Service runs the extraction pipeline for one upload at a time. Requests
// share nothing but the immutable prompt template; every staged file is
// deleted exactly once before the outcome is returned, on every exit path.
type Service struct {
	staging   *staging.Store
	invoker   inference.Invoker
	auditRepo repository.ExtractionAuditRepository
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

func NewService(store *staging.Store, invoker inference.Invoker, auditRepo repository.ExtractionAuditRepository, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		staging:   store,
		invoker:   invoker,
		auditRepo: auditRepo,
		metrics:   m,
		logger:    log,
	}
}

func (s *Service) Analyze(ctx context.Context, upload *model.Upload) (record *model.PrescriptionRecord, err error) {
	start := time.Now()
	defer func() {
		s.observe(ctx, record, err, time.Since(start))
	}()

	// Credential presence is checked before anything touches disk, so an
	// unconfigured deployment rejects without staging a single byte.
	if !s.invoker.Configured() {
		return nil, apperrors.NewConfiguration("Gemini API key not configured", nil)
	}

	s.metrics.ObserveUpload(upload.Size)

	staged, err := s.staging.Save(upload.Data, upload.Filename)
	if err != nil {
		return nil, apperrors.NewStorage("failed to stage prescription image", err)
	}
	defer func() {
		if rmErr := s.staging.Remove(staged.Path); rmErr != nil {
			s.logger.Error(rmErr, "failed to clean up staged file")
		}
	}()

	encoded, err := s.staging.Read(staged.Path)
	if err != nil {
		return nil, apperrors.NewStorage("failed to read staged file", err)
	}
	payload := inference.ImagePayload{
		Data:      base64.StdEncoding.EncodeToString(encoded),
		MediaType: upload.ContentType,
	}

	inferStart := time.Now()
	raw, err := s.invoker.Invoke(ctx, analysisPrompt, payload)
	s.metrics.ObserveInference(time.Since(inferStart))
	if err != nil {
		return nil, err
	}

	record, err = parseRecord(raw)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Probe verifies the inference credential end to end with a minimal
// text-only generation.
func (s *Service) Probe(ctx context.Context) error {
	if !s.invoker.Configured() {
		return apperrors.NewConfiguration("Gemini API key not configured", nil)
	}
	return s.invoker.Ping(ctx)
}

func (s *Service) observe(ctx context.Context, record *model.PrescriptionRecord, err error, elapsed time.Duration) {
	audit := &model.ExtractionAudit{
		ID:         uuid.New(),
		RequestID:  middleware.RequestIDFromContext(ctx),
		DurationMs: elapsed.Milliseconds(),
		Model:      s.invoker.Model(),
		CreatedAt:  time.Now(),
	}

	if err != nil {
		appErr := apperrors.Classify(err)
		s.metrics.ObserveExtraction("failed", elapsed)
		s.metrics.ObserveFailure(appErr.Kind())
		audit.Status = model.ExtractionFailed
		audit.ErrorKind = appErr.Kind()
		s.logger.WithFields(map[string]interface{}{
			"kind":        appErr.Kind(),
			"duration_ms": audit.DurationMs,
		}).Warn(appErr, "prescription extraction failed")
	} else {
		s.metrics.ObserveExtraction("succeeded", elapsed)
		audit.Status = model.ExtractionSucceeded
		audit.MedicineCount = len(record.Medicines)
		s.logger.WithFields(map[string]interface{}{
			"medicines":   audit.MedicineCount,
			"duration_ms": audit.DurationMs,
		}).Info("prescription extraction succeeded")
	}

	if s.auditRepo == nil {
		return
	}
	// Best effort: an audit write failure never changes the outcome.
	if auditErr := s.auditRepo.Create(context.WithoutCancel(ctx), audit); auditErr != nil {
		s.logger.Error(auditErr, "failed to record extraction audit")
	}
}
