package prescription

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	cache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/prescription-api/internal/handler"
	"github.com/jwalitptl/prescription-api/internal/model"
	"github.com/jwalitptl/prescription-api/internal/service/prescription"
	apperrors "github.com/jwalitptl/prescription-api/pkg/errors"
)

const (
	uploadField   = "prescription"
	probeCacheKey = "gemini_probe"
	probeCacheTTL = 5 * time.Minute
)

// Options tune the upload gate and response verbosity.
type Options struct {
	MaxUploadBytes int64
	Production     bool
}

type Handler struct {
	service    prescription.PrescriptionService
	validate   *validator.Validate
	probeCache *cache.Cache
	opts       Options
}

func NewHandler(service prescription.PrescriptionService, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = model.MaxUploadBytes
	}
	return &Handler{
		service:    service,
		validate:   validator.New(),
		probeCache: cache.New(probeCacheTTL, 2*probeCacheTTL),
		opts:       opts,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	prescriptions := r.Group("/prescriptions")
	{
		prescriptions.POST("/analyze", h.Analyze)
		prescriptions.GET("/probe", h.Probe)
	}
}

// uploadMeta is what the gate validates: declared metadata only, before a
// single content byte is read.
type uploadMeta struct {
	ContentType string `validate:"required,oneof=image/jpeg image/jpg image/png image/gif image/webp"`
	Size        int64  `validate:"required,gt=0"`
}

func (h *Handler) Analyze(c *gin.Context) {
	file, err := c.FormFile(uploadField)
	if err != nil {
		h.respondError(c, apperrors.NewInvalidInput("no file provided", err))
		return
	}

	meta := uploadMeta{
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
	}
	if err := h.validate.Struct(meta); err != nil {
		h.respondError(c, apperrors.NewInvalidInput(
			"invalid file type, only JPEG, PNG, GIF and WebP images are allowed", err))
		return
	}
	if file.Size > h.opts.MaxUploadBytes {
		h.respondError(c, apperrors.NewInvalidInput(
			fmt.Sprintf("file too large, maximum size is %d MiB", h.opts.MaxUploadBytes>>20), nil))
		return
	}

	src, err := file.Open()
	if err != nil {
		h.respondError(c, apperrors.NewStorage("failed to read uploaded file", err))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		h.respondError(c, apperrors.NewStorage("failed to read uploaded file", err))
		return
	}

	record, err := h.service.Analyze(c.Request.Context(), &model.Upload{
		Filename:    file.Filename,
		ContentType: meta.ContentType,
		Size:        file.Size,
		Data:        data,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse("Prescription analyzed successfully", record))
}

// Probe verifies the inference credential works. Successful probes are
// cached so repeated checks do not burn quota.
func (h *Handler) Probe(c *gin.Context) {
	if _, ok := h.probeCache.Get(probeCacheKey); ok {
		c.JSON(http.StatusOK, handler.NewSuccessResponse("Gemini API key is working", nil))
		return
	}

	if err := h.service.Probe(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}

	h.probeCache.Set(probeCacheKey, true, cache.DefaultExpiration)
	c.JSON(http.StatusOK, handler.NewSuccessResponse("Gemini API key is working", nil))
}

func (h *Handler) respondError(c *gin.Context, err error) {
	appErr := apperrors.Classify(err)

	resp := handler.NewErrorResponse(appErr.Message)
	if !h.opts.Production && appErr.Err != nil {
		resp = handler.NewErrorResponseWithDetail(appErr.Message, appErr.Err.Error())
	}
	c.JSON(appErr.HTTPStatus(), resp)
}
