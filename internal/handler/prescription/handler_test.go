package prescription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/prescription-api/internal/model"
	apperrors "github.com/jwalitptl/prescription-api/pkg/errors"
)

type fakeService struct {
	record       *model.PrescriptionRecord
	analyzeErr   error
	probeErr     error
	analyzeCalls int
	probeCalls   int
	lastUpload   *model.Upload
}

func (f *fakeService) Analyze(ctx context.Context, upload *model.Upload) (*model.PrescriptionRecord, error) {
	f.analyzeCalls++
	f.lastUpload = upload
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	return f.record, nil
}

func (f *fakeService) Probe(ctx context.Context) error {
	f.probeCalls++
	return f.probeErr
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func multipartUpload(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func doUpload(t *testing.T, router *gin.Engine, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/prescriptions/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAnalyzeMissingFile(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(NewHandler(svc, Options{}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/prescriptions/analyze", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "no file provided", resp["message"])
	assert.Zero(t, svc.analyzeCalls)
}

func TestAnalyzeRejectsDisallowedMediaType(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(NewHandler(svc, Options{}))

	body, ct := multipartUpload(t, uploadField, "report.pdf", "application/pdf", []byte("%PDF-1.4"))
	w := doUpload(t, router, body, ct)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["message"], "invalid file type")
	assert.Zero(t, svc.analyzeCalls)
}

func TestAnalyzeRejectsOversizedFile(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(NewHandler(svc, Options{MaxUploadBytes: 1 << 10}))

	body, ct := multipartUpload(t, uploadField, "rx.png", "image/png", bytes.Repeat([]byte{0x42}, 2<<10))
	w := doUpload(t, router, body, ct)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Contains(t, resp["message"], "file too large")
	assert.Zero(t, svc.analyzeCalls)
}

func TestAnalyzeSuccess(t *testing.T) {
	svc := &fakeService{
		record: &model.PrescriptionRecord{
			Medicines: []model.MedicineEntry{{
				Name:         "Amoxicillin",
				Dosage:       "500mg",
				Frequency:    "Twice daily",
				Duration:     "7 days",
				Instructions: "After meals",
			}},
			DoctorName:  "Dr. Rao",
			PatientName: "J. Doe",
			Date:        "2024-03-01",
		},
	}
	router := newTestRouter(NewHandler(svc, Options{}))

	body, ct := multipartUpload(t, uploadField, "rx.jpg", "image/jpeg", []byte{0xFF, 0xD8, 0xFF})
	w := doUpload(t, router, body, ct)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Prescription analyzed successfully", resp["message"])

	data := resp["data"].(map[string]interface{})
	medicines := data["medicines"].([]interface{})
	require.Len(t, medicines, 1)
	entry := medicines[0].(map[string]interface{})
	assert.Equal(t, "Amoxicillin", entry["name"])
	assert.Equal(t, "Dr. Rao", data["doctorName"])

	require.NotNil(t, svc.lastUpload)
	assert.Equal(t, "image/jpeg", svc.lastUpload.ContentType)
	assert.Equal(t, "rx.jpg", svc.lastUpload.Filename)
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF}, svc.lastUpload.Data)
}

func TestAnalyzeMapsClassifiedErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"rate limited", apperrors.NewRateLimited("API quota exceeded, please try again later", nil), http.StatusTooManyRequests},
		{"configuration", apperrors.NewConfiguration("Gemini API key not configured", nil), http.StatusInternalServerError},
		{"parse", apperrors.NewParse("no valid JSON found in response", nil), http.StatusInternalServerError},
		{"unclassified", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{analyzeErr: tt.err}
			router := newTestRouter(NewHandler(svc, Options{}))

			body, ct := multipartUpload(t, uploadField, "rx.jpg", "image/jpeg", []byte{0xFF, 0xD8})
			w := doUpload(t, router, body, ct)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w)
			assert.Equal(t, false, resp["success"])
		})
	}
}

func TestAnalyzeHidesDiagnosticsInProduction(t *testing.T) {
	cause := fmt.Errorf("unexpected end of JSON input")
	svc := &fakeService{analyzeErr: apperrors.NewParse("failed to parse prescription analysis results", cause)}

	devRouter := newTestRouter(NewHandler(svc, Options{}))
	body, ct := multipartUpload(t, uploadField, "rx.jpg", "image/jpeg", []byte{0xFF, 0xD8})
	resp := decodeResponse(t, doUpload(t, devRouter, body, ct))
	assert.Equal(t, "unexpected end of JSON input", resp["error"])

	prodRouter := newTestRouter(NewHandler(svc, Options{Production: true}))
	body, ct = multipartUpload(t, uploadField, "rx.jpg", "image/jpeg", []byte{0xFF, 0xD8})
	resp = decodeResponse(t, doUpload(t, prodRouter, body, ct))
	_, hasDetail := resp["error"]
	assert.False(t, hasDetail)
}

func TestProbeCachesSuccess(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(NewHandler(svc, Options{}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/prescriptions/probe", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 1, svc.probeCalls)
}

func TestProbeFailuresAreNotCached(t *testing.T) {
	svc := &fakeService{probeErr: apperrors.NewConfiguration("Gemini API key not configured", nil)}
	router := newTestRouter(NewHandler(svc, Options{}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/prescriptions/probe", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	}

	assert.Equal(t, 2, svc.probeCalls)
}
