package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/BerylCAtieno/multidoc-ai/internal/llm"
	"github.com/BerylCAtieno/multidoc-ai/internal/models"
	"github.com/BerylCAtieno/multidoc-ai/internal/utils"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type MockClassificationService struct {
	mock.Mock
}

func (m *MockClassificationService) ProcessImage(ctx context.Context, req *models.ProcessRequest) (*models.ProcessResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProcessResponse), args.Error(1)
}

func (m *MockClassificationService) GetRun(ctx context.Context, id string) (*models.Run, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Run), args.Error(1)
}

func (m *MockClassificationService) ListRuns(ctx context.Context, limit, offset int) (*models.RunList, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RunList), args.Error(1)
}

func (m *MockClassificationService) GetRunImage(ctx context.Context, id string) (*models.RunImage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RunImage), args.Error(1)
}

func newUploadRequest(t *testing.T, target, filename, contentType string, data []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	if contentType != "" {
		partHeader.Set("Content-Type", contentType)
	}

	part, err := writer.CreatePart(partHeader)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func legalResponse() *models.ProcessResponse {
	return &models.ProcessResponse{
		ID:            "run-1",
		Filename:      "lease.png",
		ContentType:   "image/png",
		FileSize:      int64(len(pngHeader)),
		ExtractedText: "Rent Agreement dated 2024-01-01",
		Category:      "Legal Document",
		ProcessedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Reference:     "data:image/png;base64,iVBORw0KGgo=",
	}
}

func TestClassifyImage_Success(t *testing.T) {
	svc := new(MockClassificationService)
	svc.On("ProcessImage", mock.Anything, mock.MatchedBy(func(req *models.ProcessRequest) bool {
		return req.Filename == "lease.png" && req.ContentType == "image/png" && bytes.Equal(req.File, pngHeader)
	})).Return(legalResponse(), nil)

	h := NewClassifyHandler(svc, 1<<20, utils.NewNopLogger())

	rec := httptest.NewRecorder()
	h.ClassifyImage(rec, newUploadRequest(t, "/api/v1/images/classify", "lease.png", "image/png", pngHeader))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body["id"])
	assert.Equal(t, "Rent Agreement dated 2024-01-01", body["extracted_text"])
	assert.Equal(t, "Legal Document", body["category"])
	assert.NotContains(t, body, "Reference")
	svc.AssertExpectations(t)
}

func TestClassifyImage_SniffsContentTypeWithoutExtension(t *testing.T) {
	svc := new(MockClassificationService)
	svc.On("ProcessImage", mock.Anything, mock.MatchedBy(func(req *models.ProcessRequest) bool {
		return req.ContentType == "image/png"
	})).Return(legalResponse(), nil)

	h := NewClassifyHandler(svc, 1<<20, utils.NewNopLogger())

	rec := httptest.NewRecorder()
	h.ClassifyImage(rec, newUploadRequest(t, "/api/v1/images/classify", "scan", "application/octet-stream", pngHeader))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestClassifyImage_ValidationErrors(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
		wantError   string
	}{
		{"empty file", "lease.png", "image/png", []byte{}, "Uploaded file is empty"},
		{"unsupported type", "notes.pdf", "application/pdf", []byte("%PDF-1.4"), "Only JPG, JPEG and PNG images are allowed"},
		{"too large", "big.png", "image/png", bytes.Repeat([]byte{0x1}, 2048), "File size exceeds 1KB limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockClassificationService)
			h := NewClassifyHandler(svc, 1024, utils.NewNopLogger())

			rec := httptest.NewRecorder()
			h.ClassifyImage(rec, newUploadRequest(t, "/api/v1/images/classify", tt.filename, tt.contentType, tt.data))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantError, decodeError(t, rec))
			svc.AssertNotCalled(t, "ProcessImage", mock.Anything, mock.Anything)
		})
	}
}

func TestClassifyImage_MissingFile(t *testing.T) {
	svc := new(MockClassificationService)
	h := NewClassifyHandler(svc, 1<<20, utils.NewNopLogger())

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("other", "value"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images/classify", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := httptest.NewRecorder()
	h.ClassifyImage(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file provided", decodeError(t, rec))
}

func TestClassifyImage_ModelFailure(t *testing.T) {
	svc := new(MockClassificationService)
	svc.On("ProcessImage", mock.Anything, mock.Anything).
		Return(nil, utils.NewBadGatewayError("The model could not process the image", llm.ErrInvocation))

	h := NewClassifyHandler(svc, 1<<20, utils.NewNopLogger())

	rec := httptest.NewRecorder()
	h.ClassifyImage(rec, newUploadRequest(t, "/api/v1/images/classify", "lease.png", "image/png", pngHeader))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "The model could not process the image", decodeError(t, rec))
}

func TestGetRun(t *testing.T) {
	svc := new(MockClassificationService)
	svc.On("GetRun", mock.Anything, "run-1").Return(&models.Run{ID: "run-1", Category: "Product Image"}, nil)
	svc.On("GetRun", mock.Anything, "missing").Return(nil, utils.NewNotFoundError("Run not found"))

	h := NewClassifyHandler(svc, 1<<20, utils.NewNopLogger())
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/runs/{id}", h.GetRun)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/run-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var run models.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, "Product Image", run.Category)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Run not found", decodeError(t, rec))
}

func TestListRuns(t *testing.T) {
	svc := new(MockClassificationService)
	svc.On("ListRuns", mock.Anything, 5, 10).Return(&models.RunList{Runs: []models.Run{}, Limit: 5, Offset: 10}, nil)

	h := NewClassifyHandler(svc, 1<<20, utils.NewNopLogger())

	rec := httptest.NewRecorder()
	h.ListRuns(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=5&offset=10", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)

	rec = httptest.NewRecorder()
	h.ListRuns(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIndex(t *testing.T) {
	h := NewClassifyHandler(new(MockClassificationService), 1<<20, utils.NewNopLogger())

	rec := httptest.NewRecorder()
	h.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "MultiDoc AI: Image Recognition &amp; Classification")
	assert.Contains(t, body, "Process and Classify Image")
	assert.Contains(t, body, `accept=".jpg,.jpeg,.png"`)
	assert.Contains(t, body, `id="upload-preview"`)
	assert.Contains(t, body, "URL.createObjectURL")
	assert.NotContains(t, body, "Extracted Text:")
}

func TestProcess_RendersTextBeforeCategory(t *testing.T) {
	svc := new(MockClassificationService)
	svc.On("ProcessImage", mock.Anything, mock.Anything).Return(legalResponse(), nil)

	h := NewClassifyHandler(svc, 1<<20, utils.NewNopLogger())

	rec := httptest.NewRecorder()
	h.Process(rec, newUploadRequest(t, "/", "lease.png", "image/png", pngHeader))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	textIdx := strings.Index(body, "📝 Extracted Text:")
	categoryIdx := strings.Index(body, "✅ Document Classification:")
	require.NotEqual(t, -1, textIdx)
	require.NotEqual(t, -1, categoryIdx)
	assert.Less(t, textIdx, categoryIdx)

	assert.Contains(t, body, "Rent Agreement dated 2024-01-01")
	assert.Contains(t, body, "Legal Document")
	assert.Contains(t, body, `src="data:image/png;base64,iVBORw0KGgo="`)
}

func TestProcess_RendersErrorBanner(t *testing.T) {
	h := NewClassifyHandler(new(MockClassificationService), 1<<20, utils.NewNopLogger())

	rec := httptest.NewRecorder()
	h.Process(rec, newUploadRequest(t, "/", "empty.png", "image/png", []byte{}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Uploaded file is empty")
	assert.NotContains(t, body, "Document Classification:")
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "10MB", formatSize(10<<20))
	assert.Equal(t, "1KB", formatSize(1024))
	assert.Equal(t, "1500 bytes", formatSize(1500))
}

func TestGetRunImage(t *testing.T) {
	svc := new(MockClassificationService)
	svc.On("GetRunImage", mock.Anything, "run-1").
		Return(&models.RunImage{Filename: "lease.png", ContentType: "image/png", Data: pngHeader}, nil)
	svc.On("GetRunImage", mock.Anything, "run-2").
		Return(nil, utils.NewNotFoundError("No archived image for this run"))

	h := NewClassifyHandler(svc, 1<<20, utils.NewNopLogger())
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/runs/{id}/image", h.GetRunImage)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/run-1/image", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, fmt.Sprint(len(pngHeader)), rec.Header().Get("Content-Length"))
	assert.Equal(t, `inline; filename=lease.png`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, pngHeader, rec.Body.Bytes())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/run-2/image", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No archived image for this run", decodeError(t, rec))
}

func TestClassifyImage_NormalisesDeclaredContentType(t *testing.T) {
	svc := new(MockClassificationService)
	svc.On("ProcessImage", mock.Anything, mock.MatchedBy(func(req *models.ProcessRequest) bool {
		return req.ContentType == "image/png"
	})).Return(legalResponse(), nil)

	h := NewClassifyHandler(svc, 1<<20, utils.NewNopLogger())

	rec := httptest.NewRecorder()
	h.ClassifyImage(rec, newUploadRequest(t, "/api/v1/images/classify", "scan", "IMAGE/PNG", []byte("not sniffed")))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
