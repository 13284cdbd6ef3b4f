package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/BerylCAtieno/multidoc-ai/internal/ingest"
	"github.com/BerylCAtieno/multidoc-ai/internal/models"
	"github.com/BerylCAtieno/multidoc-ai/internal/services"
	"github.com/BerylCAtieno/multidoc-ai/internal/utils"
	"github.com/gorilla/mux"
)

// multipartOverhead is the allowance for form boundaries and headers on top of the file itself.
const multipartOverhead = 1 << 20

type ClassifyHandler struct {
	service     services.ClassificationService
	logger      *utils.Logger
	maxFileSize int64
}

func NewClassifyHandler(service services.ClassificationService, maxFileSize int64, logger *utils.Logger) *ClassifyHandler {
	return &ClassifyHandler{
		service:     service,
		logger:      logger,
		maxFileSize: maxFileSize,
	}
}

func (h *ClassifyHandler) ClassifyImage(w http.ResponseWriter, r *http.Request) {
	req, err := h.readUpload(w, r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	resp, err := h.service.ProcessImage(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *ClassifyHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		h.respondError(w, utils.NewBadRequestError("Run ID is required"))
		return
	}

	run, err := h.service.GetRun(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, run)
}

// GetRunImage serves the archived upload of a run with its recorded content type.
func (h *ClassifyHandler) GetRunImage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		h.respondError(w, utils.NewBadRequestError("Run ID is required"))
		return
	}

	img, err := h.service.GetRunImage(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	if disposition := mime.FormatMediaType("inline", map[string]string{"filename": img.Filename}); disposition != "" {
		w.Header().Set("Content-Disposition", disposition)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.Data); err != nil {
		h.logger.Error("Failed to write image response", "error", err, "id", id)
	}
}

func (h *ClassifyHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.respondError(w, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		h.respondError(w, err)
		return
	}

	list, err := h.service.ListRuns(r.Context(), limit, offset)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, list)
}

// readUpload validates the multipart "file" field and returns it as a process request.
func (h *ClassifyHandler) readUpload(w http.ResponseWriter, r *http.Request) (*models.ProcessRequest, error) {
	tooLarge := utils.NewBadRequestError(fmt.Sprintf("File size exceeds %s limit", formatSize(h.maxFileSize)))

	// Reject oversized requests early when the client declares a length
	if r.ContentLength > h.maxFileSize+multipartOverhead {
		return nil, tooLarge
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+multipartOverhead)

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, tooLarge
		}
		return nil, utils.NewBadRequestError("Invalid form data")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, utils.NewBadRequestError("No file provided")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		return nil, utils.NewInternalError("Failed to read file").WithCause(err)
	}

	if int64(len(data)) > h.maxFileSize {
		return nil, tooLarge
	}

	if len(data) == 0 {
		return nil, utils.NewBadRequestError("Uploaded file is empty")
	}

	declared := header.Header.Get("Content-Type")
	contentType := ingest.DetectMediaType(header.Filename, declared, data)

	h.logger.Info("Image upload attempt",
		"filename", header.Filename,
		"reported_content_type", declared,
		"determined_content_type", contentType,
		"file_size", len(data))

	if !ingest.IsAccepted(contentType) {
		return nil, utils.NewBadRequestError("Only JPG, JPEG and PNG images are allowed")
	}

	return &models.ProcessRequest{
		File:        data,
		Filename:    header.Filename,
		ContentType: contentType,
	}, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, utils.NewBadRequestError(fmt.Sprintf("Query parameter %q must be a non-negative integer", name))
	}
	return v, nil
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

func acceptAttribute() string {
	return strings.Join(ingest.AcceptedExtensions(), ",")
}

func (h *ClassifyHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (h *ClassifyHandler) respondError(w http.ResponseWriter, err error) {
	status, message := utils.StatusAndMessage(err)

	h.logger.Error("Request error", "status", status, "error", message, "cause", err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
