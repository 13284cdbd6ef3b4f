package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/BerylCAtieno/multidoc-ai/internal/models"
	"github.com/BerylCAtieno/multidoc-ai/internal/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	Accept  string
	Error   string
	Result  *models.ProcessResponse
	Preview template.URL
}

// Index renders the upload form.
func (h *ClassifyHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, pageData{Accept: acceptAttribute()})
}

// Process runs the pipeline for a form upload and renders the extracted text
// followed by the classification, or an error banner.
func (h *ClassifyHandler) Process(w http.ResponseWriter, r *http.Request) {
	data := pageData{Accept: acceptAttribute()}

	req, err := h.readUpload(w, r)
	if err == nil {
		data.Result, err = h.service.ProcessImage(r.Context(), req)
	}
	if err != nil {
		status, message := utils.StatusAndMessage(err)
		h.logger.Error("Request error", "status", status, "error", message, "cause", err)
		data.Error = message
		h.render(w, status, data)
		return
	}

	// Only data URIs produced by the ingestor are trusted as image sources.
	if strings.HasPrefix(data.Result.Reference, "data:image/") {
		data.Preview = template.URL(data.Result.Reference)
	}

	h.render(w, http.StatusOK, data)
}

func (h *ClassifyHandler) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error("Failed to render page", "error", err)
	}
}
