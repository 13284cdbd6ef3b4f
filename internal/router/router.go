package router

import (
	"net/http"

	"github.com/BerylCAtieno/multidoc-ai/internal/handlers"
	"github.com/BerylCAtieno/multidoc-ai/internal/metrics"
	"github.com/BerylCAtieno/multidoc-ai/internal/middleware"
	"github.com/BerylCAtieno/multidoc-ai/internal/services"
	"github.com/BerylCAtieno/multidoc-ai/internal/utils"

	"github.com/gorilla/mux"
)

func NewRouter(service services.ClassificationService, collector *metrics.Collector, maxFileSize int64, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Recovery(logger))

	classifyHandler := handlers.NewClassifyHandler(service, maxFileSize, logger)

	// Browser UI
	r.HandleFunc("/", classifyHandler.Index).Methods(http.MethodGet)
	r.HandleFunc("/", classifyHandler.Process).Methods(http.MethodPost)

	r.Handle("/metrics", collector.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	api.HandleFunc("/images/classify", classifyHandler.ClassifyImage).Methods(http.MethodPost)
	api.HandleFunc("/runs", classifyHandler.ListRuns).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}", classifyHandler.GetRun).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}/image", classifyHandler.GetRunImage).Methods(http.MethodGet)

	return r
}
