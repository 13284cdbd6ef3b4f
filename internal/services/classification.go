package services

import (
	"context"
	"errors"
	"time"

	"github.com/BerylCAtieno/multidoc-ai/internal/ingest"
	"github.com/BerylCAtieno/multidoc-ai/internal/llm"
	"github.com/BerylCAtieno/multidoc-ai/internal/metrics"
	"github.com/BerylCAtieno/multidoc-ai/internal/models"
	"github.com/BerylCAtieno/multidoc-ai/internal/pipeline"
	"github.com/BerylCAtieno/multidoc-ai/internal/repository"
	"github.com/BerylCAtieno/multidoc-ai/internal/storage"
	"github.com/BerylCAtieno/multidoc-ai/internal/utils"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Runner executes one extraction and classification run. *pipeline.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, img ingest.UploadedImage) (*pipeline.Result, error)
}

type ClassificationService interface {
	ProcessImage(ctx context.Context, req *models.ProcessRequest) (*models.ProcessResponse, error)
	GetRun(ctx context.Context, id string) (*models.Run, error)
	ListRuns(ctx context.Context, limit, offset int) (*models.RunList, error)
	GetRunImage(ctx context.Context, id string) (*models.RunImage, error)
}

type classificationService struct {
	runner  Runner
	repo    repository.Repository
	storage storage.Storage
	metrics *metrics.Collector
	logger  *utils.Logger
}

// NewService builds the service. repo and store may be nil, which disables
// run history and image archiving respectively.
func NewService(runner Runner, repo repository.Repository, store storage.Storage, collector *metrics.Collector, logger *utils.Logger) ClassificationService {
	return &classificationService{
		runner:  runner,
		repo:    repo,
		storage: store,
		metrics: collector,
		logger:  logger,
	}
}

func (s *classificationService) ProcessImage(ctx context.Context, req *models.ProcessRequest) (*models.ProcessResponse, error) {
	runID := utils.GenerateID()
	logger := s.logger.With("run_id", runID, "filename", req.Filename)

	logger.Info("Processing image", "content_type", req.ContentType, "file_size", len(req.File))

	result, err := s.runner.Run(ctx, ingest.UploadedImage{
		Data:      req.File,
		MediaType: req.ContentType,
		Filename:  req.Filename,
	})
	if s.metrics != nil {
		var category pipeline.Category
		if result != nil {
			category = result.Category
		}
		s.metrics.ObserveRun(category, err)
	}
	if err != nil {
		logger.Error("Pipeline run failed", "error", err)
		return nil, mapRunError(err)
	}

	now := time.Now().UTC()
	run := &models.Run{
		ID:            runID,
		Filename:      req.Filename,
		ContentType:   req.ContentType,
		FileSize:      int64(len(req.File)),
		ExtractedText: result.ExtractedText,
		Category:      result.Category.String(),
		CreatedAt:     now,
	}

	if s.storage != nil {
		key := storage.ObjectKey(runID, req.Filename)
		if err := s.storage.Upload(ctx, key, req.File, req.ContentType); err != nil {
			logger.Warn("Failed to archive image", "error", err, "object_key", key)
		} else {
			run.ObjectKey = &key
		}
	}

	if s.repo != nil {
		if err := s.repo.Create(ctx, run); err != nil {
			logger.Error("Failed to record run", "error", err)
			if run.ObjectKey != nil {
				if err := s.storage.Delete(ctx, *run.ObjectKey); err != nil {
					logger.Warn("Failed to remove archived image", "error", err, "object_key", *run.ObjectKey)
				}
			}
		}
	}

	logger.Info("Image classified",
		"category", run.Category,
		"known_category", result.Category.IsKnown(),
		"text_length", len(result.ExtractedText))

	return &models.ProcessResponse{
		ID:            runID,
		Filename:      req.Filename,
		ContentType:   req.ContentType,
		FileSize:      run.FileSize,
		ExtractedText: result.ExtractedText,
		Category:      run.Category,
		ProcessedAt:   now,
		Reference:     result.Reference.String(),
	}, nil
}

func (s *classificationService) GetRun(ctx context.Context, id string) (*models.Run, error) {
	if s.repo == nil {
		return nil, utils.NewNotFoundError("Run history is disabled")
	}

	run, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get run", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to retrieve run").WithCause(err)
	}
	if run == nil {
		return nil, utils.NewNotFoundError("Run not found")
	}

	return run, nil
}

// GetRunImage reads back the image archived for a run.
func (s *classificationService) GetRunImage(ctx context.Context, id string) (*models.RunImage, error) {
	if s.storage == nil {
		return nil, utils.NewNotFoundError("Image archive is disabled")
	}

	run, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if run.ObjectKey == nil {
		return nil, utils.NewNotFoundError("No archived image for this run")
	}

	data, err := s.storage.Download(ctx, *run.ObjectKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, utils.NewNotFoundError("Archived image not found").WithCause(err)
	}
	if err != nil {
		s.logger.Error("Failed to download archived image", "error", err, "id", id, "object_key", *run.ObjectKey)
		return nil, utils.NewInternalError("Failed to retrieve archived image").WithCause(err)
	}

	return &models.RunImage{
		Filename:    run.Filename,
		ContentType: run.ContentType,
		Data:        data,
	}, nil
}

func (s *classificationService) ListRuns(ctx context.Context, limit, offset int) (*models.RunList, error) {
	if s.repo == nil {
		return nil, utils.NewNotFoundError("Run history is disabled")
	}

	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	runs, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list runs", "error", err)
		return nil, utils.NewInternalError("Failed to list runs").WithCause(err)
	}

	return &models.RunList{
		Runs:   runs,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func mapRunError(err error) error {
	switch {
	case errors.Is(err, ingest.ErrIngestion):
		return utils.NewBadRequestError("The uploaded image could not be read").WithCause(err)
	case errors.Is(err, llm.ErrInvocation):
		return utils.NewBadGatewayError("The model could not process the image", err)
	default:
		return utils.NewInternalError("Failed to process image").WithCause(err)
	}
}
