package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/BerylCAtieno/multidoc-ai/internal/models"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, run *models.Run) error
	GetByID(ctx context.Context, id string) (*models.Run, error)
	List(ctx context.Context, limit, offset int) ([]models.Run, int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, run *models.Run) error {
	query := `
		INSERT INTO runs (id, filename, content_type, file_size, object_key, extracted_text, category, created_at)
		VALUES (:id, :filename, :content_type, :file_size, :object_key, :extracted_text, :category, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, run)
	return err
}

// GetByID returns nil without an error when no run has the given id.
func (r *repository) GetByID(ctx context.Context, id string) (*models.Run, error) {
	var run models.Run

	query := `
		SELECT id, filename, content_type, file_size, object_key, extracted_text, category, created_at
		FROM runs
		WHERE id = ?
	`

	err := r.db.GetContext(ctx, &run, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &run, nil
}

// List returns one page of runs, newest first, together with the total number of runs.
func (r *repository) List(ctx context.Context, limit, offset int) ([]models.Run, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM runs`); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, filename, content_type, file_size, object_key, extracted_text, category, created_at
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	runs := []models.Run{}
	if err := r.db.SelectContext(ctx, &runs, query, limit, offset); err != nil {
		return nil, 0, err
	}

	return runs, total, nil
}
