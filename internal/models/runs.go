package models

import (
	"time"
)

type Run struct {
	ID            string    `json:"id" db:"id"`
	Filename      string    `json:"filename" db:"filename"`
	ContentType   string    `json:"content_type" db:"content_type"`
	FileSize      int64     `json:"file_size" db:"file_size"`
	ObjectKey     *string   `json:"object_key,omitempty" db:"object_key"`
	ExtractedText string    `json:"extracted_text" db:"extracted_text"`
	Category      string    `json:"category" db:"category"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type ProcessRequest struct {
	File        []byte
	Filename    string
	ContentType string
}

type ProcessResponse struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	ContentType   string    `json:"content_type"`
	FileSize      int64     `json:"file_size"`
	ExtractedText string    `json:"extracted_text"`
	Category      string    `json:"category"`
	ProcessedAt   time.Time `json:"processed_at"`

	// Reference is the data URI sent to the model; the UI uses it for the preview.
	Reference string `json:"-"`
}

type RunList struct {
	Runs   []Run `json:"runs"`
	Total  int   `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// RunImage is an archived upload read back from object storage.
type RunImage struct {
	Filename    string
	ContentType string
	Data        []byte
}
