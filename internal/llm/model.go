// Package llm defines the model capability used by the pipeline stages: an
// ordered list of content parts goes in, free text comes out.
package llm

import (
	"context"
	"errors"
)

// ErrInvocation wraps every failure of a model call.
var ErrInvocation = errors.New("model invocation failed")

type PartType string

const (
	PartText     PartType = "text"
	PartImageURL PartType = "image_url"
)

type ImageURL struct {
	URL string `json:"url"`
}

type ContentPart struct {
	Type     PartType  `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

func TextPart(text string) ContentPart {
	return ContentPart{Type: PartText, Text: text}
}

func ImagePart(url string) ContentPart {
	return ContentPart{Type: PartImageURL, ImageURL: &ImageURL{URL: url}}
}

type Response struct {
	Content string
}

// Model sends one user message made of parts and blocks until the reply or a failure.
type Model interface {
	Invoke(ctx context.Context, parts []ContentPart) (*Response, error)
}

// ModelFunc adapts a plain function to the Model interface.
type ModelFunc func(ctx context.Context, parts []ContentPart) (*Response, error)

func (f ModelFunc) Invoke(ctx context.Context, parts []ContentPart) (*Response, error) {
	return f(ctx, parts)
}
