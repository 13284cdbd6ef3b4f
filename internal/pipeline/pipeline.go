// Package pipeline runs the two model stages over an uploaded image:
// text extraction first, then classification of the extracted text.
//
// The stages run strictly in order on the caller's goroutine. A failure at
// any point ends the run; nothing is retried and no later stage is invoked.
package pipeline

import (
	"context"
	"fmt"

	"github.com/BerylCAtieno/multidoc-ai/internal/ingest"
)

type Result struct {
	Reference     ingest.EncodedImageReference
	ExtractedText string
	Category      Category
}

type Pipeline struct {
	extractor  *Extractor
	classifier *Classifier
}

func New(extractor *Extractor, classifier *Classifier) *Pipeline {
	return &Pipeline{
		extractor:  extractor,
		classifier: classifier,
	}
}

func (p *Pipeline) Run(ctx context.Context, img ingest.UploadedImage) (*Result, error) {
	ref, err := ingest.Encode(img)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	text, err := p.extractor.Extract(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	category, err := p.classifier.Classify(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	return &Result{
		Reference:     ref,
		ExtractedText: text,
		Category:      category,
	}, nil
}
