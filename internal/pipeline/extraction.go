package pipeline

import (
	"context"
	"fmt"

	"github.com/BerylCAtieno/multidoc-ai/internal/ingest"
	"github.com/BerylCAtieno/multidoc-ai/internal/llm"
)

type Extractor struct {
	model llm.Model
}

func NewExtractor(model llm.Model) *Extractor {
	return &Extractor{model: model}
}

// Extract asks the model to read the referenced image and returns its reply unchanged.
func (e *Extractor) Extract(ctx context.Context, ref ingest.EncodedImageReference) (string, error) {
	parts := []llm.ContentPart{
		llm.TextPart(ExtractionInstruction),
		llm.ImagePart(ref.String()),
	}

	resp, err := e.model.Invoke(ctx, parts)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("%w: empty response", llm.ErrInvocation)
	}

	return resp.Content, nil
}
