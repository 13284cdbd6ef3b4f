package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/BerylCAtieno/multidoc-ai/internal/llm"
)

type Classifier struct {
	model llm.Model
}

func NewClassifier(model llm.Model) *Classifier {
	return &Classifier{model: model}
}

// Classify returns the model's label for text with surrounding whitespace removed.
// Labels outside Categories() are returned as they are.
func (c *Classifier) Classify(ctx context.Context, text string) (Category, error) {
	parts := []llm.ContentPart{
		llm.TextPart(ClassificationPrompt(text)),
	}

	resp, err := c.model.Invoke(ctx, parts)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("%w: empty response", llm.ErrInvocation)
	}

	return Category(strings.TrimSpace(resp.Content)), nil
}
