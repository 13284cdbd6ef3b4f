package llm

import (
	"context"
	"time"

	"github.com/BerylCAtieno/multidoc-ai/internal/utils"
)

type loggingModel struct {
	wrapped Model
	logger  *utils.Logger
	stage   string
}

// WithLogging logs every call made through m under the given stage name.
// Image payloads are never logged, only the part count.
func WithLogging(m Model, logger *utils.Logger, stage string) Model {
	return &loggingModel{
		wrapped: m,
		logger:  logger,
		stage:   stage,
	}
}

func (l *loggingModel) Invoke(ctx context.Context, parts []ContentPart) (*Response, error) {
	l.logger.Debug("Invoking model", "stage", l.stage, "parts", len(parts))

	start := time.Now()
	resp, err := l.wrapped.Invoke(ctx, parts)
	elapsed := time.Since(start)

	if err != nil {
		l.logger.Error("Model invocation failed", "stage", l.stage, "duration", elapsed, "error", err)
		return nil, err
	}

	contentLength := 0
	if resp != nil {
		contentLength = len(resp.Content)
	}
	l.logger.Info("Model invocation completed", "stage", l.stage, "duration", elapsed, "content_length", contentLength)

	return resp, nil
}
