// Command classify runs the extraction and classification pipeline on a single
// image file and prints the extracted text followed by the category.
//
//	classify [-model name] <image>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/BerylCAtieno/multidoc-ai/internal/config"
	"github.com/BerylCAtieno/multidoc-ai/internal/ingest"
	"github.com/BerylCAtieno/multidoc-ai/internal/llm"
	"github.com/BerylCAtieno/multidoc-ai/internal/pipeline"
	"github.com/BerylCAtieno/multidoc-ai/internal/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "classify: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("classify", flag.ContinueOnError)
	modelName := fs.String("model", "", "OpenRouter model id (defaults to OPENROUTER_MODEL)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: classify [-model name] <image>")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *modelName != "" {
		cfg.OpenRouterModel = *modelName
	}

	// Logs go to stderr only when asked for, so stdout stays the two result blocks
	logger := utils.NewNopLogger()
	if cfg.LogLevel == "debug" {
		encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		logger = utils.NewLoggerFromCore(zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), zapcore.DebugLevel))
	}
	defer logger.Sync()

	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	filename := filepath.Base(path)
	mediaType := ingest.DetectMediaType(filename, "", data)
	if !ingest.IsAccepted(mediaType) {
		return fmt.Errorf("unsupported image type %q: only JPG, JPEG and PNG are allowed", mediaType)
	}

	model := llm.NewOpenRouterModel(llm.OpenRouterConfig{
		APIKey:  cfg.OpenRouterAPIKey,
		Model:   cfg.OpenRouterModel,
		BaseURL: cfg.OpenRouterBaseURL,
		Timeout: cfg.ModelTimeout,
	}, logger)

	p := pipeline.New(
		pipeline.NewExtractor(llm.WithLogging(model, logger, "extraction")),
		pipeline.NewClassifier(llm.WithLogging(model, logger, "classification")),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := p.Run(ctx, ingest.UploadedImage{
		Data:      data,
		MediaType: mediaType,
		Filename:  filename,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "📝 Extracted Text:\n%s\n\n✅ Document Classification:\n%s\n", result.ExtractedText, result.Category)
	return nil
}
