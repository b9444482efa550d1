package llmobs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"crypto-narrator/internal/interfaces"
	"crypto-narrator/internal/logger"
	"crypto-narrator/internal/trace"
	"crypto-narrator/internal/types"
)

// observableGenerator wraps a Generator with observability (logging & tracing)
type observableGenerator struct {
	generator interfaces.Generator
}

// Compile-time interface check
var _ interfaces.Generator = (*observableGenerator)(nil)

// Wrap wraps a generator with observability middleware
func Wrap(generator interfaces.Generator) interfaces.Generator {
	return &observableGenerator{generator: generator}
}

// Generate requests a completion with observability. Prompt and completion
// text are not logged, only their sizes.
func (og *observableGenerator) Generate(ctx context.Context, req types.GenerationRequest) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Generate",
		attribute.String("model", req.Model),
		attribute.Int("max_tokens", req.MaxTokens),
	)
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting narrative",
		"model", req.Model,
		"prompt_chars", len(req.Prompt),
		"temperature", req.Temperature,
	)

	start := time.Now()
	text, err := og.generator.Generate(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Narrative generation failed", err,
			"model", req.Model,
			"latency_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Narrative received",
		"model", req.Model,
		"chars", len(text),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
