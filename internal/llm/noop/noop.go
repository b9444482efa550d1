package noop

import (
	"context"

	"crypto-narrator/internal/interfaces"
	"crypto-narrator/internal/logger"
	"crypto-narrator/internal/types"
)

// Placeholder is the text produced when no LLM provider is configured.
const Placeholder = "Narrative generation is disabled: no LLM provider configured. Write the update here before posting."

// Generator is a fallback used when no LLM (like OpenAI) is configured
type Generator struct{}

var _ interfaces.Generator = (*Generator)(nil)

func New() *Generator {
	return &Generator{}
}

// Generate implements the Generator interface. It always returns Placeholder.
func (g *Generator) Generate(ctx context.Context, req types.GenerationRequest) (string, error) {
	logger.Debug(ctx, "Noop generator called", "prompt_chars", len(req.Prompt))
	return Placeholder, nil
}
