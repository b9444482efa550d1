package interfaces

import (
	"context"

	"crypto-narrator/internal/types"
)

// Generator sends a rendered prompt to a text-generation service and
// returns the first completion verbatim.
type Generator interface {
	Generate(ctx context.Context, req types.GenerationRequest) (string, error)
}
