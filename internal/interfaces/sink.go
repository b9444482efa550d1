package interfaces

import (
	"context"

	"crypto-narrator/internal/types"
)

// Sink delivers operator text to a messaging webhook.
type Sink interface {
	Dispatch(ctx context.Context, webhookURL, text string) (types.DispatchResult, error)
}
