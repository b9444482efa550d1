package interfaces

import (
	"context"

	"crypto-narrator/internal/session"
	"crypto-narrator/internal/types"
)

// Engine is the per-interaction orchestrator the operator surface binds to.
type Engine interface {
	Verify(ctx context.Context, sess *session.Session, answer string) (types.ChallengeState, error)
	Run(ctx context.Context, sess *session.Session) (*types.RunResult, error)
	Dispatch(ctx context.Context, sess *session.Session) (types.DispatchResult, error)
}
