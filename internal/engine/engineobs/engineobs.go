package engineobs

import (
	"context"
	"time"

	"crypto-narrator/internal/interfaces"
	"crypto-narrator/internal/logger"
	"crypto-narrator/internal/session"
	"crypto-narrator/internal/trace"
	"crypto-narrator/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) Verify(ctx context.Context, sess *session.Session, answer string) (types.ChallengeState, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Verify")
	defer span.End()

	st, err := oe.engine.Verify(ctx, sess, answer)
	if err != nil {
		logger.WarnSkip(ctx, 1, "Challenge not passed", "session_id", sess.ID, "error", err.Error())
		return st, err
	}
	return st, nil
}

func (oe *observableEngine) Run(ctx context.Context, sess *session.Session) (*types.RunResult, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Run")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting pipeline run",
		"session_id", sess.ID,
	)

	result, err := oe.engine.Run(ctx, sess)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Pipeline run failed", err,
			"session_id", sess.ID,
			"stage", types.StageOf(err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Pipeline run completed",
		"session_id", sess.ID,
		"warnings", len(result.Warnings),
		"has_narrative", result.Narrative != nil,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}

func (oe *observableEngine) Dispatch(ctx context.Context, sess *session.Session) (types.DispatchResult, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Dispatch")
	defer span.End()

	start := time.Now()
	res, err := oe.engine.Dispatch(ctx, sess)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Dispatch failed", err,
			"session_id", sess.ID,
			"status_code", res.StatusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return res, err
	}

	logger.InfoSkip(ctx, 1, "Dispatch completed",
		"session_id", sess.ID,
		"status_code", res.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
