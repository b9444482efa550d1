package engine

import (
	"context"
	"fmt"
	"time"

	"crypto-narrator/internal/challenge"
	"crypto-narrator/internal/interfaces"
	"crypto-narrator/internal/logger"
	"crypto-narrator/internal/narrative"
	"crypto-narrator/internal/session"
	"crypto-narrator/internal/store"
	"crypto-narrator/internal/ta"
	"crypto-narrator/internal/types"
)

type Engine struct {
	cfg      *store.Config
	gate     *challenge.Gate
	fetcher  interfaces.SeriesFetcher
	composer *narrative.Composer
	sink     interfaces.Sink
	now      func() time.Time
}

func newEngine(cfg *store.Config, gate *challenge.Gate, f interfaces.SeriesFetcher, c *narrative.Composer, s interfaces.Sink) *Engine {
	return &Engine{cfg: cfg, gate: gate, fetcher: f, composer: c, sink: s, now: time.Now}
}

// Verify checks the operator's answer and stores the resulting challenge
// state on the session.
func (e *Engine) Verify(ctx context.Context, sess *session.Session, answer string) (types.ChallengeState, error) {
	st, err := e.gate.Verify(answer, sess.Challenge())
	sess.SetChallenge(st)
	logger.Challenge(ctx, sess.ID, st.Passed)
	if err != nil {
		return st, types.NewStageError(types.StageChallenge, "", err)
	}
	return st, nil
}

// Run executes one pass of the pipeline: fetch both series, compute RSI,
// reduce to snapshots and obtain the narrative (from the session cache when
// present). Fetch failures are fatal. A generation failure is returned as a
// warning so the series and snapshots still reach the operator.
func (e *Engine) Run(ctx context.Context, sess *session.Session) (*types.RunResult, error) {
	if err := challenge.Require(sess.Challenge()); err != nil {
		logger.Warn(ctx, "Run refused, challenge not passed", "session_id", sess.ID)
		return nil, types.NewStageError(types.StageChallenge, "", err)
	}

	res := &types.RunResult{SessionID: sess.ID, Time: e.now().UTC()}

	for i, asset := range e.assets() {
		logger.Debug(ctx, "Fetching series", "asset", asset.ID, "window_days", e.cfg.MarketData.WindowDays)
		series, err := e.fetcher.Fetch(ctx, asset.ID, e.cfg.MarketData.WindowDays)
		if err != nil {
			logger.ErrorWithErr(ctx, "Series fetch failed", err, "asset", asset.ID)
			return nil, types.NewStageError(types.StageFetch, asset.ID, err)
		}

		ta.Augment(series, e.cfg.Indicators.RSIPeriod)
		logger.Debug(ctx, "Indicators calculated",
			"asset", asset.ID,
			"points", series.Len(),
			"rsi", series.LatestRSI().String(),
		)

		snap, degraded, err := buildSnapshot(series)
		if err != nil {
			logger.ErrorWithErr(ctx, "Snapshot failed", err, "asset", asset.ID, "points", series.Len())
			return nil, types.NewStageError(types.StageSnapshot, asset.ID, err)
		}
		if degraded {
			logger.Warn(ctx, "Snapshot degraded to price only", "asset", asset.ID, "points", series.Len())
			res.Warnings = append(res.Warnings, types.NewStageError(types.StageSnapshot, asset.ID,
				fmt.Errorf("%w: single point, change and RSI unavailable", types.ErrInsufficientData)))
		}
		snap.Symbol, snap.Name = asset.Symbol, asset.Name

		res.Series[i] = *series
		res.Snapshots[i] = snap
	}

	cached := sess.Cached()
	gen, err := e.composer.Compose(ctx, res.Snapshots, cached)
	switch {
	case err != nil:
		logger.ErrorWithErr(ctx, "Narrative generation failed", err, "session_id", sess.ID, "has_cached", cached != nil)
		res.Warnings = append(res.Warnings, types.NewStageError(types.StageGenerate, "", err))
	case cached == nil:
		sess.Cache(gen)
		res.Generated = true
		logger.Narrative(ctx, sess.ID, gen.Model, len(gen.Text))
	}

	res.Narrative = sess.Cached()
	res.Draft = sess.Draft()

	logger.Debug(ctx, "Run completed",
		"session_id", sess.ID,
		"warnings", len(res.Warnings),
		"has_narrative", res.Narrative != nil,
	)
	return res, nil
}

// Dispatch posts the session draft to the session webhook. Each call is an
// independent POST.
func (e *Engine) Dispatch(ctx context.Context, sess *session.Session) (types.DispatchResult, error) {
	if err := challenge.Require(sess.Challenge()); err != nil {
		return types.DispatchResult{}, types.NewStageError(types.StageDispatch, "", err)
	}

	text := sess.Draft()
	if text == "" {
		return types.DispatchResult{}, types.NewStageError(types.StageDispatch, "", fmt.Errorf("%w: nothing to post", types.ErrDispatch))
	}

	res, err := e.sink.Dispatch(ctx, sess.WebhookURL(), text)
	if err != nil {
		return res, types.NewStageError(types.StageDispatch, "", err)
	}
	return res, nil
}
