package engine

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-narrator/internal/challenge"
	"crypto-narrator/internal/narrative"
	"crypto-narrator/internal/session"
	"crypto-narrator/internal/store"
	"crypto-narrator/internal/types"
)

type fakeFetcher struct {
	series map[string][]float64
	err    map[string]error
	calls  int
}

func (f *fakeFetcher) Fetch(_ context.Context, assetID string, _ int) (*types.NormalizedSeries, error) {
	f.calls++
	if err := f.err[assetID]; err != nil {
		return nil, err
	}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &types.NormalizedSeries{AssetID: assetID}
	for i, p := range f.series[assetID] {
		s.Points = append(s.Points, types.TimeSeriesPoint{
			Timestamp: start.AddDate(0, 0, i),
			Price:     decimal.NewFromFloat(p),
			Volume:    decimal.NewFromInt(1),
		})
	}
	return s, nil
}

type fakeGenerator struct {
	calls int
	text  string
	err   error
}

func (g *fakeGenerator) Generate(context.Context, types.GenerationRequest) (string, error) {
	g.calls++
	return g.text, g.err
}

type fakeSink struct {
	calls int
	url   string
	text  string
	res   types.DispatchResult
	err   error
}

func (s *fakeSink) Dispatch(_ context.Context, url, text string) (types.DispatchResult, error) {
	s.calls++
	s.url, s.text = url, text
	return s.res, s.err
}

func rising(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

type fixture struct {
	eng     *Engine
	fetcher *fakeFetcher
	gen     *fakeGenerator
	sink    *fakeSink
	store   *session.Store
	gate    *challenge.Gate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := store.Default()
	f := &fixture{
		fetcher: &fakeFetcher{series: map[string][]float64{
			"bitcoin": rising(30),
			"cardano": rising(30),
		}},
		gen:   &fakeGenerator{text: "Joe says HODL."},
		sink:  &fakeSink{res: types.DispatchResult{StatusCode: 204, Succeeded: true}},
		store: session.NewStore(),
		gate:  challenge.New(rand.New(rand.NewPCG(1, 2))),
	}
	composer := narrative.New(f.gen, narrative.Settings{Model: cfg.LLM.Model, MaxTokens: cfg.LLM.MaxTokens, Temperature: cfg.LLM.Temperature})
	f.eng = newEngine(cfg, f.gate, f.fetcher, composer, f.sink)
	return f
}

func (f *fixture) passedSession(t *testing.T) *session.Session {
	t.Helper()
	sess := f.store.Create(f.gate.NewState(), "https://discord.test/api/webhooks/1/abc")
	_, err := f.eng.Verify(context.Background(), sess, strconv.Itoa(sess.Challenge().Answer()))
	require.NoError(t, err)
	return sess
}

func TestRunRequiresChallenge(t *testing.T) {
	f := newFixture(t)
	sess := f.store.Create(f.gate.NewState(), "")

	_, err := f.eng.Run(context.Background(), sess)
	assert.True(t, errors.Is(err, types.ErrChallengeRequired))
	assert.Equal(t, types.StageChallenge, types.StageOf(err))
	assert.Zero(t, f.fetcher.calls)
	assert.Zero(t, f.gen.calls)
}

func TestVerifyWrongAnswerRedraws(t *testing.T) {
	f := newFixture(t)
	sess := f.store.Create(f.gate.NewState(), "")
	wrong := strconv.Itoa(sess.Challenge().Answer() + 1)

	st, err := f.eng.Verify(context.Background(), sess, wrong)
	assert.True(t, errors.Is(err, types.ErrChallengeFailed))
	assert.False(t, st.Passed)
	assert.Equal(t, st, sess.Challenge())
}

func TestRunProducesSnapshotsAndCachesNarrative(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := f.passedSession(t)

	res, err := f.eng.Run(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, sess.ID, res.SessionID)

	btc := res.Snapshots[0]
	assert.Equal(t, "BTC", btc.Symbol)
	assert.Equal(t, "Bitcoin", btc.Name)
	assert.True(t, btc.LatestPrice.Equal(decimal.NewFromInt(129)))
	rsi, ok := btc.LatestRSI.Get()
	require.True(t, ok)
	assert.Equal(t, 100.0, rsi)
	assert.Len(t, res.Series[1].RSI, 30)

	require.NotNil(t, res.Narrative)
	assert.Equal(t, "Joe says HODL.", res.Narrative.Text)
	assert.Equal(t, "Joe says HODL.", res.Draft)
	assert.True(t, res.Generated)
	assert.Equal(t, 1, f.gen.calls)

	// A rerun fetches again but reuses the cached narrative.
	res2, err := f.eng.Run(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 4, f.fetcher.calls)
	assert.Equal(t, 1, f.gen.calls)
	assert.Equal(t, res.Narrative.Text, res2.Narrative.Text)
	assert.False(t, res2.Generated)
}

func TestRunFetchFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fetcher.err = map[string]error{"cardano": types.ErrUpstream}
	sess := f.passedSession(t)

	res, err := f.eng.Run(ctx, sess)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, types.ErrUpstream))
	var se *types.StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, types.StageFetch, se.Stage)
	assert.Equal(t, "cardano", se.AssetID)
	assert.Zero(t, f.gen.calls)
}

func TestRunGenerationFailureIsWarning(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.gen.err = errors.New("503")
	sess := f.passedSession(t)

	res, err := f.eng.Run(ctx, sess)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, types.StageGenerate, res.Warnings[0].Stage)
	assert.True(t, errors.Is(res.Warnings[0], types.ErrGeneration))
	assert.Nil(t, res.Narrative)
	assert.False(t, res.Snapshots[0].LatestPrice.IsZero())
}

func TestRunGenerationFailureKeepsPriorNarrative(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := f.passedSession(t)
	_, err := f.eng.Run(ctx, sess)
	require.NoError(t, err)

	sess.ResetNarrative()
	f.gen.err = errors.New("timeout")
	res, err := f.eng.Run(ctx, sess)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "Joe says HODL.", res.Draft)
	assert.False(t, res.Generated)
}

func TestRunSinglePointDegrades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fetcher.series["cardano"] = []float64{0.45}
	sess := f.passedSession(t)

	res, err := f.eng.Run(ctx, sess)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, types.StageSnapshot, res.Warnings[0].Stage)
	assert.True(t, errors.Is(res.Warnings[0], types.ErrInsufficientData))
	assert.False(t, res.Snapshots[1].DayChangePct.IsDefined())
	assert.Equal(t, 1, f.gen.calls)
}

func TestRunEmptySeriesIsFatal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fetcher.series["bitcoin"] = nil
	sess := f.passedSession(t)

	_, err := f.eng.Run(ctx, sess)
	assert.True(t, errors.Is(err, types.ErrInsufficientData))
	assert.Equal(t, types.StageSnapshot, types.StageOf(err))
}

func TestDispatchPostsDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := f.passedSession(t)
	_, err := f.eng.Run(ctx, sess)
	require.NoError(t, err)

	sess.Edit("Edited by operator")
	res, err := f.eng.Dispatch(ctx, sess)
	require.NoError(t, err)
	assert.True(t, res.Succeeded)
	assert.Equal(t, "Edited by operator", f.sink.text)
	assert.Equal(t, sess.WebhookURL(), f.sink.url)
	assert.Equal(t, "Joe says HODL.", sess.Cached().Text)

	// Every click posts again.
	_, err = f.eng.Dispatch(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 2, f.sink.calls)
}

func TestDispatchFailureNamesStage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.sink.res = types.DispatchResult{StatusCode: 500}
	f.sink.err = types.ErrDispatch
	sess := f.passedSession(t)
	sess.Edit("text")

	res, err := f.eng.Dispatch(ctx, sess)
	assert.Equal(t, 500, res.StatusCode)
	assert.True(t, errors.Is(err, types.ErrDispatch))
	assert.Equal(t, types.StageDispatch, types.StageOf(err))
}

func TestDispatchEmptyDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := f.passedSession(t)

	_, err := f.eng.Dispatch(ctx, sess)
	assert.True(t, errors.Is(err, types.ErrDispatch))
	assert.Zero(t, f.sink.calls)
}
