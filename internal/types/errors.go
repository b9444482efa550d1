package types

import (
	"errors"
	"fmt"
)

var (
	ErrUpstream          = errors.New("upstream error")
	ErrMalformedData     = errors.New("malformed provider data")
	ErrInsufficientData  = errors.New("insufficient data")
	ErrGeneration        = errors.New("generation failed")
	ErrDispatch          = errors.New("dispatch failed")
	ErrNoWebhook         = errors.New("webhook URL is empty")
	ErrChallengeRequired = errors.New("challenge not passed")
	ErrChallengeFailed   = errors.New("incorrect challenge answer")
)

// Pipeline stages, used to tell the operator where a failure happened.
const (
	StageChallenge = "challenge"
	StageFetch     = "fetch"
	StageSnapshot  = "snapshot"
	StageGenerate  = "generate"
	StageDispatch  = "dispatch"
)

// StageError tags an error with the pipeline stage that produced it.
type StageError struct {
	Stage   string `json:"stage"`
	AssetID string `json:"asset_id,omitempty"`
	Err     error  `json:"-"`
}

func NewStageError(stage, assetID string, err error) *StageError {
	return &StageError{Stage: stage, AssetID: assetID, Err: err}
}

func (e *StageError) Error() string {
	if e.AssetID != "" {
		return fmt.Sprintf("%s [%s]: %v", e.Stage, e.AssetID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StageOf returns the stage recorded on err, or "" when err carries none.
func StageOf(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
