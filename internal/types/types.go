package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TimeSeriesPoint is one daily observation for an asset.
type TimeSeriesPoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
	Volume    decimal.Decimal `json:"volume"`
}

// Day returns the UTC calendar day the point was sampled on.
func (p TimeSeriesPoint) Day() time.Time {
	return p.Timestamp.UTC().Truncate(24 * time.Hour)
}

// NormalizedSeries is an ascending, timestamp-joined price/volume series.
// RSI is aligned index-for-index with Points once the series is augmented.
type NormalizedSeries struct {
	AssetID string            `json:"asset_id"`
	Points  []TimeSeriesPoint `json:"points"`
	RSI     []Value           `json:"rsi"`
}

func (s *NormalizedSeries) Len() int { return len(s.Points) }

// Prices returns the price column as float64, oldest first.
func (s *NormalizedSeries) Prices() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Price.InexactFloat64()
	}
	return out
}

// Last returns the newest point. ok is false for an empty series.
func (s *NormalizedSeries) Last() (TimeSeriesPoint, bool) {
	if len(s.Points) == 0 {
		return TimeSeriesPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// LatestRSI returns the final indicator entry, Undefined when there is none.
func (s *NormalizedSeries) LatestRSI() Value {
	if len(s.RSI) == 0 || len(s.RSI) != len(s.Points) {
		return Undefined()
	}
	return s.RSI[len(s.RSI)-1]
}

// AssetSnapshot is the latest-value reduction of a series.
type AssetSnapshot struct {
	AssetID      string          `json:"asset_id"`
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	LatestPrice  decimal.Decimal `json:"latest_price"`
	DayChangePct Value           `json:"day_change_pct"`
	LatestRSI    Value           `json:"latest_rsi"`
	AsOf         time.Time       `json:"as_of"`
}

// GenerationRequest is a fully rendered prompt plus sampling parameters.
type GenerationRequest struct {
	Prompt      string  `json:"prompt"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
}

// GenerationResult holds the narrative exactly as the service returned it.
type GenerationResult struct {
	Text        string    `json:"text"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
}

type ChallengeState struct {
	OperandA int  `json:"operand_a"`
	OperandB int  `json:"operand_b"`
	Passed   bool `json:"passed"`
}

// Question renders the arithmetic prompt shown to the operator.
func (c ChallengeState) Question() string {
	return fmt.Sprintf("What is %d + %d?", c.OperandA, c.OperandB)
}

func (c ChallengeState) Answer() int { return c.OperandA + c.OperandB }

type DispatchResult struct {
	StatusCode     int    `json:"status_code"`
	Succeeded      bool   `json:"succeeded"`
	TransportError string `json:"transport_error,omitempty"`
}

// RunResult is everything one pipeline execution hands to the operator surface.
type RunResult struct {
	SessionID string              `json:"session_id"`
	Series    [2]NormalizedSeries `json:"series"`
	Snapshots [2]AssetSnapshot    `json:"snapshots"`
	Narrative *GenerationResult   `json:"narrative,omitempty"`
	Draft     string              `json:"draft"`
	// Generated is set when this run produced a new narrative rather than
	// reusing the session cache.
	Generated bool                `json:"generated"`
	Warnings  []*StageError       `json:"warnings,omitempty"`
	Time      time.Time           `json:"time"`
}
