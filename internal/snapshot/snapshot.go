// Package snapshot reduces a normalized series to its current values.
package snapshot

import (
	"fmt"

	"github.com/shopspring/decimal"

	"crypto-narrator/internal/types"
)

var hundred = decimal.NewFromInt(100)

// Build returns the latest price, day-over-day change and latest RSI of s.
// Fewer than two points yields ErrInsufficientData.
func Build(s *types.NormalizedSeries) (types.AssetSnapshot, error) {
	if s == nil || s.Len() < 2 {
		n := 0
		if s != nil {
			n = s.Len()
		}
		return types.AssetSnapshot{}, fmt.Errorf("%w: need 2 points, have %d", types.ErrInsufficientData, n)
	}

	latest := s.Points[s.Len()-1]
	prev := s.Points[s.Len()-2]

	return types.AssetSnapshot{
		AssetID:      s.AssetID,
		LatestPrice:  latest.Price,
		DayChangePct: ChangePct(prev.Price, latest.Price),
		LatestRSI:    s.LatestRSI(),
		AsOf:         latest.Timestamp,
	}, nil
}

// Partial is the degraded snapshot for a single-point series: the price is
// known, change and RSI are undefined.
func Partial(s *types.NormalizedSeries) (types.AssetSnapshot, error) {
	last, ok := s.Last()
	if !ok {
		return types.AssetSnapshot{}, fmt.Errorf("%w: series for %s is empty", types.ErrInsufficientData, s.AssetID)
	}
	return types.AssetSnapshot{
		AssetID:      s.AssetID,
		LatestPrice:  last.Price,
		DayChangePct: types.Undefined(),
		LatestRSI:    types.Undefined(),
		AsOf:         last.Timestamp,
	}, nil
}

// ChangePct is (cur-prev)/prev*100, undefined when prev is zero.
func ChangePct(prev, cur decimal.Decimal) types.Value {
	if prev.IsZero() {
		return types.Undefined()
	}
	pct := cur.Sub(prev).Div(prev).Mul(hundred)
	return types.Defined(pct.InexactFloat64())
}
