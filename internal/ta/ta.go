package ta

import "crypto-narrator/internal/types"

// DefaultRSIPeriod is the lookback used when no period is configured.
const DefaultRSIPeriod = 14

// RSISeries computes a rolling-mean RSI for every index of closes.
// Entries before index period, and flat windows (no gains and no losses),
// are Undefined. A window with gains and no losses is exactly 100.
func RSISeries(closes []float64, period int) []types.Value {
	out := make([]types.Value, len(closes))
	if period <= 0 {
		return out
	}
	for i := period; i < len(closes); i++ {
		out[i] = rsiAt(closes, i, period)
	}
	return out
}

// RSI returns the indicator at the last index of closes.
func RSI(closes []float64, period int) types.Value {
	if period <= 0 || len(closes) < period+1 {
		return types.Undefined()
	}
	return rsiAt(closes, len(closes)-1, period)
}

func rsiAt(closes []float64, i, period int) types.Value {
	gain, loss := 0.0, 0.0
	for j := i - period + 1; j <= i; j++ {
		d := closes[j] - closes[j-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	switch {
	case avgLoss == 0 && avgGain == 0:
		return types.Undefined()
	case avgLoss == 0:
		return types.Defined(100)
	}
	rs := avgGain / avgLoss
	return types.Defined(100.0 - (100.0 / (1.0 + rs)))
}

// Augment fills s.RSI so it is aligned with s.Points.
func Augment(s *types.NormalizedSeries, period int) {
	s.RSI = RSISeries(s.Prices(), period)
}
