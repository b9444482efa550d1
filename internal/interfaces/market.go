package interfaces

import (
	"context"

	"crypto-narrator/internal/types"
)

// SeriesFetcher retrieves a normalized daily price/volume series for one asset.
type SeriesFetcher interface {
	Fetch(ctx context.Context, assetID string, windowDays int) (*types.NormalizedSeries, error)
}
