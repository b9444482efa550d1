package marketobs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"crypto-narrator/internal/interfaces"
	"crypto-narrator/internal/logger"
	"crypto-narrator/internal/trace"
	"crypto-narrator/internal/types"
)

// observableFetcher wraps a SeriesFetcher with logging and tracing
type observableFetcher struct {
	fetcher interfaces.SeriesFetcher
}

var _ interfaces.SeriesFetcher = (*observableFetcher)(nil)

func Wrap(fetcher interfaces.SeriesFetcher) interfaces.SeriesFetcher {
	return &observableFetcher{fetcher: fetcher}
}

func (of *observableFetcher) Fetch(ctx context.Context, assetID string, windowDays int) (*types.NormalizedSeries, error) {
	ctx, span := trace.StartSpan(ctx, "market.Fetch",
		attribute.String("asset", assetID),
		attribute.Int("window_days", windowDays),
	)
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching market chart", "asset", assetID, "window_days", windowDays)

	start := time.Now()
	series, err := of.fetcher.Fetch(ctx, assetID, windowDays)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Market data fetch failed", err,
			"asset", assetID,
			"latency_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Market chart fetched",
		"asset", assetID,
		"points", series.Len(),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return series, nil
}
