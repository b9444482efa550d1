// Package coingecko fetches daily market charts from the CoinGecko API and
// normalizes them into timestamp-joined series.
package coingecko

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"crypto-narrator/internal/api"
	"crypto-narrator/internal/interfaces"
	"crypto-narrator/internal/logger"
	"crypto-narrator/internal/store"
	"crypto-narrator/internal/types"
)

const demoKeyHeader = "x-cg-demo-api-key"

type Params struct {
	VsCurrency string
	Interval   string
	WindowDays int
}

type Fetcher struct {
	client *api.Client
	params Params
}

var _ interfaces.SeriesFetcher = (*Fetcher)(nil)

// New wraps an already configured API client.
func New(client *api.Client, p Params) *Fetcher {
	if p.VsCurrency == "" {
		p.VsCurrency = "usd"
	}
	if p.Interval == "" {
		p.Interval = "daily"
	}
	if p.WindowDays <= 0 {
		p.WindowDays = 90
	}
	return &Fetcher{client: client, params: p}
}

// NewFromConfig builds the rate-limited client from the market_data section.
func NewFromConfig(cfg *store.Config) *Fetcher {
	opts := []api.ClientOption{
		api.WithBaseURL(cfg.MarketData.BaseURL),
		api.WithRateLimit(cfg.MarketData.RequestsPerMinute, 2),
		api.WithHeader("Accept", "application/json"),
		api.WithLogging(true),
	}
	if cfg.Secrets.CoinGeckoAPIKey != "" {
		opts = append(opts, api.WithHeader(demoKeyHeader, cfg.Secrets.CoinGeckoAPIKey))
	}
	return New(api.NewClient(opts...), Params{
		VsCurrency: cfg.MarketData.VsCurrency,
		Interval:   cfg.MarketData.Interval,
		WindowDays: cfg.MarketData.WindowDays,
	})
}

// marketChart is the /coins/{id}/market_chart response. Each pair is
// [timestamp_ms, value].
type marketChart struct {
	Prices       [][]decimal.Decimal `json:"prices"`
	TotalVolumes [][]decimal.Decimal `json:"total_volumes"`
}

// Fetch returns the trailing windowDays of daily points for assetID.
func (f *Fetcher) Fetch(ctx context.Context, assetID string, windowDays int) (*types.NormalizedSeries, error) {
	if windowDays <= 0 {
		windowDays = f.params.WindowDays
	}
	q := url.Values{
		"vs_currency": {f.params.VsCurrency},
		"days":        {strconv.Itoa(windowDays)},
		"interval":    {f.params.Interval},
	}

	resp, err := f.client.GET(ctx, "/coins/"+url.PathEscape(assetID)+"/market_chart", q)
	if err != nil {
		if code := api.StatusCode(err); code != 0 {
			return nil, fmt.Errorf("%w: market data for %s returned HTTP %d", types.ErrUpstream, assetID, code)
		}
		return nil, fmt.Errorf("%w: market data for %s: %v", types.ErrUpstream, assetID, err)
	}

	var chart marketChart
	if err := resp.ParseJSON(&chart); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrMalformedData, assetID, err)
	}
	if chart.Prices == nil || chart.TotalVolumes == nil {
		return nil, fmt.Errorf("%w: %s: response lacks prices or total_volumes", types.ErrMalformedData, assetID)
	}

	series, dropped, err := join(assetID, chart.Prices, chart.TotalVolumes)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		logger.Warn(ctx, "Dropped unmatched timestamps while joining price and volume",
			"asset", assetID,
			"dropped", dropped,
			"kept", series.Len(),
		)
	}
	return series, nil
}

// join inner-joins price and volume pairs on the exact millisecond timestamp
// and returns the points in ascending order. The first occurrence of a
// repeated timestamp wins.
func join(assetID string, prices, volumes [][]decimal.Decimal) (*types.NormalizedSeries, int, error) {
	vol := make(map[int64]decimal.Decimal, len(volumes))
	for i, pair := range volumes {
		if len(pair) != 2 {
			return nil, 0, fmt.Errorf("%w: %s: total_volumes[%d] has %d elements", types.ErrMalformedData, assetID, i, len(pair))
		}
		ts := pair[0].IntPart()
		if _, dup := vol[ts]; !dup {
			vol[ts] = pair[1]
		}
	}

	points := make([]types.TimeSeriesPoint, 0, len(prices))
	seen := make(map[int64]bool, len(prices))
	unmatched := 0
	for i, pair := range prices {
		if len(pair) != 2 {
			return nil, 0, fmt.Errorf("%w: %s: prices[%d] has %d elements", types.ErrMalformedData, assetID, i, len(pair))
		}
		ts := pair[0].IntPart()
		if seen[ts] {
			continue
		}
		seen[ts] = true
		v, ok := vol[ts]
		if !ok {
			unmatched++
			continue
		}
		points = append(points, types.TimeSeriesPoint{
			Timestamp: time.UnixMilli(ts).UTC(),
			Price:     pair[1],
			Volume:    v,
		})
	}
	for ts := range vol {
		if !seen[ts] {
			unmatched++
		}
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return &types.NormalizedSeries{AssetID: assetID, Points: points}, unmatched, nil
}
