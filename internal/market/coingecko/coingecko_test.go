package coingecko

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-narrator/internal/api"
	"crypto-narrator/internal/store"
	"crypto-narrator/internal/types"
)

func serve(t *testing.T, status int, body string) (*Fetcher, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/coins/cardano/market_chart", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "90", r.URL.Query().Get("days"))
		assert.Equal(t, "daily", r.URL.Query().Get("interval"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(api.NewClient(api.WithBaseURL(srv.URL)), Params{}), &calls
}

func TestFetchJoinsOnIntersectingTimestamps(t *testing.T) {
	// volumes carry an extra timestamp and prices one the volumes lack
	f, _ := serve(t, http.StatusOK, `{
		"prices": [[1752969600000, 0.81], [1752883200000, 0.79], [1753056000000, 0.84], [1753142400000, 0.9]],
		"total_volumes": [[1752883200000, 500], [1752969600000, 600], [1753056000000, 700], [1753228800000, 800]]
	}`)

	s, err := f.Fetch(context.Background(), "cardano", 90)
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())

	assert.Equal(t, "cardano", s.AssetID)
	wantTS := []int64{1752883200000, 1752969600000, 1753056000000}
	wantPrice := []string{"0.79", "0.81", "0.84"}
	wantVol := []int64{500, 600, 700}
	for i, p := range s.Points {
		assert.Equal(t, wantTS[i], p.Timestamp.UnixMilli())
		assert.Equal(t, time.UTC, p.Timestamp.Location())
		assert.True(t, p.Price.Equal(decimal.RequireFromString(wantPrice[i])), "price %d = %s", i, p.Price)
		assert.True(t, p.Volume.Equal(decimal.NewFromInt(wantVol[i])), "volume %d = %s", i, p.Volume)
	}
}

func TestFetchDefaultWindow(t *testing.T) {
	f, calls := serve(t, http.StatusOK, `{"prices": [], "total_volumes": []}`)
	s, err := f.Fetch(context.Background(), "cardano", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 1, *calls)
}

func TestFetchUpstreamStatus(t *testing.T) {
	f, _ := serve(t, http.StatusTooManyRequests, `{"status":{"error_code":429}}`)
	_, err := f.Fetch(context.Background(), "cardano", 90)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUpstream))
	assert.Contains(t, err.Error(), "429")
}

func TestFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	f := New(api.NewClient(api.WithBaseURL(base)), Params{})
	_, err := f.Fetch(context.Background(), "bitcoin", 90)
	assert.True(t, errors.Is(err, types.ErrUpstream))
}

func TestFetchMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":       `<html>oops</html>`,
		"missing volume": `{"prices": [[1752883200000, 1]]}`,
		"short pair":     `{"prices": [[1752883200000]], "total_volumes": [[1752883200000, 1]]}`,
		"non numeric":    `{"prices": [[1752883200000, "abc"]], "total_volumes": [[1752883200000, 1]]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			f, _ := serve(t, http.StatusOK, body)
			_, err := f.Fetch(context.Background(), "cardano", 90)
			assert.True(t, errors.Is(err, types.ErrMalformedData), "got %v", err)
		})
	}
}

func TestJoinKeepsFirstDuplicate(t *testing.T) {
	d := decimal.NewFromInt
	s, dropped, err := join("bitcoin",
		[][]decimal.Decimal{{d(2000), d(10)}, {d(1000), d(9)}, {d(2000), d(99)}},
		[][]decimal.Decimal{{d(1000), d(1)}, {d(2000), d(2)}},
	)
	require.NoError(t, err)
	assert.Equal(t, 0, dropped)
	require.Equal(t, 2, s.Len())
	assert.True(t, s.Points[1].Price.Equal(d(10)))
}

func TestNewFromConfigSendsDemoKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cg-demo", r.Header.Get(demoKeyHeader))
		_, _ = w.Write([]byte(`{"prices": [], "total_volumes": []}`))
	}))
	defer srv.Close()

	cfg := store.Default()
	cfg.MarketData.BaseURL = srv.URL
	cfg.Secrets.CoinGeckoAPIKey = "cg-demo"

	_, err := NewFromConfig(cfg).Fetch(context.Background(), "bitcoin", 0)
	require.NoError(t, err)
}
