package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-narrator/internal/logger"
	"crypto-narrator/internal/types"
)

func server(t *testing.T, status int, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		var p payload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "BTC update", p.Content)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDispatchEmptyURLMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	server(t, http.StatusNoContent, &calls)

	res, err := New(0).Dispatch(context.Background(), "   ", "BTC update")
	assert.True(t, errors.Is(err, types.ErrNoWebhook))
	assert.False(t, res.Succeeded)
	assert.Zero(t, calls.Load())
}

func TestDispatchNoContentSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := server(t, http.StatusNoContent, &calls)

	res, err := New(0).Dispatch(context.Background(), srv.URL+"/api/webhooks/1/token", "BTC update")
	require.NoError(t, err)
	assert.True(t, res.Succeeded)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.EqualValues(t, 1, calls.Load())
}

func TestDispatchServerErrorCarriesStatus(t *testing.T) {
	var calls atomic.Int32
	srv := server(t, http.StatusInternalServerError, &calls)

	res, err := New(0).Dispatch(context.Background(), srv.URL, "BTC update")
	assert.True(t, errors.Is(err, types.ErrDispatch))
	assert.False(t, res.Succeeded)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.EqualValues(t, 1, calls.Load(), "no retry")
}

func TestDispatchOKIsNotNoContent(t *testing.T) {
	var calls atomic.Int32
	srv := server(t, http.StatusOK, &calls)

	res, err := New(0).Dispatch(context.Background(), srv.URL, "BTC update")
	assert.True(t, errors.Is(err, types.ErrDispatch))
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.False(t, res.Succeeded)
}

func TestDispatchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res, err := New(0).Dispatch(context.Background(), url, "BTC update")
	assert.True(t, errors.Is(err, types.ErrDispatch))
	assert.Zero(t, res.StatusCode)
	assert.NotEmpty(t, res.TransportError)
	assert.NotContains(t, res.TransportError, url)
}

func TestDispatchRejectsOversizedContent(t *testing.T) {
	var calls atomic.Int32
	srv := server(t, http.StatusNoContent, &calls)

	_, err := New(10).Dispatch(context.Background(), srv.URL, strings.Repeat("x", 11))
	assert.True(t, errors.Is(err, types.ErrDispatch))
	assert.Zero(t, calls.Load())
}

func TestDispatchLogsHostOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, logger.InitWithWriter(&buf, logger.LogConfig{Level: "DEBUG", Format: "json", DetailedLogging: true}))
	t.Cleanup(func() { _ = logger.InitWithWriter(io.Discard, logger.LogConfig{}) })

	var calls atomic.Int32
	srv := server(t, http.StatusNoContent, &calls)

	_, err := New(0).Dispatch(context.Background(), srv.URL+"/api/webhooks/42/tok3n-abcd", "BTC update")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), srv.URL)
	assert.NotContains(t, buf.String(), "abcd")
	assert.NotContains(t, buf.String(), "webhooks/42")
}
