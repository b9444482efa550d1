package webhook

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"crypto-narrator/internal/api"
	"crypto-narrator/internal/interfaces"
	"crypto-narrator/internal/logger"
	"crypto-narrator/internal/types"
)

// DefaultMaxChars is the Discord message content limit.
const DefaultMaxChars = 2000

// Sink posts text to a Discord-compatible incoming webhook.
type Sink struct {
	client   *api.Client
	maxChars int
}

var _ interfaces.Sink = (*Sink)(nil)

type payload struct {
	Content string `json:"content"`
}

func New(maxChars int, opts ...api.ClientOption) *Sink {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Sink{
		client:   api.NewClient(append([]api.ClientOption{api.WithLogging(true)}, opts...)...),
		maxChars: maxChars,
	}
}

// Dispatch performs a single POST of text to webhookURL. Only 204 No Content
// counts as success. There is no retry.
func (s *Sink) Dispatch(ctx context.Context, webhookURL, text string) (types.DispatchResult, error) {
	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL == "" {
		return types.DispatchResult{}, types.ErrNoWebhook
	}
	target := logger.MaskURL(webhookURL)

	if n := utf8.RuneCountInString(text); n > s.maxChars {
		logger.Warn(ctx, "Narrative too long for webhook", "chars", n, "max_chars", s.maxChars)
		return types.DispatchResult{}, fmt.Errorf("%w: message has %d characters, limit is %d", types.ErrDispatch, n, s.maxChars)
	}

	resp, err := s.client.POST(ctx, webhookURL, payload{Content: text})
	if err != nil {
		if code := api.StatusCode(err); code != 0 {
			logger.Dispatch(ctx, target, code, false)
			return types.DispatchResult{StatusCode: code}, fmt.Errorf("%w: webhook returned HTTP %d", types.ErrDispatch, code)
		}
		logger.Dispatch(ctx, target, 0, false, "error", err.Error())
		return types.DispatchResult{TransportError: err.Error()}, fmt.Errorf("%w: %v", types.ErrDispatch, err)
	}

	if resp.StatusCode != http.StatusNoContent {
		logger.Dispatch(ctx, target, resp.StatusCode, false)
		return types.DispatchResult{StatusCode: resp.StatusCode}, fmt.Errorf("%w: webhook returned HTTP %d", types.ErrDispatch, resp.StatusCode)
	}

	logger.Dispatch(ctx, target, resp.StatusCode, true)
	return types.DispatchResult{StatusCode: resp.StatusCode, Succeeded: true}, nil
}
