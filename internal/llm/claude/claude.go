package claude

import (
	"context"
	"errors"
	"fmt"

	"crypto-narrator/internal/api"
	"crypto-narrator/internal/interfaces"
	"crypto-narrator/internal/logger"
	"crypto-narrator/internal/types"
)

const (
	// DefaultEndpoint is the public Anthropic messages endpoint. A proxy can
	// be configured via llm.endpoint.
	DefaultEndpoint = "https://api.anthropic.com/v1/messages"
	apiVersion      = "2023-06-01"
)

// Generator calls the Anthropic Messages API.
type Generator struct {
	client   *api.Client
	endpoint string
	apiKey   string
}

var _ interfaces.Generator = (*Generator)(nil)

func New(apiKey, endpoint string, opts ...api.ClientOption) *Generator {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Generator{
		client:   api.NewClient(append([]api.ClientOption{api.WithLogging(true)}, opts...)...),
		endpoint: endpoint,
		apiKey:   apiKey,
	}
}

type messagesRequest struct {
	Model       string              `json:"model"`
	MaxTokens   int                 `json:"max_tokens"`
	Temperature float32             `json:"temperature"`
	Messages    []map[string]string `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (g *Generator) Generate(ctx context.Context, req types.GenerationRequest) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("%w: %w", types.ErrGeneration, errors.New("ANTHROPIC_API_KEY missing"))
	}

	body := messagesRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages:    []map[string]string{{"role": "user", "content": req.Prompt}},
	}
	logger.Debug(ctx, "Sending request to Claude", "model", req.Model, "endpoint", g.endpoint)

	resp, err := g.client.POST(ctx, g.endpoint, body, map[string]string{
		"x-api-key":         g.apiKey,
		"anthropic-version": apiVersion,
	})
	if err != nil {
		if code := api.StatusCode(err); code != 0 {
			return "", fmt.Errorf("%w: %w: claude http %d", types.ErrGeneration, types.ErrUpstream, code)
		}
		return "", fmt.Errorf("%w: %w: %v", types.ErrGeneration, types.ErrUpstream, err)
	}

	var r messagesResponse
	if err := resp.ParseJSON(&r); err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrGeneration, err)
	}

	// The first text block is the completion; tool or thinking blocks are skipped
	for _, block := range r.Content {
		if block.Type == "text" {
			logger.Debug(ctx, "Claude completion received", "stop_reason", r.StopReason, "chars", len(block.Text))
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("%w: no text content in response", types.ErrGeneration)
}
