package openai

import (
	"context"
	"errors"
	"fmt"

	"crypto-narrator/internal/api"
	"crypto-narrator/internal/interfaces"
	"crypto-narrator/internal/logger"
	"crypto-narrator/internal/types"
)

const DefaultEndpoint = "https://api.openai.com/v1/chat/completions"

// Generator calls the OpenAI chat completions API.
type Generator struct {
	client   *api.Client
	endpoint string
	apiKey   string
}

var _ interfaces.Generator = (*Generator)(nil)

// New returns a generator posting to endpoint (DefaultEndpoint when empty).
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

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float32   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Generate sends req as a single user message and returns the first choice verbatim.
func (g *Generator) Generate(ctx context.Context, req types.GenerationRequest) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("%w: %w", types.ErrGeneration, errors.New("OPENAI_API_KEY missing"))
	}

	body := chatRequest{
		Model:       req.Model,
		Messages:    []message{{Role: "user", Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	logger.Debug(ctx, "Sending request to OpenAI", "model", req.Model, "max_tokens", req.MaxTokens, "temperature", req.Temperature)

	resp, err := g.client.POST(ctx, g.endpoint, body, map[string]string{
		"Authorization": "Bearer " + g.apiKey,
	})
	if err != nil {
		if code := api.StatusCode(err); code != 0 {
			return "", fmt.Errorf("%w: %w: openai http %d", types.ErrGeneration, types.ErrUpstream, code)
		}
		return "", fmt.Errorf("%w: %w: %v", types.ErrGeneration, types.ErrUpstream, err)
	}

	var r chatResponse
	if err := resp.ParseJSON(&r); err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrGeneration, err)
	}
	if len(r.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", types.ErrGeneration)
	}
	return r.Choices[0].Message.Content, nil
}
