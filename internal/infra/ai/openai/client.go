package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/sentichain/internal/domain/ai"
	"github.com/bryanwahyu/sentichain/internal/domain/sentiment"
	"github.com/bryanwahyu/sentichain/internal/infra/ai/prompt"
)

const (
	maxTokens    = 2048
	defaultModel = "gpt-4o-mini"
)

type Client struct {
	*openai.Client
	Model string
}

// NewClient. baseURL may be empty for the public endpoint.
func NewClient(apiKey, model, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model}
}

// Chat implements ai.Client.
func (c *Client) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	req := c.request(toOpenAI(messages))
	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Classify implements sentiment.SentenceClassifier with a JSON-mode completion.
func (c *Client) Classify(ctx context.Context, units []string) ([]sentiment.Detail, error) {
	req := c.request([]openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt.GetClassifierSystemPrompt()},
		{Role: openai.ChatMessageRoleUser, Content: prompt.GetClassifierUserPrompt(units)},
	})
	req.ResponseFormat = &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, &sentiment.TransportError{Op: "classify", Err: mapError(err)}
	}
	if len(resp.Choices) == 0 {
		return nil, &sentiment.TransportError{Op: "classify", Err: errors.New("empty completion")}
	}
	cls, err := prompt.ParseClassifications(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, &sentiment.TransportError{Op: "classify", Err: err}
	}

	out := make([]sentiment.Detail, 0, len(cls))
	for _, v := range cls {
		out = append(out, sentiment.Detail{
			Sentiment:      strings.ToLower(strings.TrimSpace(v.Sentiment)),
			Confidence:     v.Confidence,
			HateSpeech:     v.Toxic,
			HateConfidence: v.Toxicity,
		})
	}
	return out, nil
}

func (c *Client) request(msgs []openai.ChatCompletionMessage) openai.ChatCompletionRequest {
	model := c.Model
	if model == "" {
		model = defaultModel
	}
	req := openai.ChatCompletionRequest{Model: model, Messages: msgs}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}
	return req
}

func toOpenAI(messages []ai.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == ai.RoleSystem {
			role = openai.ChatMessageRoleSystem
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

// mapError turns provider quota responses into ai.ErrQuotaExceeded.
func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", ai.ErrQuotaExceeded, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, reqErr.Err)
	}
	return fmt.Errorf("failed to create chat completion: %w", err)
}
