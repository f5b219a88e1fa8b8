// internal/llm/providers/openrouter/openrouter.go
package openrouter

import (
	"context"
	"errors"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"scenario-builder/internal/llm"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

func init() {
	llm.Register("openrouter", func() llm.Provider {
		return &Provider{
			recommendedModels: []string{
				"google/gemma-3-27b-it:free",
				"qwen/qwen3-235b-a22b:free",
				"mistralai/devstral-2512:free",
				"nousresearch/hermes-3-llama-3.1-405b:free",
			},
			baseURL: defaultBaseURL,
		}
	})
}

// Provider serves text through the OpenRouter gateway. OpenRouter speaks
// the OpenAI chat wire format, so the same client library is reused with a
// different base URL. It has no image endpoint.
type Provider struct {
	client            *goopenai.Client
	baseURL           string
	defaultModel      string
	recommendedModels []string
}

func (p *Provider) Initialize(config map[string]string) error {
	apiKey, exists := config["api_key"]
	if !exists || apiKey == "" {
		return errors.New("OpenRouter API key not provided")
	}

	if baseURL, exists := config["base_url"]; exists && baseURL != "" {
		p.baseURL = baseURL
	}

	cfg := goopenai.DefaultConfig(apiKey)
	cfg.BaseURL = p.baseURL
	p.client = goopenai.NewClientWithConfig(cfg)

	if model, exists := config["default_model"]; exists && model != "" {
		p.defaultModel = model
	} else {
		p.defaultModel = "google/gemma-3-27b-it:free"
	}

	return nil
}

func (p *Provider) GetName() string {
	return "OpenRouter"
}

func (p *Provider) GetSupportedModels() []string {
	return p.recommendedModels
}

func (p *Provider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	messages := []goopenai.ChatCompletionMessage{
		{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt},
	}
	if req.SystemPrompt != "" {
		messages = append([]goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.SystemPrompt},
		}, messages...)
	}

	chatReq := goopenai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("OpenRouter chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("OpenRouter returned no choices")
	}

	return &llm.CompletionResponse{
		Text:         resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
		TokensUsed:   resp.Usage.TotalTokens,
		ModelName:    resp.Model,
		ProviderName: p.GetName(),
	}, nil
}

// GenerateImage always fails: OpenRouter does not expose an image API.
func (p *Provider) GenerateImage(_ context.Context, _ llm.ImageRequest) (*llm.ImageResponse, error) {
	return nil, llm.ErrImagesUnsupported
}
