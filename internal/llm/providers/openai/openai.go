// internal/llm/providers/openai/openai.go
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"scenario-builder/internal/llm"
)

func init() {
	llm.Register("openai", func() llm.Provider {
		return &Provider{
			supportedModels: []string{
				"gpt-4o",
				"gpt-4o-mini",
				"gpt-4.1",
				"gpt-4.1-mini",
			},
			imageModels: []string{
				"gpt-image-1",
				"gpt-image-1-mini",
			},
		}
	})
}

type Provider struct {
	client            *goopenai.Client
	defaultModel      string
	defaultImageModel string
	supportedModels   []string
	imageModels       []string
}

func (p *Provider) Initialize(config map[string]string) error {
	apiKey, exists := config["api_key"]
	if !exists || apiKey == "" {
		return errors.New("OpenAI API key not provided")
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL, exists := config["base_url"]; exists && baseURL != "" {
		cfg.BaseURL = baseURL
	}
	p.client = goopenai.NewClientWithConfig(cfg)

	if model, exists := config["default_model"]; exists && model != "" {
		p.defaultModel = model
	} else {
		p.defaultModel = "gpt-4o-mini"
	}

	if model, exists := config["image_model"]; exists && model != "" {
		p.defaultImageModel = model
	} else {
		p.defaultImageModel = "gpt-image-1-mini"
	}

	return nil
}

func (p *Provider) GetName() string {
	return "OpenAI"
}

func (p *Provider) GetSupportedModels() []string {
	models := make([]string, 0, len(p.supportedModels)+len(p.imageModels))
	models = append(models, p.supportedModels...)
	models = append(models, p.imageModels...)
	return models
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
		return nil, fmt.Errorf("OpenAI chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("OpenAI returned no choices")
	}

	return &llm.CompletionResponse{
		Text:         resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
		TokensUsed:   resp.Usage.TotalTokens,
		ModelName:    resp.Model,
		ProviderName: p.GetName(),
	}, nil
}

// SizeForAspectRatio maps a project aspect ratio onto the discrete sizes the
// image API supports. Unrecognized ratios fall back to square.
func SizeForAspectRatio(ratio string) string {
	switch ratio {
	case "1:1", "":
		return "1024x1024"
	case "16:9":
		return "1536x1024"
	case "9:16":
		return "1024x1536"
	default:
		return "1024x1024"
	}
}

func (p *Provider) GenerateImage(ctx context.Context, req llm.ImageRequest) (*llm.ImageResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultImageModel
	}

	resp, err := p.client.CreateImage(ctx, goopenai.ImageRequest{
		Prompt: req.Prompt,
		Model:  model,
		Size:   SizeForAspectRatio(req.AspectRatio),
		N:      1,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI image generation failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("OpenAI returned no image data")
	}
	if resp.Data[0].B64JSON == "" {
		return nil, errors.New("OpenAI returned empty image payload")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decoding image payload: %w", err)
	}

	return &llm.ImageResponse{
		Data:         data,
		ModelName:    model,
		ProviderName: p.GetName(),
	}, nil
}
