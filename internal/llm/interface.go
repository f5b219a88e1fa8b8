// internal/llm/interface.go
package llm

import (
	"context"
	"errors"
)

var (
	ErrUnknownProvider = errors.New("unknown AI provider")

	// ErrImagesUnsupported is returned by providers that only serve text.
	ErrImagesUnsupported = errors.New("provider does not support image generation")
)

// CompletionRequest is the normalized text-generation request. Single-shot:
// no conversation state is carried between calls.
type CompletionRequest struct {
	Prompt       string  `json:"prompt"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	Temperature  float32 `json:"temperature,omitempty"`
	Model        string  `json:"model,omitempty"`
}

// CompletionResponse is the normalized text-generation response.
type CompletionResponse struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"`
	TokensUsed   int    `json:"tokens_used,omitempty"`
	ModelName    string `json:"model_name,omitempty"`
	ProviderName string `json:"provider_name,omitempty"`
}

// ImageRequest is the normalized image-generation request. AspectRatio is
// the project-level ratio string ("16:9", "1:1", "9:16"); each provider maps
// it onto whatever discrete sizes its backend supports.
type ImageRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
	Model       string `json:"model,omitempty"`
}

// ImageResponse carries the raw bytes of a single generated image.
type ImageResponse struct {
	Data         []byte `json:"-"`
	ModelName    string `json:"model_name,omitempty"`
	ProviderName string `json:"provider_name,omitempty"`
}

// Provider defines the contract every AI backend implements. Callers depend
// only on these signatures, never on a provider's wire shapes.
type Provider interface {
	// Initialize configures the provider from a flat config map.
	Initialize(config map[string]string) error

	// GetName returns the provider's registry name.
	GetName() string

	// GetSupportedModels lists the models the provider knows about.
	GetSupportedModels() []string

	// CompleteText performs a single-shot text completion.
	CompleteText(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// GenerateImage performs a single-shot image generation. Providers
	// without an image backend return ErrImagesUnsupported.
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error)
}

// ProviderFactory constructs an uninitialized provider.
type ProviderFactory func() Provider

var providers = make(map[string]ProviderFactory)

// Register registers a provider factory. Called from provider package
// init functions.
func Register(name string, factory ProviderFactory) {
	providers[name] = factory
}

// GetProvider creates and initializes the named provider.
func GetProvider(name string, config map[string]string) (Provider, error) {
	factory, exists := providers[name]
	if !exists {
		return nil, ErrUnknownProvider
	}

	provider := factory()
	if err := provider.Initialize(config); err != nil {
		return nil, err
	}

	return provider, nil
}

// ListProviders returns the names of all registered providers.
func ListProviders() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	return names
}

// GetSupportedModelsForProvider lists the models of a registered provider.
func GetSupportedModelsForProvider(name string) []string {
	factory, exists := providers[name]
	if !exists {
		return []string{}
	}
	return factory().GetSupportedModels()
}
