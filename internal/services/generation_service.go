// internal/services/generation_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"scenario-builder/internal/llm"
)

var (
	// ErrGenerationFailed wraps any provider fault during text or image
	// generation.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrResponseNotJSON reports a model reply that contained no parseable
	// JSON document where one was required.
	ErrResponseNotJSON = errors.New("response contained no valid JSON")

	// ErrServiceNotReady reports a gateway that has no initialized provider.
	ErrServiceNotReady = errors.New("generation service not ready")
)

// Generation parameters shared by every text call.
const (
	defaultTemperature = 0.7

	// Scenario and metadata calls are short; screen scripting returns a
	// full JSON document per screen and needs more room.
	maxTokensShort   = 800
	maxTokensScreens = 2000
)

// TextRequest is one single-shot text generation call.
type TextRequest struct {
	Prompt       string
	SystemPrompt string
	MaxTokens    int
}

// Gateway is the two-capability contract the wizard stages depend on.
// Implemented by GenerationService in production and by a mock in tests.
type Gateway interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
	GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error)
}

// GenerationService adapts a registered llm.Provider to the Gateway
// contract. Construction never fails: a missing key or unknown provider
// yields a not-ready service whose calls return ErrServiceNotReady, so the
// rest of the wizard (loading, editing, compositing) stays usable.
type GenerationService struct {
	mu           sync.RWMutex
	provider     llm.Provider
	providerName string
	isReady      bool
	readyState   string
	logger       *zap.Logger
}

func NewGenerationService(providerName string, providerConfig map[string]string, logger *zap.Logger) *GenerationService {
	if logger == nil {
		logger = zap.NewNop()
	}

	service := &GenerationService{
		providerName: providerName,
		readyState:   "Uninitialized",
		logger:       logger,
	}

	if providerName == "" || providerConfig["api_key"] == "" {
		service.readyState = "API key not configured"
		return service
	}

	provider, err := llm.GetProvider(providerName, providerConfig)
	if err != nil {
		service.readyState = fmt.Sprintf("Initialization failed: %v", err)
		logger.Warn("AI provider initialization failed",
			zap.String("provider", providerName),
			zap.Error(err))
		return service
	}

	service.provider = provider
	service.isReady = true
	service.readyState = "Ready"
	logger.Info("AI provider initialized",
		zap.String("provider", provider.GetName()))

	return service
}

func (s *GenerationService) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isReady
}

func (s *GenerationService) ReadyState() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readyState
}

// SetProvider swaps the active provider at runtime.
func (s *GenerationService) SetProvider(providerName string, providerConfig map[string]string) error {
	provider, err := llm.GetProvider(providerName, providerConfig)
	if err != nil {
		return fmt.Errorf("switching provider to %q: %w", providerName, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.provider = provider
	s.providerName = providerName
	s.isReady = true
	s.readyState = "Ready"
	return nil
}

func (s *GenerationService) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	s.mu.RLock()
	provider := s.provider
	ready := s.isReady
	s.mu.RUnlock()

	if !ready || provider == nil {
		return "", ErrServiceNotReady
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = maxTokensShort
	}

	resp, err := provider.CompleteText(ctx, llm.CompletionRequest{
		Prompt:       req.Prompt,
		SystemPrompt: req.SystemPrompt,
		MaxTokens:    maxTokens,
		Temperature:  defaultTemperature,
	})
	if err != nil {
		s.logger.Warn("text generation failed",
			zap.String("provider", s.providerName),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	return resp.Text, nil
}

func (s *GenerationService) GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
	s.mu.RLock()
	provider := s.provider
	ready := s.isReady
	s.mu.RUnlock()

	if !ready || provider == nil {
		return nil, ErrServiceNotReady
	}

	resp, err := provider.GenerateImage(ctx, llm.ImageRequest{
		Prompt:      prompt,
		AspectRatio: aspectRatio,
	})
	if err != nil {
		s.logger.Warn("image generation failed",
			zap.String("provider", s.providerName),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: provider returned empty image data", ErrGenerationFailed)
	}

	return resp.Data, nil
}
