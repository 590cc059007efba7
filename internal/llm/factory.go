package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/examcoach/internal/store"
)

// mockFeedback is what the mock provider answers once its queue is empty,
// so the server can run end to end without an API key.
const mockFeedback = "This is **mock feedback**. Configure an LLM provider for real marking."

// NewProvider creates a Provider from configuration, wrapped with request
// logging.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		mock := NewMockProvider()
		mock.Fallback = mockFeedback
		base = mock
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(base, cfg.Provider, eventRepo), nil
}

// NewTieredProviders creates the flash and pro providers. They share the
// selected provider and differ only when a tier model override is set.
func NewTieredProviders(ctx context.Context, cfg Config, eventRepo store.EventRepo) (flash, pro Provider, err error) {
	flash, err = NewProvider(ctx, cfg.WithModel(cfg.FlashModel), eventRepo)
	if err != nil {
		return nil, nil, fmt.Errorf("flash provider: %w", err)
	}
	pro, err = NewProvider(ctx, cfg.WithModel(cfg.ProModel), eventRepo)
	if err != nil {
		return nil, nil, fmt.Errorf("pro provider: %w", err)
	}
	return flash, pro, nil
}
