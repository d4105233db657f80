package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/interfaces"
)

// NewGenerativeModel creates the provider named by chat.provider.
// A missing API key is not fatal: it returns nil and generic questions get partial answers.
func NewGenerativeModel(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (interfaces.GenerativeModel, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Chat.Provider))
	logger.Info().Str("provider", provider).Msg("Initializing generative model")

	switch provider {
	case ProviderGemini:
		if cfg.Gemini.APIKey == "" {
			logger.Warn().Msg("Gemini API key not set, generic questions will return partial answers")
			return nil, nil
		}
		model, err := NewGeminiModel(ctx, &cfg.Gemini, logger)
		if err != nil {
			return nil, err
		}
		return model, nil

	case ProviderClaude:
		if cfg.Claude.APIKey == "" {
			logger.Warn().Msg("Anthropic API key not set, generic questions will return partial answers")
			return nil, nil
		}
		model, err := NewClaudeModel(&cfg.Claude, logger)
		if err != nil {
			return nil, err
		}
		return model, nil

	case "", "none":
		logger.Warn().Msg("No chat provider configured, generic questions will return partial answers")
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported chat provider %q: must be %q or %q", cfg.Chat.Provider, ProviderGemini, ProviderClaude)
}
