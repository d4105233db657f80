package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/ternarybob/kintari/internal/common"
)

// ProviderGemini is the chat.provider value selecting Gemini
const ProviderGemini = "gemini"

type geminiGenerateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiModel answers questions with Google Gemini
type GeminiModel struct {
	config   *common.GeminiConfig
	generate geminiGenerateFunc
	limiter  *rate.Limiter
	retry    *RetryConfig
	timeout  time.Duration
	logger   arbor.ILogger
}

// NewGeminiModel creates a Gemini provider. The API key is required.
func NewGeminiModel(ctx context.Context, config *common.GeminiConfig, logger arbor.ILogger) (*GeminiModel, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set KINTARI_GEMINI_API_KEY, GEMINI_API_KEY or gemini.api_key)")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	model := newGeminiModel(client.Models.GenerateContent, config, logger)
	logger.Info().
		Str("model", config.Model).
		Str("rate_limit", config.RateLimit).
		Int64("timeout_ms", model.timeout.Milliseconds()).
		Msg("Gemini model initialized")
	return model, nil
}

func newGeminiModel(generate geminiGenerateFunc, config *common.GeminiConfig, logger arbor.ILogger) *GeminiModel {
	if config.Model == "" {
		config.Model = "gemini-2.0-flash"
	}

	// One request per interval with no burst; an unset interval disables limiting
	limiter := rate.NewLimiter(rate.Inf, 1)
	if interval := common.ParseDuration(config.RateLimit, 0); interval > 0 {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}

	return &GeminiModel{
		config:   config,
		generate: generate,
		limiter:  limiter,
		retry:    NewDefaultRetryConfig(),
		timeout:  common.ParseDuration(config.Timeout, 30*time.Second),
		logger:   logger,
	}
}

// Name returns the provider name
func (m *GeminiModel) Name() string {
	return ProviderGemini
}

// Answer sends the context as system instruction and the question as the user turn
func (m *GeminiModel) Answer(ctx context.Context, contextText, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: local rate limit: %w", common.ErrModelQuotaExceeded, err)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(m.config.Temperature),
	}
	if m.config.TopP > 0 {
		config.TopP = genai.Ptr(m.config.TopP)
	}
	if m.config.MaxOutputTokens > 0 {
		config.MaxOutputTokens = m.config.MaxOutputTokens
	}
	contents := []*genai.Content{genai.NewContentFromText(BuildPrompt(contextText, question), genai.RoleUser)}

	var resp *genai.GenerateContentResponse
	err := m.retry.Do(ctx, func(ctx context.Context) error {
		var callErr error
		resp, callErr = m.generate(ctx, m.config.Model, contents, config)
		return callErr
	}, func(attempt int, backoff time.Duration, err error) {
		m.logger.Warn().
			Int("attempt", attempt).
			Int64("backoff_ms", backoff.Milliseconds()).
			Err(err).
			Msg("Retrying Gemini API call")
	})
	if err != nil {
		return "", classifyError(ctx, fmt.Errorf("Gemini API call failed: %w", err))
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in Gemini response", common.ErrModelMalformed)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty text in Gemini response", common.ErrModelMalformed)
	}
	return text, nil
}

// Close releases the client reference. The genai client holds no connections of its own.
func (m *GeminiModel) Close() error {
	m.generate = nil
	return nil
}
