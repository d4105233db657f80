package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/kintari/internal/common"
)

// ProviderClaude is the chat.provider value selecting Claude
const ProviderClaude = "claude"

type claudeSendFunc func(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)

// ClaudeModel answers questions with Anthropic Claude
type ClaudeModel struct {
	config  *common.ClaudeConfig
	send    claudeSendFunc
	retry   *RetryConfig
	timeout time.Duration
	logger  arbor.ILogger
}

// NewClaudeModel creates a Claude provider. The API key is required.
func NewClaudeModel(config *common.ClaudeConfig, logger arbor.ILogger) (*ClaudeModel, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (set ANTHROPIC_API_KEY, KINTARI_CLAUDE_API_KEY or claude.api_key)")
	}

	// Retries are handled here so they respect the request deadline
	client := anthropic.NewClient(
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	)

	model := newClaudeModel(client.Messages.New, config, logger)
	logger.Info().
		Str("model", config.Model).
		Int("max_tokens", config.MaxTokens).
		Int64("timeout_ms", model.timeout.Milliseconds()).
		Msg("Claude model initialized")
	return model, nil
}

func newClaudeModel(send claudeSendFunc, config *common.ClaudeConfig, logger arbor.ILogger) *ClaudeModel {
	if config.Model == "" {
		config.Model = "claude-3-5-haiku-latest"
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 2048
	}
	return &ClaudeModel{
		config:  config,
		send:    send,
		retry:   NewDefaultRetryConfig(),
		timeout: common.ParseDuration(config.Timeout, 30*time.Second),
		logger:  logger,
	}
}

// Name returns the provider name
func (m *ClaudeModel) Name() string {
	return ProviderClaude
}

// Answer sends the instructions as system prompt and the context with the question as the user turn
func (m *ClaudeModel) Answer(ctx context.Context, contextText, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.config.Model),
		MaxTokens: int64(m.config.MaxTokens),
		System:    []anthropic.TextBlockParam{{Text: SystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(contextText, question))),
		},
	}
	if m.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(m.config.Temperature))
	}

	var resp *anthropic.Message
	err := m.retry.Do(ctx, func(ctx context.Context) error {
		var callErr error
		resp, callErr = m.send(ctx, params)
		return callErr
	}, func(attempt int, backoff time.Duration, err error) {
		m.logger.Warn().
			Int("attempt", attempt).
			Int64("backoff_ms", backoff.Milliseconds()).
			Err(err).
			Msg("Retrying Claude API call")
	})
	if err != nil {
		return "", classifyError(ctx, fmt.Errorf("Claude API call failed: %w", err))
	}
	if resp == nil {
		return "", fmt.Errorf("%w: nil Claude response", common.ErrModelMalformed)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(response.String())
	if text == "" {
		return "", fmt.Errorf("%w: no text blocks in Claude response", common.ErrModelMalformed)
	}
	return text, nil
}

// Close releases the client reference
func (m *ClaudeModel) Close() error {
	m.send = nil
	return nil
}
