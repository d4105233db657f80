package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/kintari/internal/common"
)

func geminiResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestGeminiModel_Answer(t *testing.T) {
	var gotModel, gotPrompt string
	var gotConfig *genai.GenerateContentConfig
	generate := func(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotModel, gotConfig = model, config
		gotPrompt = contents[0].Parts[0].Text
		return geminiResponse(" Jawaban "), nil
	}
	config := &common.GeminiConfig{Model: "gemini-test", Temperature: 0.2, TopP: 0.9, MaxOutputTokens: 512}
	model := newGeminiModel(generate, config, arbor.NewLogger())

	answer, err := model.Answer(context.Background(), "=== DATA ===", "Apa visi HIPMI?")
	require.NoError(t, err)

	assert.Equal(t, "Jawaban", answer)
	assert.Equal(t, "gemini-test", gotModel)
	assert.Contains(t, gotPrompt, "=== DATA ===")
	assert.Contains(t, gotPrompt, "Pertanyaan: Apa visi HIPMI?")
	assert.Equal(t, int32(512), gotConfig.MaxOutputTokens)
	assert.Equal(t, float32(0.9), *gotConfig.TopP)
	assert.Equal(t, ProviderGemini, model.Name())
}

func TestGeminiModel_RetriesQuota(t *testing.T) {
	calls := 0
	generate := func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("Error 429, Status: RESOURCE_EXHAUSTED")
		}
		return geminiResponse("ok"), nil
	}
	model := newGeminiModel(generate, &common.GeminiConfig{}, arbor.NewLogger())
	model.retry = fastRetry()

	answer, err := model.Answer(context.Background(), "ctx", "q")
	require.NoError(t, err)
	assert.Equal(t, "ok", answer)
	assert.Equal(t, 2, calls)
}

func TestGeminiModel_Errors(t *testing.T) {
	t.Run("quota exhausted", func(t *testing.T) {
		generate := func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("429 quota")
		}
		model := newGeminiModel(generate, &common.GeminiConfig{}, arbor.NewLogger())
		model.retry = fastRetry()

		_, err := model.Answer(context.Background(), "ctx", "q")
		assert.ErrorIs(t, err, common.ErrModelQuotaExceeded)
	})

	t.Run("no candidates", func(t *testing.T) {
		generate := func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{}, nil
		}
		model := newGeminiModel(generate, &common.GeminiConfig{}, arbor.NewLogger())

		_, err := model.Answer(context.Background(), "ctx", "q")
		assert.ErrorIs(t, err, common.ErrModelMalformed)
	})

	t.Run("timeout", func(t *testing.T) {
		generate := func(ctx context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		model := newGeminiModel(generate, &common.GeminiConfig{Timeout: "20ms"}, arbor.NewLogger())

		_, err := model.Answer(context.Background(), "ctx", "q")
		assert.ErrorIs(t, err, common.ErrModelTimeout)
	})

	t.Run("local rate limit", func(t *testing.T) {
		generate := func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return geminiResponse("ok"), nil
		}
		model := newGeminiModel(generate, &common.GeminiConfig{RateLimit: "1h", Timeout: "50ms"}, arbor.NewLogger())

		_, err := model.Answer(context.Background(), "ctx", "q")
		require.NoError(t, err)
		_, err = model.Answer(context.Background(), "ctx", "q")
		assert.ErrorIs(t, err, common.ErrModelQuotaExceeded)
	})
}

func TestClaudeModel_Answer(t *testing.T) {
	var gotParams anthropic.MessageNewParams
	send := func(_ context.Context, params anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
		gotParams = params
		return &anthropic.Message{Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: "Halo "},
			{Type: "text", Text: "dunia"},
		}}, nil
	}
	model := newClaudeModel(send, &common.ClaudeConfig{Model: "claude-test"}, arbor.NewLogger())

	answer, err := model.Answer(context.Background(), "ctx", "q")
	require.NoError(t, err)

	assert.Equal(t, "Halo dunia", answer)
	assert.Equal(t, anthropic.Model("claude-test"), gotParams.Model)
	assert.Equal(t, int64(2048), gotParams.MaxTokens)
	require.Len(t, gotParams.System, 1)
	assert.Equal(t, SystemPrompt, gotParams.System[0].Text)
	assert.Equal(t, ProviderClaude, model.Name())
}

func TestClaudeModel_Errors(t *testing.T) {
	t.Run("empty content", func(t *testing.T) {
		send := func(context.Context, anthropic.MessageNewParams, ...option.RequestOption) (*anthropic.Message, error) {
			return &anthropic.Message{}, nil
		}
		model := newClaudeModel(send, &common.ClaudeConfig{}, arbor.NewLogger())

		_, err := model.Answer(context.Background(), "ctx", "q")
		assert.ErrorIs(t, err, common.ErrModelMalformed)
	})

	t.Run("unavailable", func(t *testing.T) {
		send := func(context.Context, anthropic.MessageNewParams, ...option.RequestOption) (*anthropic.Message, error) {
			return nil, errors.New("connection reset")
		}
		model := newClaudeModel(send, &common.ClaudeConfig{}, arbor.NewLogger())

		_, err := model.Answer(context.Background(), "ctx", "q")
		assert.ErrorIs(t, err, common.ErrExternalModelUnavailable)
	})

	t.Run("timeout", func(t *testing.T) {
		send := func(ctx context.Context, _ anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return nil, errors.New("not cancelled")
			}
		}
		model := newClaudeModel(send, &common.ClaudeConfig{Timeout: "20ms"}, arbor.NewLogger())

		_, err := model.Answer(context.Background(), "ctx", "q")
		assert.ErrorIs(t, err, common.ErrModelTimeout)
	})
}

func TestNewGenerativeModel(t *testing.T) {
	logger := arbor.NewLogger()

	cfg := common.NewDefaultConfig()
	cfg.Gemini.APIKey = ""
	model, err := NewGenerativeModel(context.Background(), cfg, logger)
	require.NoError(t, err)
	assert.Nil(t, model)

	cfg.Chat.Provider = "claude"
	cfg.Claude.APIKey = "test-key"
	model, err = NewGenerativeModel(context.Background(), cfg, logger)
	require.NoError(t, err)
	assert.Equal(t, ProviderClaude, model.Name())

	cfg.Chat.Provider = "openai"
	_, err = NewGenerativeModel(context.Background(), cfg, logger)
	assert.Error(t, err)
}
