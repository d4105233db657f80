// Package chat routes questions to deterministic answers over the member and
// document stores, and falls back to the generative model for everything else.
package chat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/interfaces"
	"github.com/ternarybob/kintari/internal/metrics"
	"github.com/ternarybob/kintari/internal/models"
	"github.com/ternarybob/kintari/internal/services/stats"
)

const (
	statusSuccess = "success"
	notAvailable  = "Tidak tersedia"
	documentLimit = 20
)

// Composer answers questions. Deterministic intents never reach the model.
type Composer struct {
	engine    *stats.Engine
	documents interfaces.DocumentStorage
	model     interfaces.GenerativeModel // nil when no provider is configured
	renderer  interfaces.ReportRenderer
	router    *Router
	limits    ContextLimits
	timeout   time.Duration
	md        goldmark.Markdown
	logger    arbor.ILogger
}

// NewComposer creates an answer composer
func NewComposer(
	engine *stats.Engine,
	documents interfaces.DocumentStorage,
	model interfaces.GenerativeModel,
	renderer interfaces.ReportRenderer,
	config *common.ChatConfig,
	logger arbor.ILogger,
) *Composer {
	timeout := 30 * time.Second
	if config != nil {
		timeout = common.ParseDuration(config.ModelTimeout, timeout)
	}
	return &Composer{
		engine:    engine,
		documents: documents,
		model:     model,
		renderer:  renderer,
		router:    NewRouter(),
		limits:    NewContextLimits(config),
		timeout:   timeout,
		md:        goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger:    logger,
	}
}

// Answer routes the question and composes a response.
// Model failures produce a partial answer, never an error.
func (c *Composer) Answer(ctx context.Context, question string) (*models.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: query is required", common.ErrInvalidInput)
	}

	// All store reads complete before any model call
	snapshot, err := c.engine.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read members: %w", err)
	}

	members := snapshot.Members()
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}

	classification := c.router.Classify(question, names)
	metrics.IntentsTotal.WithLabelValues(string(classification.Intent)).Inc()
	c.logger.Info().
		Str("intent", string(classification.Intent)).
		Str("rule", classification.Rule).
		Msg("Question classified")

	// Only document questions and the model context need full records
	var docs []*models.DocumentRecord
	docCount := 0
	if needsDocuments(classification.Intent) {
		if docs, err = c.documents.AllDocuments(ctx); err != nil {
			return nil, fmt.Errorf("failed to read documents: %w", err)
		}
		docCount = len(docs)
	} else if docCount, err = c.documents.CountDocuments(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	answer := &models.Answer{
		Status:         statusSuccess,
		Query:          question,
		Intent:         classification.Intent,
		Slots:          classification.Slots,
		MembersCount:   len(members),
		DocumentsCount: docCount,
	}

	if classification.Intent.IsDeterministic() {
		answer.Response, answer.Data = c.direct(classification, snapshot, docs)
		answer.Source = models.SourceDirectQuery
	} else {
		c.generic(ctx, answer, snapshot, docs)
	}

	answer.ResponseHTML = c.render(answer.Response)
	return answer, nil
}

func needsDocuments(intent models.QueryIntent) bool {
	return intent == models.IntentDocumentFact || intent == models.IntentGeneric
}

// ContextPreview returns the context bundle a generic question would send
func (c *Composer) ContextPreview(ctx context.Context) (*models.ContextBundle, error) {
	snapshot, err := c.engine.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read members: %w", err)
	}
	docs, err := c.documents.AllDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}
	return BuildContext(snapshot, docs, c.limits), nil
}

// ExportPDF composes the answer and renders it as a PDF report
func (c *Composer) ExportPDF(ctx context.Context, question string) ([]byte, error) {
	answer, err := c.Answer(ctx, question)
	if err != nil {
		return nil, err
	}

	var md strings.Builder
	fmt.Fprintf(&md, "## Pertanyaan\n\n%s\n\n", answer.Query)
	fmt.Fprintf(&md, "## Jawaban\n\n%s\n\n", answer.Response)
	fmt.Fprintf(&md, "---\n\nSumber: %s\n\nDibuat: %s\n", answer.Source, time.Now().Format("2006-01-02 15:04"))

	pdf, err := c.renderer.ConvertMarkdownToPDF(md.String(), "Laporan Kintari")
	if err != nil {
		return nil, fmt.Errorf("failed to render answer: %w", err)
	}
	return pdf, nil
}

func (c *Composer) generic(ctx context.Context, answer *models.Answer, snapshot *stats.Snapshot, docs []*models.DocumentRecord) {
	bundle := BuildContext(snapshot, docs, c.limits)
	answer.ContextSize = bundle.Size

	response, err := c.callModel(ctx, bundle.Text, answer.Query)
	if err != nil {
		c.logger.Warn().
			Err(fmt.Errorf("%w: %w", common.ErrExternalModelUnavailable, err)).
			Int("context_size", bundle.Size).
			Msg("Generative model failed, returning partial answer")
		answer.Response = degradedAnswer(snapshot, len(docs))
		answer.Source = models.SourceDirectQuery
		answer.Partial = true
		return
	}

	answer.Response = response
	answer.Source = models.SourceKnowledgeBase
}

func (c *Composer) callModel(ctx context.Context, contextText, question string) (string, error) {
	if c.model == nil {
		return "", errors.New("no generative model configured")
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	response, err := c.model.Answer(callCtx, contextText, question)
	if err == nil && strings.TrimSpace(response) == "" {
		err = fmt.Errorf("%w: empty response", common.ErrModelMalformed)
	}
	if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, common.ErrModelTimeout) {
		err = fmt.Errorf("%w: %w", common.ErrModelTimeout, err)
	}
	elapsed := time.Since(start)

	metrics.ObserveModelCall(c.model.Name(), err, elapsed)
	c.logger.Debug().
		Str("provider", c.model.Name()).
		Int64("duration_ms", elapsed.Milliseconds()).
		Bool("ok", err == nil).
		Msg("Generative model call finished")
	return response, err
}

func (c *Composer) render(markdown string) string {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(markdown), &buf); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to render answer markdown")
		return ""
	}
	return buf.String()
}

// degradedAnswer summarises the statistics when the model cannot answer
func degradedAnswer(snapshot *stats.Snapshot, documents int) string {
	memberStats := snapshot.Stats()
	ratio := snapshot.GenderRatio()

	var b strings.Builder
	b.WriteString("_Analisis AI sedang tidak tersedia. Berikut ringkasan data yang tersedia._\n\n")
	b.WriteString("**Ringkasan Data HIPMI:**\n")
	fmt.Fprintf(&b, "- Total Pengurus: %d orang\n", memberStats.Total)
	fmt.Fprintf(&b, "- Pria: %d, Wanita: %d\n", ratio.Male, ratio.Female)
	fmt.Fprintf(&b, "- Total Karyawan: %s orang\n", formatThousands(memberStats.EmployeeTotal))
	if industry, count := snapshot.TopIndustry(); count > 0 {
		fmt.Fprintf(&b, "- Bidang Usaha Terbanyak: %s (%d pengurus)\n", industry, count)
	}
	fmt.Fprintf(&b, "- Total Dokumen: %d\n", documents)
	return b.String()
}
