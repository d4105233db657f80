package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/handlers"
	"github.com/ternarybob/kintari/internal/interfaces"
	"github.com/ternarybob/kintari/internal/metrics"
	"github.com/ternarybob/kintari/internal/services/analytics"
	"github.com/ternarybob/kintari/internal/services/chat"
	"github.com/ternarybob/kintari/internal/services/classifier"
	"github.com/ternarybob/kintari/internal/services/documents"
	"github.com/ternarybob/kintari/internal/services/janitor"
	"github.com/ternarybob/kintari/internal/services/llm"
	"github.com/ternarybob/kintari/internal/services/members"
	"github.com/ternarybob/kintari/internal/services/pdf"
	"github.com/ternarybob/kintari/internal/services/stats"
	"github.com/ternarybob/kintari/internal/storage/badger"
	"github.com/ternarybob/kintari/internal/storage/blob"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager
	BlobStore      interfaces.BlobStore

	// Pipeline
	Extractor  *pdf.Extractor
	Classifier *classifier.Classifier

	// Services
	DocumentService  *documents.Service
	MemberService    *members.Service
	StatsEngine      *stats.Engine
	Model            interfaces.GenerativeModel // nil when no provider is configured
	ChatService      interfaces.ChatService
	AnalyticsService interfaces.AnalyticsService
	Janitor          *janitor.Janitor

	// HTTP handlers
	DocumentHandler   *handlers.DocumentHandler
	CollectionHandler *handlers.CollectionHandler
	MemberHandler     *handlers.MemberHandler
	ChatHandler       *handlers.ChatHandler
	AnalyticsHandler  *handlers.AnalyticsHandler
	StatusHandler     *handlers.StatusHandler
}

// New initializes the application with all dependencies
func New(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initServices(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	if cfg.Metrics.Enabled {
		metrics.Register()
	}

	logger.Info().
		Bool("model_enabled", app.Model != nil).
		Bool("janitor_enabled", cfg.Janitor.Enabled).
		Bool("metrics_enabled", cfg.Metrics.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

// initStorage opens the record store and the blob store
func (a *App) initStorage() error {
	manager, err := badger.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}
	a.StorageManager = manager

	blobs, err := blob.NewFileStore(a.Config.Storage.Blob.Dir, a.Logger)
	if err != nil {
		manager.Close()
		return fmt.Errorf("failed to create blob store: %w", err)
	}
	a.BlobStore = blobs

	a.Logger.Debug().
		Str("badger_path", a.Config.Storage.Badger.Path).
		Bool("in_memory", a.Config.Storage.Badger.InMemory).
		Str("blob_dir", a.Config.Storage.Blob.Dir).
		Msg("Storage layer initialized")

	return nil
}

// initServices builds the pipeline and query services in dependency order
func (a *App) initServices(ctx context.Context) error {
	a.Extractor = pdf.NewExtractor(a.Logger)
	a.Classifier = classifier.NewClassifier(a.Config.Classifier.RulesFile, a.Logger)

	a.DocumentService = documents.NewService(
		a.StorageManager.DocumentStorage(),
		a.StorageManager.CollectionStorage(),
		a.BlobStore,
		a.Extractor,
		a.Classifier,
		&a.Config.Extraction,
		a.Logger,
	)

	a.MemberService = members.NewService(a.StorageManager.MemberStorage(), a.Logger)
	a.StatsEngine = stats.NewEngine(a.StorageManager.MemberStorage(), a.Logger)

	model, err := llm.NewGenerativeModel(ctx, a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create generative model: %w", err)
	}
	a.Model = model
	if model == nil {
		a.Logger.Warn().
			Str("provider", a.Config.Chat.Provider).
			Msg("No generative model configured, generic questions will receive partial answers")
	}

	a.ChatService = chat.NewComposer(
		a.StatsEngine,
		a.StorageManager.DocumentStorage(),
		a.Model,
		pdf.NewReportRenderer(a.Logger),
		&a.Config.Chat,
		a.Logger,
	)

	a.AnalyticsService = analytics.NewService(
		a.StatsEngine,
		a.StorageManager.MemberStorage(),
		a.StorageManager.DocumentStorage(),
		a.Model,
		&a.Config.Chat,
		a.Logger,
	)

	if a.Config.Janitor.Enabled {
		a.Janitor = janitor.New(a.BlobStore, a.StorageManager.DocumentStorage(), a.Logger)
		if err := a.Janitor.Start(a.Config.Janitor.Schedule); err != nil {
			return fmt.Errorf("failed to start blob janitor: %w", err)
		}
	}

	return nil
}

func (a *App) initHandlers() {
	provider := ""
	if a.Model != nil {
		provider = a.Model.Name()
	}

	maxUpload := a.Config.Extraction.MaxUploadBytes

	a.DocumentHandler = handlers.NewDocumentHandler(a.DocumentService, maxUpload, a.Logger)
	a.CollectionHandler = handlers.NewCollectionHandler(a.DocumentService, a.Logger)
	a.MemberHandler = handlers.NewMemberHandler(a.MemberService, a.StatsEngine, maxUpload, a.Logger)
	a.ChatHandler = handlers.NewChatHandler(a.ChatService, a.Logger)
	a.AnalyticsHandler = handlers.NewAnalyticsHandler(a.AnalyticsService, a.Logger)
	a.StatusHandler = handlers.NewStatusHandler(provider, a.Logger)
}

// Close stops background work and closes all application resources
func (a *App) Close() error {
	if a.Janitor != nil {
		a.Janitor.Stop()
		a.Logger.Info().Msg("Blob janitor stopped")
	}

	if a.Model != nil {
		if err := a.Model.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close generative model")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
