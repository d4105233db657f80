package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/kintari/internal/app"
	"github.com/ternarybob/kintari/internal/common"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
	}

	configPath := os.Getenv("KINTARI_CONFIG")
	if configPath == "" {
		if _, err := os.Stat("kintari.toml"); err == nil {
			configPath = "kintari.toml"
		}
	}

	config, err := common.LoadFromFiles(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// The MCP server shares the record store with no background work of its own
	config.Janitor.Enabled = false
	config.Metrics.Enabled = false

	// Minimal console logging to avoid cluttering MCP stdio
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	application, err := app.New(context.Background(), config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	mcpServer := server.NewMCPServer(
		"kintari",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createAskTool(), handleAsk(application.ChatService, logger))
	mcpServer.AddTool(createMemberStatisticsTool(), handleMemberStatistics(application.StatsEngine, logger))
	mcpServer.AddTool(createSearchDocumentsTool(), handleSearchDocuments(application.DocumentService, logger))
	mcpServer.AddTool(createGetDocumentTool(), handleGetDocument(application.DocumentService, logger))

	// Blocks on stdio
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error().Err(err).Msg("MCP server failed")
	}
}
