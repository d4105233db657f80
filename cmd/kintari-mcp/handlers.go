package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/interfaces"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleAsk implements the ask tool
func handleAsk(chat interfaces.ChatService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil || question == "" {
			return textResult("Error: question parameter is required"), nil
		}

		answer, err := chat.Answer(ctx, question)
		if err != nil {
			logger.Error().Err(err).Msg("Answer failed")
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}

		return textResult(formatAnswer(answer)), nil
	}
}

// handleMemberStatistics implements the member_statistics tool
func handleMemberStatistics(engine interfaces.StatsEngine, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := engine.Compute(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Statistics failed")
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}

		return textResult(formatStats(stats)), nil
	}
}

// handleSearchDocuments implements the search_documents tool
func handleSearchDocuments(documents interfaces.DocumentService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return textResult("Error: query parameter is required"), nil
		}

		limit := request.GetInt("limit", 10)
		if limit <= 0 {
			limit = 10
		}
		if limit > 100 {
			limit = 100
		}

		docs, err := documents.Search(ctx, query, limit)
		if err != nil {
			logger.Error().Err(err).Msg("Search failed")
			return textResult(fmt.Sprintf("Search error: %v", err)), nil
		}

		return textResult(formatSearchResults(query, docs)), nil
	}
}

// handleGetDocument implements the get_document tool
func handleGetDocument(documents interfaces.DocumentService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docID, err := request.RequireString("document_id")
		if err != nil || docID == "" {
			return textResult("Error: document_id parameter is required"), nil
		}

		doc, err := documents.Get(ctx, docID)
		if err != nil {
			logger.Warn().Err(err).Str("doc_id", docID).Msg("Get document failed")
			return textResult(fmt.Sprintf("Document not found: %v", err)), nil
		}

		return textResult(formatDocument(doc)), nil
	}
}
