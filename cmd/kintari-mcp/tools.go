package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createAskTool returns the ask tool definition
func createAskTool() mcp.Tool {
	return mcp.NewTool("ask",
		mcp.WithDescription("Ask a question about HIPMI members and organisation documents. Statistics and lookups are answered from the database; open questions use the configured language model."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Question in Indonesian, e.g. \"Berapa pengurus di bidang Property?\""),
		),
	)
}

// createMemberStatisticsTool returns the member_statistics tool definition
func createMemberStatisticsTool() mcp.Tool {
	return mcp.NewTool("member_statistics",
		mcp.WithDescription("Member counts grouped by role, industry, card status and gender, plus the reported employee total"),
	)
}

// createSearchDocumentsTool returns the search_documents tool definition
func createSearchDocumentsTool() mcp.Tool {
	return mcp.NewTool("search_documents",
		mcp.WithDescription("Substring search over document filenames, extracted text and summaries (case and accent insensitive)"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to search for"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results to return (default: 10, max: 100)"),
		),
	)
}

// createGetDocumentTool returns the get_document tool definition
func createGetDocumentTool() mcp.Tool {
	return mcp.NewTool("get_document",
		mcp.WithDescription("Retrieve a single document by its unique ID"),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("Document ID (format: doc_{uuid})"),
		),
	)
}
