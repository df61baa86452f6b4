package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Pipeline  Processor
	Search    Searcher
	Responses ResponseReader
	Stats     *Stats
	Ready     func() bool
	TopK      int
}

// NewMCPServer creates an MCP server exposing the support pipeline as tools.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"deskd",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("deskd — customer support inquiry pipeline with FAQ search and validated response drafting."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("search_faq",
			mcp.WithDescription("Search the FAQ knowledge base by keyword relevance and return the best-matching entries."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
			mcp.WithString("category", mcp.Description("Optional category filter (account, billing, technical, general)")),
			mcp.WithNumber("top_k", mcp.Description("Maximum number of results")),
		),
		mcpSearchFAQ(deps),
	)

	s.AddTool(
		mcp.NewTool("submit_inquiry",
			mcp.WithDescription("Run a customer inquiry through the full support pipeline and return the validated response."),
			mcp.WithString("question", mcp.Description("The customer's question"), mcp.Required()),
			mcp.WithString("customer_email", mcp.Description("Customer email address"), mcp.Required()),
		),
		mcpSubmitInquiry(deps),
	)

	s.AddTool(
		mcp.NewTool("recent_responses",
			mcp.WithDescription("Return the most recently sent support responses, oldest first."),
			mcp.WithNumber("count", mcp.Description("Number of responses to return (default 5)")),
		),
		mcpRecentResponses(deps),
	)

	return s
}

func mcpSearchFAQ(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		topK := req.GetInt("top_k", deps.TopK)
		if topK <= 0 {
			topK = deps.TopK
		}
		if topK > 50 {
			topK = 50
		}

		results := deps.Search.Search(query, req.GetString("category", ""), topK)
		if len(results) == 0 {
			return mcpText("[]"), nil
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpSubmitInquiry(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcpError("question is required"), nil
		}
		email, err := req.RequireString("customer_email")
		if err != nil {
			return mcpError("customer_email is required"), nil
		}

		question, email, err = validateInquiry(question, email)
		if err != nil {
			return mcpError(err.Error()), nil
		}

		if !deps.Ready() {
			return mcpError("generation backend is not configured"), nil
		}

		inq := deps.Pipeline.Process(ctx, question, email)

		if deps.Stats != nil {
			deps.Stats.Record(string(inq.Category), len(inq.FinalResponse))
		}

		b, err := json.Marshal(map[string]any{
			"inquiry_id":        inq.ID,
			"category":          string(inq.Category),
			"response":          inq.FinalResponse,
			"validation_status": string(inq.ValidationStatus),
			"faq_matches":       inq.FAQCount(),
			"logged":            inq.Logged,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpRecentResponses(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		count := req.GetInt("count", 5)
		if count <= 0 {
			count = 5
		}
		if count > 50 {
			count = 50
		}

		responses := deps.Responses.Recent(count)
		if len(responses) == 0 {
			return mcpText("[]"), nil
		}

		b, err := json.Marshal(responses)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal responses: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
