// Package mcp exposes the document services as Model Context Protocol tools
// over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tabqa/internal/service"
)

// Config holds MCP server identity.
type Config struct {
	Name    string
	Version string
}

// Server wraps the MCP server around the document and query services.
type Server struct {
	mcpServer *server.MCPServer
	docs      service.DocumentService
	queries   service.QueryService
	log       logr.Logger
}

// NewServer registers the document tools.
func NewServer(cfg Config, docs service.DocumentService, queries service.QueryService, log logr.Logger) *Server {
	if cfg.Name == "" {
		cfg.Name = "tabqa"
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}

	s := &Server{
		mcpServer: server.NewMCPServer(cfg.Name, cfg.Version, server.WithToolCapabilities(true)),
		docs:      docs,
		queries:   queries,
		log:       log.WithValues("component", "mcp"),
	}

	s.mcpServer.AddTool(mcp.NewTool("ingest_file",
		mcp.WithDescription("Ingest a CSV, TSV or XLSX file readable by the server. Returns the new document id and its metadata."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the file on the server"),
		),
	), s.ingestHandler)

	s.mcpServer.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List stored documents, newest first."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of documents to return (default: 10)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of documents to skip (default: 0)"),
		),
	), s.listHandler)

	s.mcpServer.AddTool(mcp.NewTool("query_document",
		mcp.WithDescription("Answer a question by extracting a span from one stored document."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Document ID"),
		),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Natural-language question"),
		),
	), s.queryHandler)

	s.mcpServer.AddTool(mcp.NewTool("delete_document",
		mcp.WithDescription("Delete a stored document by ID."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Document ID"),
		),
	), s.deleteHandler)

	return s
}

type ingestResult struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Metadata any    `json:"metadata"`
}

func (s *Server) ingestHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path parameter is required"), nil
	}

	doc, err := s.docs.Ingest(ctx, service.IngestRequest{ServerPath: path})
	if err != nil {
		return s.toolError("ingest_file", err), nil
	}

	return jsonResult(ingestResult{ID: doc.ID, Name: doc.Name, Metadata: doc.Metadata})
}

func (s *Server) listHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 10)
	offset := req.GetInt("offset", 0)
	if limit < 1 || offset < 0 {
		return mcp.NewToolResultError("BadRequest: limit must be positive and offset non-negative"), nil
	}

	res, err := s.docs.List(ctx, limit, offset)
	if err != nil {
		return s.toolError("list_documents", err), nil
	}
	return jsonResult(res)
}

func (s *Server) queryHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question parameter is required"), nil
	}

	ans, err := s.queries.Answer(ctx, id, question)
	if err != nil {
		return s.toolError("query_document", err), nil
	}
	return jsonResult(ans)
}

func (s *Server) deleteHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	deleted, err := s.docs.Delete(ctx, id)
	if err != nil {
		return s.toolError("delete_document", err), nil
	}
	if !deleted {
		return mcp.NewToolResultError(fmt.Sprintf("NotFound: document not found: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"id":%q,"deleted":true}`, id)), nil
}

func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	kind := Kind(err)
	if kind == "StorageFailure" || kind == "InferenceFailure" || kind == "Internal" {
		s.log.Error(err, "mcp_tool_failed", "tool", tool, "kind", kind)
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", kind, err))
}

// Kind names the failure kind of a service error.
func Kind(err error) string {
	switch {
	case errors.Is(err, service.ErrBadRequest):
		return "BadRequest"
	case errors.Is(err, service.ErrNotFound):
		return "NotFound"
	case errors.Is(err, service.ErrInvalidFormat):
		return "InvalidFormat"
	case errors.Is(err, service.ErrStorageFailure):
		return "StorageFailure"
	case errors.Is(err, service.ErrInferenceFailure):
		return "InferenceFailure"
	default:
		return "Internal"
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// Serve runs the stdio transport until ctx is done or stdin closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcpServer).Listen(ctx, in, out)
}
