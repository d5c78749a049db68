// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the menu graph read-only to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/menushell/internal/apperr"
	"github.com/starford/menushell/internal/menuservice"
)

// LayoutURI is the resource URI of the layout contract.
const LayoutURI = "menushell://layout"

// Server wraps the MCP server with menushell tools.
type Server struct {
	mcp *server.MCPServer
	svc *menuservice.Service
}

// New creates a new MCP server with all browse tools registered.
func New(svc *menuservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"menushell",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_menus",
		mcp.WithDescription("List every menu of the tree, one per line as key, kind and title."),
		mcp.WithString("kind", mcp.Description("Optional kind filter: projects, exit, folder or unit")),
	), s.listMenus)

	s.mcp.AddTool(mcp.NewTool("read_menu",
		mcp.WithDescription("Read one menu: its metadata and numbered options as JSON."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Menu key (e.g. tools/deploy/prod.sh)")),
	), s.readMenu)

	s.mcp.AddTool(mcp.NewTool("search_menus",
		mcp.WithDescription("Search menus by key, metadata and option labels."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchMenus)

	s.mcp.AddTool(mcp.NewTool("get_layout_contract",
		mcp.WithDescription("Returns the directory layout contract. "+
			"Call this before adding action units or metadata files to the tree."),
	), s.getLayoutContract)

	// Resource: layout contract.
	s.mcp.AddResource(
		mcp.NewResource(LayoutURI, "Layout Contract",
			mcp.WithResourceDescription("How directories, action files and metadata files become menus."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readLayoutResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listMenus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := req.GetString("kind", "")
	items, err := s.svc.ListMenus(ctx, kind)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no menus found"), nil
	}
	lines := make([]string, len(items))
	for i, m := range items {
		lines[i] = strings.TrimRight(fmt.Sprintf("%s\t%s\t%s", m.Path, m.Kind, m.Title), "\t")
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readMenu(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m, err := s.svc.GetMenu(ctx, path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(m, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchMenus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getLayoutContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(LayoutContract), nil
}

func (s *Server) readLayoutResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      LayoutURI,
			MIMEType: "text/markdown",
			Text:     LayoutContract,
		},
	}, nil
}
