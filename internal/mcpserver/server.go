// Package mcpserver wires the tool dispatch surface into an MCP server,
// exposed over stdio or HTTP, grounded on the teacher's own use of
// mark3labs/mcp-go as a client and on the HTTP server idiom from
// internal/web (mux + graceful shutdown + JSON health endpoint).
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpgoserver "github.com/mark3labs/mcp-go/server"

	"github.com/terminator-mcp/terminator-mcp-go/internal/mcptools"
	"github.com/terminator-mcp/terminator-mcp-go/internal/requestmgr"
	"github.com/terminator-mcp/terminator-mcp-go/pkg/config"
)

// Server owns the MCP core (tool dispatch surface + mark3labs/mcp-go
// server), the HTTP mux for the optional HTTP transport, and the
// concurrency/auth gate in front of it.
type Server struct {
	cfg      *config.Config
	surface  *mcptools.Surface
	core     *mcpgoserver.MCPServer
	requests *requestmgr.Manager
	mux      *http.ServeMux
	sse      *mcpgoserver.SSEServer
	started  time.Time
}

// New builds the MCP server and registers every tool in the dispatch
// surface against it.
func New(cfg *config.Config, surface *mcptools.Surface) *Server {
	core := mcpgoserver.NewMCPServer(
		"terminator-mcp",
		"0.1.0",
		mcpgoserver.WithToolCapabilities(true),
		mcpgoserver.WithLogging(),
		mcpgoserver.WithRecovery(),
	)

	s := &Server{
		cfg:      cfg,
		surface:  surface,
		core:     core,
		requests: requestmgr.NewManager(cfg.MaxConcurrent),
		started:  time.Now(),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	for name, schema := range toolSchemas {
		def := mcp.NewToolWithRawSchema(name, toolDescriptions[name], schema)
		s.core.AddTool(def, s.wrapTool(name))
	}
}

func (s *Server) wrapTool(name string) mcpgoserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			args = map[string]interface{}{}
		}
		raw, err := json.Marshal(args)
		if err != nil {
			return errorResult(name, err), nil
		}

		cctx, release, _, admitted := s.requests.Register(ctx, s.cfg.DefaultTimeout)
		defer release()
		if !admitted {
			return errorResult(name, &requestmgr.BusyError{Status: s.requests.Status()}), nil
		}

		result, err := s.surface.Dispatch(cctx, name, raw)
		if err != nil {
			return errorResult(name, err), nil
		}

		payload, err := json.Marshal(result)
		if err != nil {
			return errorResult(name, fmt.Errorf("tool %s returned non-serializable payload: %w", name, err)), nil
		}
		return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(string(payload))}}, nil
	}
}

func errorResult(name string, err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(fmt.Sprintf("tool %s failed: %v", name, err))},
		IsError: true,
	}
}

// ServeStdio runs the server over stdio (the default transport), which
// is what a CLI-launched MCP client expects.
func (s *Server) ServeStdio(ctx context.Context) error {
	stdio := mcpgoserver.NewStdioServer(s.core)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// ServeHTTP runs the §6.3 HTTP surface with graceful shutdown on
// SIGINT/SIGTERM, cancelling every in-flight request before the listener
// stops accepting new ones.
func (s *Server) ServeHTTP(ctx context.Context) error {
	s.sse = mcpgoserver.NewSSEServer(s.core, mcpgoserver.WithBaseURL("http://"+s.cfg.HTTPAddr))
	s.mux = http.NewServeMux()
	s.registerRoutes()

	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			log.Printf("[MCPServer] received signal %v, shutting down", sig)
		case <-ctx.Done():
		}
		s.requests.CancelAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[MCPServer] shutdown error: %v", err)
		}
	}()

	log.Printf("[MCPServer] listening on http://%s", s.cfg.HTTPAddr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
