package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/terminator-mcp/terminator-mcp-go/internal/bridge"
	"github.com/terminator-mcp/terminator-mcp-go/internal/mcpserver"
	"github.com/terminator-mcp/terminator-mcp-go/internal/mcptools"
	"github.com/terminator-mcp/terminator-mcp-go/internal/uitree"
	"github.com/terminator-mcp/terminator-mcp-go/pkg/config"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║            terminator-mcp             ║")
	fmt.Println("║   selector + sequence automation MCP  ║")
	fmt.Println("╚══════════════════════════════════════╝")

	if info, err := os.Stat(cfg.WorkspaceDir); err != nil || !info.IsDir() {
		log.Fatalf("workspace directory %q does not exist or is not a directory", cfg.WorkspaceDir)
	}

	root := desktopRoot()
	sup := bridge.NewSupervisor(cfg.BridgePort)
	surface := mcptools.NewSurface(root, sup, cfg.WorkspaceDir)
	srv := mcpserver.New(cfg, surface)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch cfg.Transport {
	case "http":
		err = srv.ServeHTTP(ctx)
	default:
		err = srv.ServeStdio(ctx)
	}
	if err != nil {
		log.Fatalf("terminator-mcp exited with error: %v", err)
	}
}

// desktopRoot returns the accessibility tree root this process walks.
// The real platform provider (Windows UIA / macOS AX / Linux AT-SPI)
// lives outside this module's scope; until one is wired in, a single
// empty desktop-shaped node keeps the selector engine and every
// element-targeting tool callable end to end (resolving selectors
// against it simply returns no matches instead of panicking).
func desktopRoot() uitree.Node {
	return uitree.NewFakeNode("Desktop", "")
}
