package mcpserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/terminator-mcp/terminator-mcp-go/internal/uitree"
)

// registerRoutes mounts the §6.3 HTTP surface: index, health, ready,
// status, and the MCP POST/SSE endpoints behind the auth and
// concurrency gates.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ready", s.handleReady)
	s.mux.HandleFunc("/status", s.handleStatus)
	s.mux.Handle("/mcp", s.authMiddleware(s.gateMiddleware(s.sse.MessageHandler())))
	s.mux.Handle("/mcp/", s.authMiddleware(s.sse.SSEHandler()))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "terminator-mcp",
		"routes":  []string{"/", "/health", "/ready", "/status", "/mcp", "/mcp/*"},
		"uptime":  time.Since(s.started).String(),
	})
}

// handleHealth is liveness only: no accessibility-API calls.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

// handleReady is deep readiness: it enumerates a UI element (proving the
// accessibility root is reachable) and reports whether the supervisor
// could obtain a live bridge. It does not check whether a browser client
// is connected, and the bridge check does not affect the ready flag.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ready := true
	checks := map[string]interface{}{}

	if s.surface.Root == nil {
		ready = false
		checks["ui_tree"] = "unavailable"
	} else {
		checks["ui_tree"] = describeRoot(s.surface.Root)
	}

	if s.surface.Supervisor == nil {
		checks["bridge"] = "not configured"
	} else if b, err := s.surface.Supervisor.Global(); err != nil {
		checks["bridge"] = "unavailable: " + err.Error()
	} else {
		_ = b
		checks["bridge"] = "bound"
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]interface{}{"ready": ready, "checks": checks})
}

func describeRoot(root uitree.Node) string {
	return root.Role() + ":" + root.Name()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.requests.Status())
}

// authMiddleware enforces a static Bearer token when MCP_AUTH_TOKEN is
// configured; an empty token disables the check entirely.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AuthToken == "" {
			next.ServeHTTP(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token != s.cfg.AuthToken {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// gateMiddleware rejects with 503 when the concurrency gate is already
// at capacity; the actual per-request registration happens inside each
// tool's wrapTool handler so cancellation reaches the right request.
func (s *Server) gateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.requests.Busy() {
			writeJSON(w, http.StatusServiceUnavailable, s.requests.Status())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
