// Package requestmgr tracks in-flight MCP requests: per-request
// cancellation, a process-wide concurrency gate, and last-activity
// bookkeeping for the /status route.
package requestmgr

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Manager gates concurrent requests and lets callers cancel everything
// in flight (e.g. on graceful shutdown).
type Manager struct {
	maxConcurrent int32
	active        int32

	mu           sync.Mutex
	lastActivity time.Time
	cancels      map[string]context.CancelFunc
}

// NewManager creates a Manager allowing at most maxConcurrent requests at
// a time. maxConcurrent <= 0 means "effectively unbounded" (still gated
// at a high ceiling to avoid a negative-capacity bug).
func NewManager(maxConcurrent int) *Manager {
	if maxConcurrent <= 0 {
		maxConcurrent = 1 << 20
	}
	return &Manager{
		maxConcurrent: int32(maxConcurrent),
		cancels:       map[string]context.CancelFunc{},
		lastActivity:  time.Now(),
	}
}

// Busy reports whether a new request would currently be rejected.
func (m *Manager) Busy() bool {
	return atomic.LoadInt32(&m.active) >= m.maxConcurrent
}

// Status is the JSON body of GET /status.
type Status struct {
	Busy            bool   `json:"busy"`
	ActiveRequests  int    `json:"activeRequests"`
	MaxConcurrent   int    `json:"maxConcurrent"`
	LastActivityRFC string `json:"lastActivity"`
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	last := m.lastActivity
	m.mu.Unlock()
	active := atomic.LoadInt32(&m.active)
	return Status{
		Busy:            m.Busy(),
		ActiveRequests:  int(active),
		MaxConcurrent:   int(m.maxConcurrent),
		LastActivityRFC: last.UTC().Format(time.RFC3339),
	}
}

// Register admits one request, returning a child context (fired on
// timeout/cancel/shutdown), a release func the caller must defer, and
// false if the concurrency gate rejected admission.
func (m *Manager) Register(parent context.Context, timeout time.Duration) (ctx context.Context, release func(), id string, admitted bool) {
	if !m.tryAcquire() {
		return parent, func() {}, "", false
	}

	id = uuid.NewString()
	var cctx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		cctx, cancel = context.WithTimeout(parent, timeout)
	} else {
		cctx, cancel = context.WithCancel(parent)
	}

	m.mu.Lock()
	m.cancels[id] = cancel
	m.lastActivity = time.Now()
	m.mu.Unlock()

	release = func() {
		cancel()
		m.mu.Lock()
		delete(m.cancels, id)
		m.lastActivity = time.Now()
		m.mu.Unlock()
		atomic.AddInt32(&m.active, -1)
	}
	return cctx, release, id, true
}

func (m *Manager) tryAcquire() bool {
	for {
		cur := atomic.LoadInt32(&m.active)
		if cur >= m.maxConcurrent {
			return false
		}
		if atomic.CompareAndSwapInt32(&m.active, cur, cur+1) {
			return true
		}
	}
}

// Cancel fires the cancellation token for a single request id.
func (m *Manager) Cancel(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	cancel, ok := m.cancels[id]
	if !ok {
		return false
	}
	cancel()
	return true
}

// CancelAll fires every outstanding token, used on graceful shutdown.
func (m *Manager) CancelAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	log.Printf("[RequestManager] cancelling %d in-flight requests", len(m.cancels))
	for _, cancel := range m.cancels {
		cancel()
	}
}

// BusyError describes a request the concurrency gate rejected; the MCP
// server returns it as a tool error result. The HTTP 503 for a busy
// /mcp endpoint is written separately, from Status, by the gate
// middleware.
type BusyError struct {
	Status Status
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("server busy: %d/%d requests active", e.Status.ActiveRequests, e.Status.MaxConcurrent)
}
