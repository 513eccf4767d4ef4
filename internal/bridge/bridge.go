package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	defaultPort       = 17373
	activeTabPollEvery = 500 * time.Millisecond
	activeTabBudget    = 10 * time.Second
	resetSettle        = 500 * time.Millisecond
)

// client is one connected peer: either the browser extension or a
// subordinate subprocess forwarding on behalf of its own callers.
type client struct {
	id          string
	kind        ClientKind
	send        chan []byte
	connectedAt time.Time
	conn        *websocket.Conn
	closed      chan struct{}
	closeOnce   sync.Once
}

func (c *client) markClosed() {
	c.closeOnce.Do(func() { close(c.closed) })
}

// Bridge owns the live client set and the pending eval-result map. At
// most one Bridge is bound to the port per machine; see Supervisor.
type Bridge struct {
	mu      sync.Mutex
	clients []*client

	pendingMu sync.Mutex
	pending   map[string]chan EvalResult

	done     chan struct{}
	doneOnce sync.Once
}

func newBridge() *Bridge {
	return &Bridge{
		pending: map[string]chan EvalResult{},
		done:    make(chan struct{}),
	}
}

// Done reports whether the bridge's serving task has terminated (used by
// the supervisor to decide whether to recreate it).
func (b *Bridge) Done() <-chan struct{} { return b.done }

func (b *Bridge) markDone() { b.doneOnce.Do(func() { close(b.done) }) }

func (b *Bridge) registerClient(kind ClientKind, conn *websocket.Conn) *client {
	c := &client{
		id:          uuid.NewString(),
		kind:        kind,
		send:        make(chan []byte, 16),
		connectedAt: time.Now(),
		conn:        conn,
		closed:      make(chan struct{}),
	}
	b.mu.Lock()
	b.clients = append(b.clients, c)
	b.mu.Unlock()
	log.Printf("[Bridge] client connected kind=%s id=%s", kind, c.id)
	return c
}

// removeClient prunes a disconnected client and, if no clients remain,
// clears every pending receiver (the only way stale receivers are
// removed, matching the spec's disconnect-clears-pending rule).
func (b *Bridge) removeClient(c *client) {
	b.mu.Lock()
	for i, other := range b.clients {
		if other == c {
			b.clients = append(b.clients[:i], b.clients[i+1:]...)
			break
		}
	}
	remaining := len(b.clients)
	b.mu.Unlock()

	c.markClosed()
	log.Printf("[Bridge] client disconnected id=%s remaining=%d", c.id, remaining)

	if remaining == 0 {
		b.pendingMu.Lock()
		n := len(b.pending)
		b.pending = map[string]chan EvalResult{}
		b.pendingMu.Unlock()
		if n > 0 {
			log.Printf("[Bridge] last client disconnected, cleared %d pending requests", n)
		}
	}
}

func (b *Bridge) mostRecentClient() *client {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.clients) == 0 {
		return nil
	}
	return b.clients[len(b.clients)-1]
}

func (b *Bridge) subprocessClients() []*client {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*client
	for _, c := range b.clients {
		if c.kind == KindSubprocess {
			out = append(out, c)
		}
	}
	return out
}

func (b *Bridge) broadcastAll(payload []byte) {
	b.mu.Lock()
	targets := append([]*client(nil), b.clients...)
	b.mu.Unlock()
	for _, c := range targets {
		select {
		case c.send <- payload:
		default:
			log.Printf("[Bridge] send buffer full for client %s, dropping message", c.id)
		}
	}
}

// EvalInActiveTab sends code to the most-recently-connected client and
// waits for its result. It returns (nil, nil) if no client ever connects
// within the retry budget ("extension unavailable").
func (b *Bridge) EvalInActiveTab(ctx context.Context, code string, awaitPromise bool) (*string, error) {
	deadline := time.Now().Add(activeTabBudget)
	var target *client
	for {
		target = b.mostRecentClient()
		if target != nil {
			break
		}
		if time.Now().After(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(activeTabPollEvery):
		}
	}

	id := uuid.NewString()
	ch := make(chan EvalResult, 1)
	b.pendingMu.Lock()
	b.pending[id] = ch
	b.pendingMu.Unlock()

	req := newEvalRequest(id, code, awaitPromise)
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	select {
	case target.send <- payload:
	default:
		return nil, errors.New("bridge: client send buffer full")
	}

	select {
	case result := <-ch:
		if !result.OK {
			errMsg := "ERROR: " + result.Error
			return &errMsg, nil
		}
		s := string(result.Result)
		// Unquote JSON string results so callers see the bare string,
		// not a doubly-quoted JSON string.
		var unquoted string
		if json.Unmarshal(result.Result, &unquoted) == nil {
			s = unquoted
		}
		return &s, nil
	case <-ctx.Done():
		b.pendingMu.Lock()
		delete(b.pending, id)
		b.pendingMu.Unlock()
		return nil, ctx.Err()
	case <-time.After(activeTabBudget):
		b.pendingMu.Lock()
		delete(b.pending, id)
		b.pendingMu.Unlock()
		return nil, nil
	}
}

// Reset tells the browser to discard its state, then sleeps 500ms before
// the next eval burst.
func (b *Bridge) Reset() {
	payload, _ := json.Marshal(newResetCommand())
	b.broadcastAll(payload)
	time.Sleep(resetSettle)
}

// handleMessage dispatches one inbound raw frame from the given client.
func (b *Bridge) handleMessage(from *client, raw []byte) {
	var env inboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("[Bridge] malformed message from %s: %v", from.id, err)
		return
	}

	switch {
	case env.Type != "":
		var evt TypedEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			log.Printf("[Bridge] malformed typed event: %v", err)
			return
		}
		b.handleTypedEvent(from, evt)

	case env.Action == "eval" && from.kind == KindSubprocess:
		var proxy ProxyEval
		if err := json.Unmarshal(raw, &proxy); err != nil {
			log.Printf("[Bridge] malformed proxy eval: %v", err)
			return
		}
		req := newEvalRequest(proxy.ID, proxy.Code, proxy.AwaitPromise)
		payload, _ := json.Marshal(req)
		b.broadcastAll(payload)

	case env.OK != nil:
		var result EvalResult
		if err := json.Unmarshal(raw, &result); err != nil {
			log.Printf("[Bridge] malformed eval result: %v", err)
			return
		}
		b.pendingMu.Lock()
		ch, ok := b.pending[result.ID]
		if ok {
			delete(b.pending, result.ID)
		}
		b.pendingMu.Unlock()
		if ok {
			select {
			case ch <- result:
			default:
			}
		}
		for _, sub := range b.subprocessClients() {
			if sub == from {
				continue
			}
			select {
			case sub.send <- raw:
			default:
			}
		}

	default:
		log.Printf("[Bridge] unrecognized message shape from %s", from.id)
	}
}

func (b *Bridge) handleTypedEvent(from *client, evt TypedEvent) {
	switch evt.Type {
	case "hello":
		log.Printf("[Bridge] hello from %s", from.id)
	case "pong":
	case "console_event":
		log.Printf("[Bridge] console event level=%s", evt.Level)
	case "exception_event":
		log.Printf("[Bridge] exception event: %s", evt.StackTrace)
	case "log_event":
		log.Printf("[Bridge] log event: %s", evt.Entry)
	default:
		log.Printf("[Bridge] unknown typed event %q", evt.Type)
	}
}
