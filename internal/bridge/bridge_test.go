package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridge_EvalInActiveTabNoClientReturnsNil(t *testing.T) {
	b := newBridge()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// The 50ms context ends long before the 10s client budget, so the
	// call reports the context's error alongside the nil result.
	result, err := b.EvalInActiveTab(ctx, "1+1", false)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, result)
}

func TestBridge_DisconnectClearsPending(t *testing.T) {
	b := newBridge()
	b.pending["abc"] = make(chan EvalResult, 1)
	c := &client{id: "x", kind: KindBrowser, send: make(chan []byte, 1), closed: make(chan struct{})}
	b.clients = append(b.clients, c)

	b.removeClient(c)

	b.pendingMu.Lock()
	defer b.pendingMu.Unlock()
	assert.Empty(t, b.pending)
}

func TestBridge_EvalResultResolvesPending(t *testing.T) {
	b := newBridge()
	ch := make(chan EvalResult, 1)
	b.pendingMu.Lock()
	b.pending["req-1"] = ch
	b.pendingMu.Unlock()

	raw := []byte(`{"id":"req-1","ok":true,"result":2}`)
	from := &client{id: "browser", kind: KindBrowser, send: make(chan []byte, 1), closed: make(chan struct{})}
	b.handleMessage(from, raw)

	select {
	case got := <-ch:
		assert.True(t, got.OK)
		assert.Equal(t, "2", string(got.Result))
	case <-time.After(time.Second):
		t.Fatal("expected eval result to resolve pending channel")
	}
}
