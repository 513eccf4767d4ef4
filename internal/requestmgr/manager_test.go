package requestmgr_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminator-mcp/terminator-mcp-go/internal/requestmgr"
)

func TestManager_GatesConcurrency(t *testing.T) {
	m := requestmgr.NewManager(1)
	_, release1, _, ok1 := m.Register(context.Background(), time.Second)
	require.True(t, ok1)

	_, _, _, ok2 := m.Register(context.Background(), time.Second)
	assert.False(t, ok2)

	release1()
	_, release3, _, ok3 := m.Register(context.Background(), time.Second)
	assert.True(t, ok3)
	release3()
}

func TestManager_CancelAllFiresTokens(t *testing.T) {
	m := requestmgr.NewManager(4)
	ctx, release, _, ok := m.Register(context.Background(), 0)
	require.True(t, ok)
	defer release()

	m.CancelAll()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("expected context to be cancelled")
	}
}

func TestManager_StatusReflectsActive(t *testing.T) {
	m := requestmgr.NewManager(2)
	_, release, _, _ := m.Register(context.Background(), 0)
	defer release()

	status := m.Status()
	assert.Equal(t, 1, status.ActiveRequests)
	assert.Equal(t, 2, status.MaxConcurrent)
	assert.False(t, status.Busy)
}
