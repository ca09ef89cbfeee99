package disconnect

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/geoduel/internal/config"
	"github.com/Seednode/geoduel/internal/engine"
	"github.com/Seednode/geoduel/internal/kv"
	"github.com/Seednode/geoduel/internal/session"
)

type fakeLeaver struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeLeaver) OnPlayerLeave(_ context.Context, lobbyCode, userID string, _ *session.Client) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, lobbyCode+":"+userID)
}

func (f *fakeLeaver) called(want string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == want {
			return true
		}
	}
	return false
}

type stubConn struct{}

func (stubConn) Send(v any) error             { return nil }
func (stubConn) Close(code int, reason string) error { return nil }

func newTestSupervisor(t *testing.T, grace time.Duration) (*Supervisor, *fakeLeaver, *session.Registry) {
	t.Helper()
	cfg := &config.Config{DisconnectGrace: grace}
	registry := session.NewRegistry(cfg)
	leaver := &fakeLeaver{}
	sup := New(cfg, kv.NewMemoryStore(), registry, leaver)
	return sup, leaver, registry
}

func TestReconnectCancelsKick(t *testing.T) {
	sup, leaver, registry := newTestSupervisor(t, 50*time.Millisecond)
	ctx := context.Background()

	client := registry.Attach("lobby1", "alice", stubConn{})
	sup.OnDisconnect(ctx, "lobby1", "alice", client)

	assert.True(t, sup.IsMarkedDisconnected(ctx, "lobby1", "alice"))

	snap := &engine.Snapshot{Round: 0, RemainingSeconds: 100}
	msg := sup.OnReconnect(ctx, "lobby1", "alice", stubConn{}, snap)
	require.NotNil(t, msg)
	assert.Equal(t, "reconnect_success", msg.Type)

	time.Sleep(100 * time.Millisecond)
	assert.False(t, leaver.called("lobby1:alice"), "reconnect must cancel the pending kick")
	assert.False(t, sup.IsMarkedDisconnected(ctx, "lobby1", "alice"))
}

func TestKickFiresAfterGraceWindow(t *testing.T) {
	sup, leaver, registry := newTestSupervisor(t, 30*time.Millisecond)
	ctx := context.Background()

	client := registry.Attach("lobby1", "bob", stubConn{})
	sup.OnDisconnect(ctx, "lobby1", "bob", client)

	require.Eventually(t, func() bool {
		return leaver.called("lobby1:bob")
	}, time.Second, 5*time.Millisecond)

	assert.False(t, sup.IsMarkedDisconnected(ctx, "lobby1", "bob"))
}
