package ws

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/promptparty/backend/internal/game"
	"github.com/promptparty/backend/internal/hub"
	"github.com/promptparty/backend/internal/room"
	"github.com/promptparty/backend/internal/store"
	"github.com/promptparty/backend/internal/types"
)

func TestJoinRoom_RecoversFromStoppedActor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	keeper, err := store.NewKeeper(ctx, store.NewMemStore(), zap.NewNop())
	require.NoError(t, err)
	h := hub.NewHub(ctx, keeper, zap.NewNop())

	reply := make(chan hub.Result, 1)
	h.Inbox() <- hub.CreateRoom{ID: "R1", Reply: reply}
	res := <-reply
	require.NoError(t, res.Err)
	stale := res.Room

	// Drive the actor to eviction: its only member joins and leaves.
	aliceOut := make(chan types.ServerMessage, 4)
	stale.Inbox() <- room.Join{ClientID: "c1", Username: "Alice", Outbox: aliceOut}
	select {
	case <-aliceOut:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for join broadcast")
	}
	stale.Inbox() <- room.Leave{ClientID: "c1"}
	select {
	case <-stale.Done():
	case <-time.After(time.Second):
		t.Fatal("room actor did not stop")
	}

	// A session still holding the stale pointer must land in a live room
	// instead of hanging on a Join nobody will ever process.
	bobOut := make(chan types.ServerMessage, 8)
	rm, ok := joinRoom(h, stale, "R1", "c2", "Bob", bobOut)
	require.True(t, ok)
	require.NotSame(t, stale, rm)

	select {
	case msg := <-bobOut:
		rs, isState := msg.(types.RoomState)
		require.True(t, isState)
		assert.Equal(t, []string{"Alice", "Bob"}, rs.Players)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for room state after recovery")
	}
}

func TestJoinRoom_FailsWhenRoomUnresolvable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	keeper, err := store.NewKeeper(ctx, store.NewMemStore(), zap.NewNop())
	require.NoError(t, err)
	h := hub.NewHub(ctx, keeper, zap.NewNop())

	// A room the hub never heard of: the stopped actor cannot be replaced,
	// so the join must fail terminally rather than loop or hang.
	rm := room.New(ctx, "ghost", game.NewState(), keeper, func(string) {}, zap.NewNop())
	rm.Inbox() <- room.Shutdown{}
	select {
	case <-rm.Done():
	case <-time.After(time.Second):
		t.Fatal("room actor did not stop")
	}

	out := make(chan types.ServerMessage, 4)
	_, ok := joinRoom(h, rm, "ghost", "c1", "Alice", out)
	assert.False(t, ok)
}
