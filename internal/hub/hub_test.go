package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/promptparty/backend/internal/room"
	"github.com/promptparty/backend/internal/store"
	"github.com/promptparty/backend/internal/types"
)

func newHub(t *testing.T) (*Hub, *store.Keeper) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	keeper, err := store.NewKeeper(ctx, store.NewMemStore(), zap.NewNop())
	require.NoError(t, err)
	return NewHub(ctx, keeper, zap.NewNop()), keeper
}

func create(t *testing.T, h *Hub, id string) Result {
	t.Helper()
	reply := make(chan Result, 1)
	h.Inbox() <- CreateRoom{ID: id, Reply: reply}
	return recvResult(t, reply)
}

func attach(t *testing.T, h *Hub, id string) Result {
	t.Helper()
	reply := make(chan Result, 1)
	h.Inbox() <- AttachRoom{ID: id, Reply: reply}
	return recvResult(t, reply)
}

func recvResult(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for hub reply")
		return Result{} // unreachable
	}
}

func TestHub_CreateThenAttach_SamePointer(t *testing.T) {
	h, _ := newHub(t)

	created := create(t, h, "R1")
	require.NoError(t, created.Err)
	require.NotNil(t, created.Room)

	attached := attach(t, h, "R1")
	require.NoError(t, attached.Err)
	assert.Same(t, created.Room, attached.Room)
}

func TestHub_CreateDuplicateFails(t *testing.T) {
	h, _ := newHub(t)

	require.NoError(t, create(t, h, "R1").Err)

	res := create(t, h, "R1")
	assert.ErrorIs(t, res.Err, ErrRoomExists)
	assert.Nil(t, res.Room)
}

func TestHub_AttachMissingFails(t *testing.T) {
	h, _ := newHub(t)

	res := attach(t, h, "nope")
	assert.ErrorIs(t, res.Err, ErrRoomNotFound)
}

func TestHub_CreatePersistsImmediately(t *testing.T) {
	h, keeper := newHub(t)

	require.NoError(t, create(t, h, "R1").Err)
	assert.True(t, keeper.Has("R1"))
}

func TestHub_ReattachAfterEvictionKeepsState(t *testing.T) {
	h, _ := newHub(t)

	created := create(t, h, "R1")
	require.NoError(t, created.Err)

	out := make(chan types.ServerMessage, 4)
	created.Room.Inbox() <- room.Join{ClientID: "c1", Username: "Alice", Outbox: out}
	select {
	case <-out:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for join broadcast")
	}

	// Last member leaves; the actor stops and membership tracking goes away.
	created.Room.Inbox() <- room.Leave{ClientID: "c1"}
	select {
	case <-created.Room.Done():
	case <-time.After(time.Second):
		t.Fatal("room actor did not stop")
	}

	// Creating again must still fail: the room itself survived.
	assert.ErrorIs(t, create(t, h, "R1").Err, ErrRoomExists)

	attached := attach(t, h, "R1")
	require.NoError(t, attached.Err)
	require.NotNil(t, attached.Room)
	assert.NotSame(t, created.Room, attached.Room)

	reply := make(chan room.View, 1)
	attached.Room.Inbox() <- room.GetState{Reply: reply}
	select {
	case view := <-reply:
		assert.Equal(t, []string{"Alice"}, view.State.Players)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for view")
	}
}

func TestHub_RoomsAreIndependent(t *testing.T) {
	h, _ := newHub(t)

	r1 := create(t, h, "R1")
	r2 := create(t, h, "R2")
	require.NoError(t, r1.Err)
	require.NoError(t, r2.Err)
	assert.NotSame(t, r1.Room, r2.Room)
}
