package presence

import (
	"context"
	"testing"
	"time"
)

func sorted(t *testing.T, ids []int64) map[int64]bool {
	t.Helper()
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func TestHeartbeat_UserBecomesAliveGlobally(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(60 * time.Second)

	if err := s.Heartbeat(ctx, 7); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}

	alive, err := s.ListAliveGlobal(ctx)
	if err != nil {
		t.Fatalf("list alive: %v", err)
	}
	if !sorted(t, alive)[7] {
		t.Fatalf("expected user 7 alive, got %v", alive)
	}
}

func TestTTLExpiry_ExcludedAndPrunedIdempotently(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(60 * time.Second)

	base := time.Now()
	s.now = func() time.Time { return base }

	if err := s.Heartbeat(ctx, 7); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}

	// past the TTL with no further heartbeat
	s.now = func() time.Time { return base.Add(61 * time.Second) }

	alive, err := s.ListAliveGlobal(ctx)
	if err != nil {
		t.Fatalf("list alive: %v", err)
	}
	if len(alive) != 0 {
		t.Fatalf("expected nobody alive, got %v", alive)
	}
	if _, ok := s.global[7]; ok {
		t.Fatal("expected user 7 pruned from the global set")
	}

	// second read is a no-op producing the same result
	alive, err = s.ListAliveGlobal(ctx)
	if err != nil {
		t.Fatalf("list alive: %v", err)
	}
	if len(alive) != 0 {
		t.Fatalf("expected nobody alive on second read, got %v", alive)
	}
}

func TestRoomJoin_AliveInRoomAndGlobally(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(60 * time.Second)

	if err := s.RoomJoin(ctx, 3, 5); err != nil {
		t.Fatalf("room join: %v", err)
	}

	room, err := s.ListAliveRoom(ctx, 5)
	if err != nil {
		t.Fatalf("list room: %v", err)
	}
	if !sorted(t, room)[3] {
		t.Fatalf("expected user 3 alive in room 5, got %v", room)
	}

	global, err := s.ListAliveGlobal(ctx)
	if err != nil {
		t.Fatalf("list global: %v", err)
	}
	if !sorted(t, global)[3] {
		t.Fatalf("expected user 3 alive globally, got %v", global)
	}
}

func TestRoomLeave_GlobalScopeUntouched(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(60 * time.Second)

	if err := s.RoomJoin(ctx, 3, 5); err != nil {
		t.Fatalf("room join: %v", err)
	}
	if err := s.RoomLeave(ctx, 3, 5); err != nil {
		t.Fatalf("room leave: %v", err)
	}

	room, err := s.ListAliveRoom(ctx, 5)
	if err != nil {
		t.Fatalf("list room: %v", err)
	}
	if sorted(t, room)[3] {
		t.Fatalf("expected user 3 gone from room 5, got %v", room)
	}

	global, err := s.ListAliveGlobal(ctx)
	if err != nil {
		t.Fatalf("list global: %v", err)
	}
	if !sorted(t, global)[3] {
		t.Fatalf("expected user 3 still alive globally, got %v", global)
	}
}

func TestRemoveGlobal_DeletesMarkerAndMembership(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(60 * time.Second)

	if err := s.Heartbeat(ctx, 9); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	if err := s.RemoveGlobal(ctx, 9); err != nil {
		t.Fatalf("remove: %v", err)
	}

	alive, err := s.ListAliveGlobal(ctx)
	if err != nil {
		t.Fatalf("list alive: %v", err)
	}
	if len(alive) != 0 {
		t.Fatalf("expected nobody alive, got %v", alive)
	}
}

func TestRoomSetStaleness_RepairedOnRead(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(60 * time.Second)

	base := time.Now()
	s.now = func() time.Time { return base }

	if err := s.RoomJoin(ctx, 1, 5); err != nil {
		t.Fatalf("room join: %v", err)
	}
	if err := s.RoomJoin(ctx, 2, 5); err != nil {
		t.Fatalf("room join: %v", err)
	}

	// user 1 keeps heartbeating, user 2 goes dark for over a TTL
	s.now = func() time.Time { return base.Add(50 * time.Second) }
	if err := s.Heartbeat(ctx, 1); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	s.now = func() time.Time { return base.Add(70 * time.Second) }

	alive, err := s.ListAliveRoom(ctx, 5)
	if err != nil {
		t.Fatalf("list room: %v", err)
	}
	set := sorted(t, alive)
	if !set[1] || set[2] {
		t.Fatalf("expected only user 1 alive in room, got %v", alive)
	}
	if _, ok := s.rooms[5][2]; ok {
		t.Fatal("expected user 2 pruned from the room set")
	}
}

func TestHeartbeat_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(60 * time.Second)

	for i := 0; i < 3; i++ {
		if err := s.Heartbeat(ctx, 4); err != nil {
			t.Fatalf("heartbeat %d: %v", i, err)
		}
	}

	alive, err := s.ListAliveGlobal(ctx)
	if err != nil {
		t.Fatalf("list alive: %v", err)
	}
	if len(alive) != 1 || alive[0] != 4 {
		t.Fatalf("expected exactly [4], got %v", alive)
	}
}
