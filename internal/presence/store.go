package presence

import (
	"context"
	"fmt"
)

// Store keeps the two independent pieces of presence state: a per-user
// liveness marker that expires after the TTL, and best-effort online sets
// (one global, one per room). The sets may lag behind the markers between
// heartbeats; ListAlive* reconciles them at read time.
type Store interface {
	// Heartbeat refreshes the user's liveness marker and ensures the user
	// is in the global online set. Idempotent.
	Heartbeat(ctx context.Context, userID int64) error

	// RemoveGlobal deletes the marker and drops the user from the global
	// set. Used on explicit departure only; TTL lapse handles the rest.
	RemoveGlobal(ctx context.Context, userID int64) error

	// RoomJoin adds the user to the room's online set. Joining proves
	// liveness, so it heartbeats as a side effect.
	RoomJoin(ctx context.Context, userID, roomID int64) error

	// RoomLeave drops the user from the room's online set only; the
	// marker and the global set are untouched.
	RoomLeave(ctx context.Context, userID, roomID int64) error

	// ListAliveGlobal and ListAliveRoom are the sole authority for who is
	// online in a scope: they snapshot the set, keep members with a live
	// marker and lazily prune the rest. Order is unspecified.
	ListAliveGlobal(ctx context.Context) ([]int64, error)
	ListAliveRoom(ctx context.Context, roomID int64) ([]int64, error)
}

func userKey(userID int64) string {
	return fmt.Sprintf("presence:user:%d", userID)
}

func globalSetKey() string {
	return "presence:global:users"
}

func roomSetKey(roomID int64) string {
	return fmt.Sprintf("presence:room:%d:users", roomID)
}
