package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/cwrk-planet/presence-service/internal/auth"
)

// runGlobalPresence owns one global presence connection from subscribe to
// teardown. The teardown runs exactly once, on every exit path including
// abrupt network failure (the read loop is the only thing keeping us here).
func (s *Server) runGlobalPresence(ctx context.Context, c *SocketConn, ident auth.Identity) {
	s.hub.Subscribe(c, GlobalPresenceGroup, "")

	if err := s.store.Heartbeat(ctx, ident.UserID); err != nil {
		slog.Error("presence heartbeat failed", "user", ident.UserID, "err", err)
	}

	s.publishPresenceEvent(GlobalPresenceGroup, EventOnline, ident.UserID, 0)
	s.sendAllOnline(ctx, c)

	go s.pingLoop(ctx, c)
	s.configureRead(c)

	for {
		_, data, err := c.Raw().ReadMessage()
		if err != nil {
			break
		}
		var frame clientFrame
		if json.Unmarshal(data, &frame) != nil {
			continue
		}

		switch frame.Type {
		case TypeHeartbeat:
			// refresh liveness only: no set mutation, no fanout
			if err := s.store.Heartbeat(ctx, ident.UserID); err != nil {
				slog.Warn("presence heartbeat failed", "user", ident.UserID, "err", err)
			}
		case TypeGetAll:
			s.sendAllOnline(ctx, c)
		}
	}

	// teardown; the request context may already be gone on abnormal close
	ctx = context.Background()
	if err := s.store.RemoveGlobal(ctx, ident.UserID); err != nil {
		slog.Warn("presence remove failed", "user", ident.UserID, "err", err)
	}
	s.publishPresenceEvent(GlobalPresenceGroup, EventOffline, ident.UserID, 0)
	s.hub.Drop(c)
	_ = c.Close()
}

// runRoomPresence is the room-scoped variant: join/leave mutate only the
// room's online set, and heartbeats piggyback on the shared global marker.
func (s *Server) runRoomPresence(ctx context.Context, c *SocketConn, ident auth.Identity, roomID int64) {
	group := RoomPresenceGroup(roomID)
	s.hub.Subscribe(c, group, "")

	if err := s.store.RoomJoin(ctx, ident.UserID, roomID); err != nil {
		slog.Error("room join failed", "user", ident.UserID, "room", roomID, "err", err)
	}

	s.publishPresenceEvent(group, EventRoomJoin, ident.UserID, roomID)
	s.sendRoomOnline(ctx, c, roomID)

	go s.pingLoop(ctx, c)
	s.configureRead(c)

	for {
		_, data, err := c.Raw().ReadMessage()
		if err != nil {
			break
		}
		var frame clientFrame
		if json.Unmarshal(data, &frame) != nil {
			continue
		}

		if frame.Type == TypeHeartbeat {
			if err := s.store.Heartbeat(ctx, ident.UserID); err != nil {
				slog.Warn("presence heartbeat failed", "user", ident.UserID, "err", err)
			}
		}
	}

	// the global marker is left alone: room departure and global liveness
	// are independent scopes
	ctx = context.Background()
	if err := s.store.RoomLeave(ctx, ident.UserID, roomID); err != nil {
		slog.Warn("room leave failed", "user", ident.UserID, "room", roomID, "err", err)
	}
	s.publishPresenceEvent(group, EventRoomLeave, ident.UserID, roomID)
	s.hub.Drop(c)
	_ = c.Close()
}

func (s *Server) publishPresenceEvent(group, event string, userID, roomID int64) {
	payload := presenceEventPayload{
		Type:   TypePresenceEvent,
		Event:  event,
		UserID: userID,
		RoomID: roomID,
	}
	s.hub.Publish(group, func(string) any { return payload })
}

func (s *Server) sendAllOnline(ctx context.Context, c *SocketConn) {
	ids, err := s.store.ListAliveGlobal(ctx)
	if err != nil {
		slog.Warn("list alive failed", "err", err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	if err := c.Send(allOnlinePayload{
		Type:           TypeAllOnline,
		UserIDs:        ids,
		HeartbeatEvery: s.heartbeatSeconds(),
	}); err != nil {
		slog.Debug("send snapshot failed", "err", err)
	}
}

func (s *Server) sendRoomOnline(ctx context.Context, c *SocketConn, roomID int64) {
	ids, err := s.store.ListAliveRoom(ctx, roomID)
	if err != nil {
		slog.Warn("list alive failed", "room", roomID, "err", err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	if err := c.Send(roomOnlinePayload{
		Type:           TypeRoomOnline,
		RoomID:         roomID,
		UserIDs:        ids,
		HeartbeatEvery: s.heartbeatSeconds(),
	}); err != nil {
		slog.Debug("send snapshot failed", "room", roomID, "err", err)
	}
}
