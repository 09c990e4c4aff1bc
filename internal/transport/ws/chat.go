package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cwrk-planet/presence-service/internal/auth"
	"github.com/cwrk-planet/presence-service/internal/domain"
)

// runChat serves the action-based chat channel. Messages from one connection
// are handled strictly in arrival order; fanout to the connection arrives
// through the hub like for any other subscriber.
func (s *Server) runChat(ctx context.Context, c *SocketConn, ident auth.Identity) {
	go s.pingLoop(ctx, c)
	s.configureRead(c)

	for {
		_, data, err := c.Raw().ReadMessage()
		if err != nil {
			break
		}
		var req chatRequest
		if err := json.Unmarshal(data, &req); err != nil {
			continue
		}

		s.handleChatAction(ctx, c, ident, req)
	}

	s.hub.Drop(c)
	_ = c.Close()
}

func (s *Server) handleChatAction(ctx context.Context, c Conn, ident auth.Identity, req chatRequest) {
	switch req.Action {
	case ActionJoinRoom:
		s.joinRoom(ctx, c, req)
	case ActionLeaveRoom:
		s.leaveRoom(c, req)
	case ActionCreateMessage:
		s.createMessage(ctx, c, ident, req)
	default:
		respond(c, req, http.StatusBadRequest,
			detailPayload{Detail: fmt.Sprintf("Unknown action %q", req.Action)})
	}
}

func (s *Server) joinRoom(ctx context.Context, c Conn, req chatRequest) {
	if req.PK == nil {
		respond(c, req, http.StatusBadRequest, detailPayload{Detail: "pk is required"})
		return
	}

	room, err := s.chatSvc.FindRoom(ctx, *req.PK)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			respond(c, req, http.StatusNotFound,
				detailPayload{Detail: fmt.Sprintf("Room %d not found", *req.PK)})
			return
		}
		slog.Error("join_room failed", "room", *req.PK, "err", err)
		respond(c, req, http.StatusInternalServerError, detailPayload{Detail: "internal error"})
		return
	}

	// each join is a logical subscription keyed by the caller's request id
	for _, group := range s.observer.ConsumerGroups(room.ID) {
		s.hub.Subscribe(c, group, req.RequestID)
	}

	repr, err := s.chatSvc.SerializeRoom(ctx, room)
	if err != nil {
		slog.Error("serialize room failed", "room", room.ID, "err", err)
		respond(c, req, http.StatusInternalServerError, detailPayload{Detail: "internal error"})
		return
	}
	respond(c, req, http.StatusOK, repr)
}

func (s *Server) leaveRoom(c Conn, req chatRequest) {
	if req.PK == nil {
		respond(c, req, http.StatusBadRequest, detailPayload{Detail: "pk is required"})
		return
	}

	for _, group := range s.observer.ConsumerGroups(*req.PK) {
		s.hub.Unsubscribe(c, group)
	}
	respond(c, req, http.StatusOK, map[string]int64{"left": *req.PK})
}

func (s *Server) createMessage(ctx context.Context, c Conn, ident auth.Identity, req chatRequest) {
	if ident.UserID == 0 {
		respond(c, req, http.StatusForbidden, detailPayload{Detail: "Authentication required"})
		return
	}

	roomID := req.Room
	if roomID == nil {
		roomID = req.RoomID
	}
	if roomID == nil {
		respond(c, req, http.StatusBadRequest,
			detailPayload{Detail: "room (or room_id) is required"})
		return
	}

	msg, err := s.chatSvc.CreateMessage(ctx, *roomID, ident.UserID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			respond(c, req, http.StatusNotFound,
				detailPayload{Detail: fmt.Sprintf("Room %d not found", *roomID)})
		case errors.Is(err, domain.ErrInvalidInput):
			respond(c, req, http.StatusBadRequest, detailPayload{Detail: err.Error()})
		default:
			slog.Error("create_message failed", "room", *roomID, "user", ident.UserID, "err", err)
			respond(c, req, http.StatusInternalServerError, detailPayload{Detail: "internal error"})
		}
		return
	}

	respond(c, req, http.StatusCreated, map[string]bool{"ok": true})

	// subscribers observe the creation through the fanout path
	if err := s.observer.MessageCreated(ctx, msg); err != nil {
		slog.Error("message fanout failed", "message", msg.ID, "err", err)
	}
}

func respond(c Conn, req chatRequest, status int, data any) {
	if err := c.Send(chatResponse{
		Action:         req.Action,
		RequestID:      req.RequestID,
		ResponseStatus: status,
		Data:           data,
		Errors:         []string{},
	}); err != nil {
		slog.Debug("chat respond failed", "action", req.Action, "err", err)
	}
}
