package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/cwrk-planet/presence-service/internal/domain"
	"github.com/cwrk-planet/presence-service/internal/presence"
	"github.com/cwrk-planet/presence-service/internal/service"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	chatSvc *service.ChatService
	store   presence.Store
}

func NewHandler(chatSvc *service.ChatService, store presence.Store) *Handler {
	return &Handler{chatSvc: chatSvc, store: store}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /api/online/
func (h *Handler) OnlineUsers(w http.ResponseWriter, r *http.Request) {
	ids, err := h.store.ListAliveGlobal(r.Context())
	if err != nil {
		slog.Error("handler.OnlineUsers:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "presence store unavailable"})
		return
	}
	users, err := h.chatSvc.OnlineUsers(r.Context(), ids)
	if err != nil {
		slog.Error("handler.OnlineUsers:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if users == nil {
		users = []service.UserRepr{}
	}
	writeJSON(w, http.StatusOK, OnlineResponse{Online: users})
}

// GET /api/room/{id}/online/
func (h *Handler) RoomOnlineUsers(w http.ResponseWriter, r *http.Request) {
	roomID, ok := roomIDParam(w, r)
	if !ok {
		return
	}
	ids, err := h.store.ListAliveRoom(r.Context(), roomID)
	if err != nil {
		slog.Error("handler.RoomOnlineUsers:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "presence store unavailable"})
		return
	}
	users, err := h.chatSvc.OnlineUsers(r.Context(), ids)
	if err != nil {
		slog.Error("handler.RoomOnlineUsers:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if users == nil {
		users = []service.UserRepr{}
	}
	writeJSON(w, http.StatusOK, RoomOnlineResponse{RoomID: roomID, Online: users})
}

// POST /rooms
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "name is required"})
		return
	}

	room, err := h.chatSvc.GetOrCreateRoom(r.Context(), name)
	if err != nil {
		slog.Error("handler.CreateRoom:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, RoomItem{
		ID:        room.ID,
		Name:      room.Name,
		CreatedAt: room.CreatedAt,
	})
}

// GET /rooms
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.chatSvc.ListRooms(r.Context())
	if err != nil {
		slog.Error("handler.ListRooms:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	items := make([]RoomItem, 0, len(rooms))
	for _, rm := range rooms {
		items = append(items, RoomItem{ID: rm.ID, Name: rm.Name, CreatedAt: rm.CreatedAt})
	}
	writeJSON(w, http.StatusOK, items)
}

// GET /rooms/{id}/messages?limit=
func (h *Handler) RoomMessages(w http.ResponseWriter, r *http.Request) {
	roomID, ok := roomIDParam(w, r)
	if !ok {
		return
	}
	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	msgs, err := h.chatSvc.RoomHistory(r.Context(), roomID, limit)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		slog.Error("handler.RoomMessages:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if msgs == nil {
		msgs = []service.MessageRepr{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{RoomID: roomID, Messages: msgs})
}

func roomIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid room id"})
		return 0, false
	}
	return id, true
}
