package http

import (
	"time"

	"github.com/cwrk-planet/presence-service/internal/service"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type OnlineResponse struct {
	Online []service.UserRepr `json:"online"`
}

type RoomOnlineResponse struct {
	RoomID int64              `json:"room_id"`
	Online []service.UserRepr `json:"online"`
}

type CreateRoomRequest struct {
	Name string `json:"name"`
}

type RoomItem struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type HistoryResponse struct {
	RoomID   int64                 `json:"room_id"`
	Messages []service.MessageRepr `json:"messages"`
}
