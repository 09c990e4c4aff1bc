package ws

import "fmt"

// Close code sent to anonymous presence connections.
const CloseAuthRequired = 4001

// Presence group names. Chat groups are derived by the message observer
// (service.ChatRoomGroup); keeping the namespaces distinct prevents
// cross-delivery between concerns.
const GlobalPresenceGroup = "presence_global"

func RoomPresenceGroup(roomID int64) string {
	return fmt.Sprintf("presence_room_%d", roomID)
}

// Client -> server frames on the presence channels.
const (
	TypeHeartbeat = "heartbeat"
	TypeGetAll    = "get_all"
)

type clientFrame struct {
	Type string `json:"type"`
}

// Server -> client frames on the presence channels.
const (
	TypeAllOnline     = "all_online"
	TypeRoomOnline    = "room_online"
	TypePresenceEvent = "presence_event"
)

const (
	EventOnline    = "online"
	EventOffline   = "offline"
	EventRoomJoin  = "room_join"
	EventRoomLeave = "room_leave"
)

type allOnlinePayload struct {
	Type           string  `json:"type"`
	UserIDs        []int64 `json:"user_ids"`
	HeartbeatEvery int     `json:"heartbeat_every"` // seconds
}

type roomOnlinePayload struct {
	Type           string  `json:"type"`
	RoomID         int64   `json:"room_id"`
	UserIDs        []int64 `json:"user_ids"`
	HeartbeatEvery int     `json:"heartbeat_every"` // seconds
}

type presenceEventPayload struct {
	Type   string `json:"type"`
	Event  string `json:"event"`
	UserID int64  `json:"user_id"`
	RoomID int64  `json:"room_id,omitempty"`
}

// Chat channel request/response envelopes.
const (
	ActionJoinRoom      = "join_room"
	ActionLeaveRoom     = "leave_room"
	ActionCreateMessage = "create_message"
)

type chatRequest struct {
	Action    string `json:"action"`
	RequestID string `json:"request_id"`
	PK        *int64 `json:"pk,omitempty"`
	Message   string `json:"message"`
	Room      *int64 `json:"room,omitempty"`
	RoomID    *int64 `json:"room_id,omitempty"`
}

type chatResponse struct {
	Action         string   `json:"action"`
	RequestID      string   `json:"request_id"`
	ResponseStatus int      `json:"response_status"`
	Data           any      `json:"data"`
	Errors         []string `json:"errors"`
}

type detailPayload struct {
	Detail string `json:"detail"`
}
