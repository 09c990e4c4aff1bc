package ws

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cwrk-planet/presence-service/internal/auth"
	"github.com/cwrk-planet/presence-service/internal/domain"
	"github.com/cwrk-planet/presence-service/internal/presence"
	"github.com/cwrk-planet/presence-service/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// ChatSvc is the persistence collaborator the chat channel consumes.
type ChatSvc interface {
	FindRoom(ctx context.Context, id int64) (*domain.Room, error)
	CreateMessage(ctx context.Context, roomID, userID int64, text string) (*domain.Message, error)
	SerializeRoom(ctx context.Context, room *domain.Room) (service.RoomRepr, error)
}

// Observer wires created messages into the fanout path and names the groups
// a chat consumer joins.
type Observer interface {
	ConsumerGroups(roomID int64) []string
	MessageCreated(ctx context.Context, m *domain.Message) error
}

type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	store    presence.Store
	authn    auth.Authenticator
	chatSvc  ChatSvc
	observer Observer

	heartbeatEvery time.Duration
	ttl            time.Duration
}

func NewServer(
	hub *Hub,
	store presence.Store,
	authn auth.Authenticator,
	chatSvc ChatSvc,
	observer Observer,
	heartbeatEvery, ttl time.Duration,
) *Server {
	return &Server{
		hub:      hub,
		store:    store,
		authn:    authn,
		chatSvc:  chatSvc,
		observer: observer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		heartbeatEvery: heartbeatEvery,
		ttl:            ttl,
	}
}

// GET /ws/presence/
func (s *Server) HandleGlobalPresence(w http.ResponseWriter, r *http.Request) {
	ident, authErr := s.authn.Authenticate(r)

	c, ok := s.upgrade(w, r)
	if !ok {
		return
	}
	if authErr != nil {
		s.reject(c)
		return
	}

	s.runGlobalPresence(r.Context(), c, ident)
}

// GET /ws/room/{roomID}/presence/
func (s *Server) HandleRoomPresence(w http.ResponseWriter, r *http.Request) {
	roomID, err := strconv.ParseInt(chi.URLParam(r, "roomID"), 10, 64)
	if err != nil || roomID <= 0 {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}
	ident, authErr := s.authn.Authenticate(r)

	c, ok := s.upgrade(w, r)
	if !ok {
		return
	}
	if authErr != nil {
		s.reject(c)
		return
	}

	s.runRoomPresence(r.Context(), c, ident, roomID)
}

// GET /ws/chat/room/
// Anonymous connections are allowed here; create_message enforces auth at
// the action level, matching the REST-style 403.
func (s *Server) HandleChat(w http.ResponseWriter, r *http.Request) {
	ident, authErr := s.authn.Authenticate(r)
	if authErr != nil {
		ident = auth.Identity{} // anonymous
	}

	c, ok := s.upgrade(w, r)
	if !ok {
		return
	}

	s.runChat(r.Context(), c, ident)
}

func (s *Server) upgrade(w http.ResponseWriter, r *http.Request) (*SocketConn, bool) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return nil, false
	}
	return NewSocketConn(conn), true
}

// reject closes a freshly upgraded socket with the auth close code; the
// handshake must complete before a close code can be delivered.
func (s *Server) reject(c *SocketConn) {
	msg := websocket.FormatCloseMessage(CloseAuthRequired, "authentication required")
	_ = c.Raw().WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = c.Close()
}

// configureRead sets limits and keeps the read deadline moving on pongs.
// Pongs do NOT refresh the liveness marker: liveness is the client's explicit
// heartbeat, otherwise TTL expiry of idle-but-connected clients could never
// happen.
func (s *Server) configureRead(c *SocketConn) {
	raw := c.Raw()
	raw.SetReadLimit(1 << 20)
	_ = raw.SetReadDeadline(time.Now().Add(2 * s.ttl))
	raw.SetPongHandler(func(string) error {
		return raw.SetReadDeadline(time.Now().Add(2 * s.ttl))
	})
}

// pingLoop keeps intermediaries from reaping idle sockets.
func (s *Server) pingLoop(ctx context.Context, c *SocketConn) {
	ticker := time.NewTicker(s.heartbeatEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.Raw().WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
		case <-ctx.Done():
			return
		case <-c.Closed():
			return
		}
	}
}

func (s *Server) heartbeatSeconds() int {
	return int(s.heartbeatEvery / time.Second)
}
