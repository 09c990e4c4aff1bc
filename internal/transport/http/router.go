package http

import (
	"net/http"
	"time"

	"github.com/cwrk-planet/presence-service/internal/auth"
	httpmw "github.com/cwrk-planet/presence-service/internal/transport/http/middleware"
	"github.com/cwrk-planet/presence-service/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler, authn auth.Authenticator, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)

	// WS endpoints authenticate inside the handshake (browsers cannot set
	// headers here), so they sit outside the middleware group.
	r.Get("/ws/presence/", wsServer.HandleGlobalPresence)
	r.Get("/ws/room/{roomID}/presence/", wsServer.HandleRoomPresence)
	r.Get("/ws/chat/room/", wsServer.HandleChat)

	// Presence snapshots are read-only and public.
	r.Get("/api/online/", h.OnlineUsers)
	r.Get("/api/room/{id}/online/", h.RoomOnlineUsers)

	r.Group(func(pr chi.Router) {
		pr.Use(httpmw.Middleware(authn))
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.Route("/rooms", func(rm chi.Router) {
			rm.Post("/", h.CreateRoom)
			rm.Get("/", h.ListRooms)
			rm.Get("/{id}/messages", h.RoomMessages)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
