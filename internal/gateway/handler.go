package gateway

import (
	"context"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	"github.com/rx3lixir/prodhack/pkg/jwt"
	"github.com/rx3lixir/prodhack/pkg/logger"
)

// Handler upgrades authenticated HTTP requests to battle connections
type Handler struct {
	gw         *Gateway
	jwtService *jwt.Service
	log        *logger.Logger
}

func NewHandler(gw *Gateway, jwtService *jwt.Service, log *logger.Logger) *Handler {
	return &Handler{
		gw:         gw,
		jwtService: jwtService,
		log:        log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleConnection)
}

func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	// Try the Authorization header first
	token := r.Header.Get("Authorization")
	if token != "" {
		token = strings.TrimPrefix(token, "Bearer ")
	}

	// Browsers can't set headers on WebSocket requests, so accept a
	// query param as well
	if token == "" {
		token = r.URL.Query().Get("token")
	}

	if token == "" {
		http.Error(w, "Missing authorization token", http.StatusUnauthorized)
		return
	}

	claims, err := h.jwtService.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"}, // tighten in prod!
	})
	if err != nil {
		h.log.Warn("websocket accept failed", "error", err)
		return
	}

	client := NewClient(conn, claims.Username, h.gw, h.log)

	h.log.Info("establishing websocket connection",
		"conn_id", client.ID(),
		"user_id", claims.UserID,
		"username", claims.Username,
	)

	select {
	case h.gw.register <- client:
	case <-h.gw.done:
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	// The connection outlives this handler; pumps manage their own
	// lifetime
	ctx := context.Background()
	go client.writePump(ctx)
	go client.readPump(ctx)
}
