package handlers

import (
	"net/http"

	"github.com/atelierhq/atelier/internal/service"
	"github.com/atelierhq/atelier/internal/websocket"
	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub         *websocket.Hub
	authService *service.AuthService
	logger      *zap.Logger
}

func NewWebSocketHandler(hub *websocket.Hub, authService *service.AuthService, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
		logger:      logger,
	}
}

// Handle authenticates via a token query parameter, since browsers cannot
// set headers on websocket upgrades, then hands the connection to the hub.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusUnauthorized, "token required")
		return
	}

	claims, err := h.authService.ValidateToken(token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	sub, ok := (*claims)["sub"].(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "invalid token claims")
		return
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid user id")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := websocket.NewClient(h.hub, conn, userID, h.logger)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
