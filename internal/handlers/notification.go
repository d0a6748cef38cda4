package handlers

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/prasetyo-adi/jobportal_be/internal/middleware"
	"github.com/prasetyo-adi/jobportal_be/internal/realtime"
	"github.com/prasetyo-adi/jobportal_be/internal/utils"
)

type NotificationHandler struct {
	Hub       *realtime.Hub
	JWTSecret string
}

func NewNotificationHandler(hub *realtime.Hub, jwtSecret string) *NotificationHandler {
	return &NotificationHandler{Hub: hub, JWTSecret: jwtSecret}
}

// Serve upgrades the connection and streams the caller's notifications.
// Authentication reuses the session cookie; no query-param identity.
func (h *NotificationHandler) Serve(c *websocket.Conn) {
	tokenStr := c.Cookies(middleware.AuthCookie)
	if tokenStr == "" {
		log.Warn("ws: missing session cookie")
		c.Close()
		return
	}

	claims, err := utils.ParseJWT(h.JWTSecret, tokenStr)
	if err != nil {
		log.Warnf("ws: invalid session token: %v", err)
		c.Close()
		return
	}

	userUUID, err := uuid.Parse(claims.UserID)
	if err != nil {
		log.Warnf("ws: invalid user id in token: %v", err)
		c.Close()
		return
	}

	client := &realtime.Client{
		ID:     uuid.New().String(),
		UserID: userUUID,
		Conn:   realtime.NewWebSocketConn(c),
		Send:   make(chan []byte, 256),
	}

	h.Hub.RegisterClient(client)
	defer h.Hub.UnregisterClient(client)

	go func() {
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Errorf("ws write error: %v", err)
				return
			}
		}
	}()

	// read loop keeps the connection alive and drains pings
	for {
		var payload map[string]interface{}
		if err := c.ReadJSON(&payload); err != nil {
			break
		}
	}
}
