package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/catering-app/hub"
	"github.com/yeremiapane/catering-app/utils"
)

type NotificationController struct {
	Hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewNotificationController accepts websocket upgrades from the allowed origins; an
// empty list or "*" accepts any origin.
func NewNotificationController(h *hub.Hub, allowedOrigins []string) *NotificationController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &NotificationController{
		Hub: h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Stream registers the socket for the authenticated user until the client disconnects
func (nc *NotificationController) Stream(c *gin.Context) {
	userID := currentUser(c)
	if userID == 0 {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := nc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Errorf("Websocket upgrade failed: %v", err)
		return
	}
	nc.Hub.Register(ws, userID)

	// the stream is one-way; reads only detect disconnects
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	nc.Hub.Unregister(ws)
}
