package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"dmchat/internal/app/chat"
	"dmchat/internal/pkg/logx"
)

// HandleWebSocket upgrades the request and runs the session until it closes.
// The identity is taken from the userId query parameter as announced by the
// client. A missing or malformed value opens an anonymous session that gets
// presence broadcasts but never appears in them.
func HandleWebSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("userId")
		if userID != "" {
			if _, err := uuid.Parse(userID); err != nil {
				logx.Warn("WebSocket userId malformed, opening anonymous session", "user_id", userID)
				userID = ""
			}
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Hub, conn, userID)

		if !deps.Hub.Connect(client) {
			logx.Warn("WebSocket rejected: server shutting down")
			_ = conn.Close()
			return
		}

		go client.WritePump()

		logx.Info("WebSocket connection established", "user_id", userID)

		client.ReadPump()
	}
}
