// internal/handlers/websocket.go
package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/shiftsync/shiftsync_backend/internal/services/realtime"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler upgrades the connection and registers it as a viewer.
// The channel is push-only: inbound frames are drained and ignored.
func WebSocketHandler(hub *realtime.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Print("Upgrade error:", err)
			return
		}

		client := &realtime.Client{
			Conn: conn,
			Send: make(chan []byte, 256),
		}

		hub.Register(client)

		go hub.ReadPump(client)
		go hub.WritePump(client)
	}
}
