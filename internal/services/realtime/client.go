// internal/services/realtime/client.go
package realtime

import "github.com/gorilla/websocket"

// Client is one live viewer connection. Membership only: it owns no
// shift data and is discarded on disconnect.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}
