package websocket

import (
	"time"

	"github.com/abotl/abotl-web/internal/service"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// A progress page pings well within this; silence means it is gone.
	readWait = 2 * time.Minute
)

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// WriteProgress sends an upload status as a progress event.
func WriteProgress(conn *websocket.Conn, st service.UploadStatus) error {
	return WriteTyped(conn, ProgressResponse{
		Event:    EventProgress,
		State:    st.State,
		Progress: st.Progress,
		Message:  st.Message,
	})
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func WriteError(conn *websocket.Conn, errMsg string) error {
	return WriteTyped(conn, ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// ReadJSON reads and decodes a message into the provided structure.
// It sets a read deadline.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(readWait))
	return conn.ReadJSON(v)
}
