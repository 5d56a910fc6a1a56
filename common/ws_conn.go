package common

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSConn struct {
	*websocket.Conn
}

func NewWSConn(w http.ResponseWriter, r *http.Request) (*WSConn, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return &WSConn{conn}, nil
}

func (ws *WSConn) WriteMessage(data []byte) error {
	ws.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.Conn.WriteMessage(websocket.TextMessage, data)
}
