package ws

import (
	"net/http"

	"reminder-board/common"

	"go.uber.org/zap"
)

func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := common.NewWSConn(w, r)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	if !h.register(client) {
		conn.Close()
		return
	}

	go h.read(client)
	go h.write(client)
}

func (h *Hub) read(c *Client) {
	defer func() {
		h.unregister(c)
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			h.Logger.Debug("websocket read ended", zap.Error(err))
			break
		}
	}
}

func (h *Hub) write(c *Client) {
	defer c.Conn.Close()
	for msg := range c.Send {
		if err := c.Conn.WriteMessage(msg); err != nil {
			h.Logger.Debug("websocket write failed", zap.Error(err))
			break
		}
	}
}
