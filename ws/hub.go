package ws

import (
	"context"
	"encoding/json"
	"sync"

	"reminder-board/common"

	"go.uber.org/zap"
)

type Client struct {
	Conn *common.WSConn
	Send chan []byte
}

// Hub keeps the open pages and fans task events out to all of them.
type Hub struct {
	Clients    sync.Map
	Register   chan *Client
	Unregister chan *Client
	broadcast  chan common.WSMessage
	done       chan struct{}
	Logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan common.WSMessage, 64),
		done:       make(chan struct{}),
		Logger:     logger,
	}
}

// Broadcast queues msg for every client. It drops the message when the hub is backed up.
func (h *Hub) Broadcast(msg common.WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.Logger.Warn("websocket hub backed up, dropping message", zap.String("event", msg.Event))
	}
}

func (h *Hub) Count() int {
	n := 0
	h.Clients.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Run serves registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.Clients.Range(func(key, _ any) bool {
				h.Clients.Delete(key)
				close(key.(*Client).Send)
				return true
			})
			return
		case client := <-h.Register:
			h.Clients.Store(client, struct{}{})
		case client := <-h.Unregister:
			if _, ok := h.Clients.LoadAndDelete(client); ok {
				close(client.Send)
			}
		case msg := <-h.broadcast:
			payload, err := json.Marshal(msg)
			if err != nil {
				h.Logger.Error("encode websocket message", zap.Error(err))
				continue
			}
			h.Clients.Range(func(key, _ any) bool {
				client := key.(*Client)
				select {
				case client.Send <- payload:
				default:
					// slow client
					h.Clients.Delete(client)
					close(client.Send)
				}
				return true
			})
		}
	}
}

func (h *Hub) register(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}
