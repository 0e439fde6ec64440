// Package chat is the factory-floor broadcast channel. System events
// (stage completions, rework requests, new revisions) are pushed to every
// connected workstation over websocket. Delivery is fire-and-forget.
package chat

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/timeutil"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same-origin policy is enforced by the reverse proxy
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Hub struct {
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan models.SystemMessage
}

func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan models.SystemMessage, 64),
	}
	go h.broadcaster()
	return h
}

// PostSystemEvent queues a system message for broadcast. Never blocks:
// when the queue is full the message is dropped.
func (h *Hub) PostSystemEvent(msg models.SystemMessage) {
	if msg.At.IsZero() {
		msg.At = timeutil.Now()
	}
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("[Chat] Broadcast buffer full, dropping %s for %s", msg.Event, msg.OrderID)
	}
}

// HandleWS upgrades the connection and registers the client.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Chat] Upgrade failed: %v", err)
		return
	}

	h.clientsMux.Lock()
	h.clients[conn] = true
	h.clientsMux.Unlock()

	// Reader loop exists only to detect the close
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.clientsMux.Lock()
				delete(h.clients, conn)
				h.clientsMux.Unlock()
				conn.Close()
				return
			}
		}
	}()
}

func (h *Hub) broadcaster() {
	for msg := range h.broadcast {
		h.clientsMux.Lock()
		for client := range h.clients {
			if err := client.WriteJSON(msg); err != nil {
				client.Close()
				delete(h.clients, client)
			}
		}
		h.clientsMux.Unlock()
	}
}
