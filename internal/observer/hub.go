// Package observer is the read-only REST and websocket surface over a
// running hypergraph: the Visualizer's read path and the Observer's
// structured-event sink from spec.md §6, neither of which the core
// depends on or blocks for.
package observer

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/rawblock/molten/internal/molten"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local dashboard only; not exposed publicly
	},
}

// Hub maintains the set of active websocket clients and broadcasts
// the hypergraph's structured events to all of them.
type Hub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	mutex     sync.Mutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		broadcast: make(chan []byte, 256),
		clients:   make(map[*websocket.Conn]bool),
	}
}

// Run drains the broadcast channel and fans each message out to every
// connected client, dropping clients whose write fails.
func (h *Hub) Run() {
	for message := range h.broadcast {
		h.mutex.Lock()
		for client := range h.clients {
			_ = client.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("observer: websocket write error: %v", err)
				client.Close()
				delete(h.clients, client)
			}
		}
		h.mutex.Unlock()
	}
}

// Subscribe upgrades an incoming HTTP request to a websocket
// connection and registers it as a broadcast recipient.
func (h *Hub) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("observer: failed to upgrade websocket: %v", err)
		return
	}

	h.mutex.Lock()
	h.clients[conn] = true
	h.mutex.Unlock()

	log.Printf("observer: client connected, total=%d", len(h.clients))

	go func() {
		defer func() {
			h.mutex.Lock()
			delete(h.clients, conn)
			h.mutex.Unlock()
			conn.Close()
			log.Printf("observer: client disconnected, total=%d", len(h.clients))
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("observer: websocket error: %v", err)
				}
				break
			}
		}
	}()
}

// Broadcast sends raw bytes to every connected client.
func (h *Hub) Broadcast(data []byte) {
	h.broadcast <- data
}

// Pump reads events off the hypergraph's event channel, marshals each
// to JSON, and broadcasts it. Intended to run as its own goroutine for
// the lifetime of the process; returns when events is closed.
func (h *Hub) Pump(events <-chan molten.Event) {
	for e := range events {
		data, err := json.Marshal(e)
		if err != nil {
			log.Printf("observer: failed to marshal event: %v", err)
			continue
		}
		h.Broadcast(data)
	}
}
