package server

import (
	"encoding/json"
	"sync"

	"inkchat/internal/store"
	"inkchat/pkg/logger"
)

// InvalidationSignal is what clients receive: which collection changed and
// how. Clients refetch; no document payloads travel over the socket.
type InvalidationSignal struct {
	Type       string `json:"type"`
	Collection string `json:"collection"`
	Action     string `json:"action"`
}

// Hub maintains the set of connected clients and fans invalidation signals
// out to them.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	stopChan   chan struct{}
	stopOnce   sync.Once
	log        *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		stopChan:   make(chan struct{}),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true
			h.log.Infof("ws: client connected for user %s", client.userID)

		case client := <-h.unregister:
			if conns, ok := h.clients[client.userID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.send)
					if len(conns) == 0 {
						delete(h.clients, client.userID)
					}
				}
			}

		case payload := <-h.broadcast:
			for _, conns := range h.clients {
				for client := range conns {
					select {
					case client.send <- payload:
					default:
						// Slow consumer; drop it rather than block the hub.
						delete(conns, client)
						close(client.send)
					}
				}
			}

		case <-h.stopChan:
			for _, conns := range h.clients {
				for client := range conns {
					close(client.send)
				}
			}
			h.clients = make(map[string]map[*Client]bool)
			return
		}
	}
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stopChan) })
}

// BroadcastInvalidation is wired as the bridge's notify hook.
func (h *Hub) BroadcastInvalidation(collection string, action store.Action) {
	payload, err := json.Marshal(InvalidationSignal{
		Type:       "invalidate",
		Collection: collection,
		Action:     string(action),
	})
	if err != nil {
		h.log.Errorf("ws: marshal invalidation signal: %v", err)
		return
	}
	select {
	case h.broadcast <- payload:
	case <-h.stopChan:
	}
}
