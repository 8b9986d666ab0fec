package websocket

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub tracks live connections keyed by user id. A user may hold several
// connections (multiple tabs/devices); SendToUser fans out to all of them.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	logger     *zap.Logger
	mu         sync.RWMutex
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for _, conns := range h.clients {
				for client := range conns {
					client.Close()
				}
			}
			h.clients = make(map[uuid.UUID]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				conns, ok := h.clients[client.userID]
				if !ok {
					conns = make(map[*Client]bool)
					h.clients[client.userID] = conns
				}
				conns[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if !h.stopped {
				if conns, ok := h.clients[client.userID]; ok {
					if _, ok := conns[client]; ok {
						delete(conns, client)
						client.Close()
						if len(conns) == 0 {
							delete(h.clients, client.userID)
						}
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop gracefully shuts down the hub and closes every connection. It blocks
// until Run() has exited.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	close(h.stop)
	<-h.done
}

// SendToUser pushes an event to every live connection of the user. A slow
// connection's full buffer drops the event for that connection only; the
// durable notification row is the source of truth.
func (h *Hub) SendToUser(userID uuid.UUID, event []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- event:
		default:
			h.logger.Warn("websocket send buffer full, dropping event",
				zap.String("user_id", userID.String()))
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister safely unregisters a client, handling the case where the hub
// may already be stopped.
func (h *Hub) Unregister(client *Client) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return
	}

	select {
	case h.unregister <- client:
	default:
	}
}
