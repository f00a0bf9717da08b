package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"go-restaurant-ordering/models"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Notifier publishes board events.
type Notifier interface {
	NotifyNewOrder(order models.Order)
	NotifyOrderUpdated(order models.Order)
}

// Hub keeps the connected kitchen boards and pushes events to all of them.
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader
	logger   *log.Logger
}

// NewHub accepts connections from allowedOrigins, or from anywhere when the
// list is empty.
func NewHub(allowedOrigins []string, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// ServeHTTP upgrades the request and holds the connection until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Println("Error during connection upgrade:", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) NotifyNewOrder(order models.Order) {
	h.Broadcast(models.BoardEvent{Event: models.EventNewOrder, Payload: order})
}

func (h *Hub) NotifyOrderUpdated(order models.Order) {
	h.Broadcast(models.BoardEvent{Event: models.EventOrderUpdated, Payload: order})
}

// Broadcast writes the event to every client, dropping the ones that fail.
func (h *Hub) Broadcast(event models.BoardEvent) {
	messageBytes, err := json.Marshal(event)
	if err != nil {
		h.logger.Println("Error marshaling message:", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		_ = client.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.WriteMessage(websocket.TextMessage, messageBytes); err != nil {
			h.logger.Println("Error writing message:", err)
			client.Close()
			delete(h.clients, client)
		}
	}
}
