package live

import (
	"encoding/json"
	"log"
	"sync"
)

// Типы событий доски предложений.
const (
	EventOfferCreated   = "OFFER_CREATED"
	EventOfferAccepted  = "OFFER_ACCEPTED"
	EventOfferCancelled = "OFFER_CANCELLED"
	EventMatchCancelled = "MATCH_CANCELLED"
)

// Event — сообщение доски предложений. Room — вид спорта, на который
// подписан клиент.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	Room    string      `json:"room,omitempty"`
}

// Hub раздает события предложений подписанным дашбордам.
// Комната — вид спорта.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms map[string]map[*Client]bool
	mu    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.mu.Unlock()
			log.Printf("offer board: client joined room %s", client.Room)

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.Room]; ok {
				if _, okClient := clients[client]; okClient {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.Room)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("offer board: client left room %s", client.Room)
		}
	}
}

// BroadcastToRoom отправляет событие всем клиентам комнаты. Вызов без
// подписчиков — no-op.
func (h *Hub) BroadcastToRoom(room string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[room]
	if !ok {
		return
	}

	event.Room = room
	messageBytes, err := json.Marshal(event)
	if err != nil {
		log.Printf("offer board: failed to marshal event for room %s: %v", room, err)
		return
	}

	for client := range clients {
		client.Mu.Lock()
		if client.IsClosed {
			client.Mu.Unlock()
			continue
		}
		select {
		case client.Send <- messageBytes:
		default:
			// Канал клиента переполнен, событие пропускается.
			log.Printf("offer board: send channel full for room %s, dropping event", room)
		}
		client.Mu.Unlock()
	}
}
