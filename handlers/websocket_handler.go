package handlers

import (
	"log"
	"net/http"

	"github.com/TeamLinkup/matchmaking-system/live"
	"github.com/TeamLinkup/matchmaking-system/models"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin.
		return true
	},
}

type WebSocketHandler struct {
	hub *live.Hub
}

func NewWebSocketHandler(hub *live.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
	}
}

// ServeWs подписывает клиента на события предложений по виду спорта.
// Клиент подключается к /ws/offers/{sport}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	sport := models.Sport(chi.URLParam(r, "sport"))
	if !sport.Valid() {
		http.Error(w, "Unknown sport", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("offer board: failed to upgrade connection for sport %s: %v", sport, err)
		return
	}

	client := &live.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: string(sport),
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
