package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/zzzzzahd/draft-play-interno/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin,
		// чтобы разрешать подключения только с доверенных доменов.
		return true
	},
}

type WebSocketHandler struct {
	hub *engine.Hub
}

func NewWebSocketHandler(hub *engine.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWs подключает клиента к комнате баба: /ws/babas/{babaID}.
// Через комнату уходят события подтверждений, жеребьёвки и счёта.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	babaID, err := readIDParam(r, "babaID")
	if err != nil {
		http.Error(w, "invalid babaID", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP-ошибку клиенту.
		log.Printf("failed to upgrade connection for baba %d: %v", babaID, err)
		return
	}

	client := &engine.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: engine.RoomForBaba(babaID),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
