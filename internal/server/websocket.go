package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// wsClient wraps one connection with a write lock; gorilla connections do
// not allow concurrent writers.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// wsHub tracks live connections by connection id and, per room, the
// connection ids that receive its broadcasts. The member lists are refreshed
// by the server on every roster-affecting mutation, so a removed player
// stops receiving room traffic with the roster change that removed it.
type wsHub struct {
	mu    sync.Mutex
	conns map[string]*wsClient
	rooms map[string][]string
}

func newWSHub() *wsHub {
	return &wsHub{
		conns: make(map[string]*wsClient),
		rooms: make(map[string][]string),
	}
}

func (h *wsHub) Add(connID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[connID] = &wsClient{conn: conn}
}

func (h *wsHub) Remove(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.conns[connID]; ok {
		_ = client.conn.Close()
		delete(h.conns, connID)
	}
}

func (h *wsHub) setMembers(roomCode string, connIDs []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rooms[roomCode] = append([]string(nil), connIDs...)
}

func (h *wsHub) dropRoom(roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, roomCode)
}

func (h *wsHub) memberIDs(roomCode string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.rooms[roomCode]...)
}

func (h *wsHub) get(connID string) (*wsClient, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.conns[connID]
	return client, ok
}

func (h *wsHub) Send(connID, event string, payload any) {
	client, ok := h.get(connID)
	if !ok {
		return
	}
	data, err := json.Marshal(map[string]any{"type": event, "payload": payload})
	if err != nil {
		return
	}
	if err := client.write(data); err != nil {
		h.Remove(connID)
	}
}

func (h *wsHub) Broadcast(roomCode, event string, payload any) {
	data, err := json.Marshal(map[string]any{"type": event, "payload": payload})
	if err != nil {
		return
	}
	for _, connID := range h.memberIDs(roomCode) {
		client, ok := h.get(connID)
		if !ok {
			continue
		}
		if err := client.write(data); err != nil {
			h.Remove(connID)
		}
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	connID := uuid.NewString()
	log.Printf("ws connected conn_id=%s remote=%s", connID, r.RemoteAddr)
	s.hub.Add(connID, conn)
	go s.readWS(connID, conn)
}

func (s *Server) readWS(connID string, conn *websocket.Conn) {
	defer func() {
		s.hub.Remove(connID)
		s.Disconnect(connID)
	}()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("ws disconnected conn_id=%s error=%v", connID, err)
			return
		}
		s.HandleEvent(connID, data)
	}
}

// SendMessage relays chat to the sender's room. No room state changes, but
// the relay still runs through apply so chat keeps its place in the room's
// event order.
func (s *Server) SendMessage(connID, roomCode, user, message string) {
	s.apply(roomCode, func(r *Room) []outbound {
		if r.findPlayer(connID) == nil {
			return nil
		}
		return []outbound{bcast(evChatMessage, map[string]any{
			"user":    user,
			"message": message,
		})}
	})
}
