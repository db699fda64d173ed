package service

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"lockout_web/internal/models"
)

// Notifier fans room events out to connected observers. The poller and the
// room service publish through it; tests substitute a recording fake.
type Notifier interface {
	RoomUpdated(room *models.Room)
	ProblemSolved(code string, problem *models.RoomProblem)
}

// Client is one WebSocket connection. It belongs to at most one room
// channel at a time, chosen by the join-room event it sends.
type Client struct {
	Conn     *websocket.Conn
	RoomCode string
	SendChan chan *models.Event
}

// WebSocketManager tracks connections per room code and pushes events to
// every observer of a room. All writes go through the HTTP API; the only
// inbound event is join-room.
type WebSocketManager struct {
	clients    map[string]map[*Client]bool
	clientsMux sync.RWMutex

	// Snapshot loads the current room for the join-room reply.
	// Wired after construction to avoid a cycle with RoomService.
	Snapshot func(code string) (*models.Room, error)
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients: make(map[string]map[*Client]bool),
	}
}

// HandleConnection owns the connection until it closes.
func (m *WebSocketManager) HandleConnection(conn *websocket.Conn) {
	client := &Client{
		Conn:     conn,
		SendChan: make(chan *models.Event, 256),
	}

	defer func() {
		m.removeClient(client)
		conn.Close()
		close(client.SendChan)
	}()

	go m.writePump(client)
	m.readPump(client)
}

func (m *WebSocketManager) readPump(client *Client) {
	client.Conn.SetReadLimit(4096)
	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket unexpected close error: %v", err)
			}
			break
		}

		var event models.Event
		if err := json.Unmarshal(message, &event); err != nil {
			log.Printf("websocket message parse error: %v", err)
			continue
		}

		// join-room is the only client event; everything else is dropped.
		if event.Type == "join-room" && event.Code != "" {
			m.joinRoom(client, event.Code)
		}
	}
}

// joinRoom subscribes the client to a room channel and immediately replies
// with the current snapshot.
func (m *WebSocketManager) joinRoom(client *Client, code string) {
	m.clientsMux.Lock()
	if client.RoomCode != "" {
		if clients, ok := m.clients[client.RoomCode]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(m.clients, client.RoomCode)
			}
		}
	}
	client.RoomCode = code
	if m.clients[code] == nil {
		m.clients[code] = make(map[*Client]bool)
	}
	m.clients[code][client] = true
	m.clientsMux.Unlock()

	if m.Snapshot == nil {
		return
	}
	room, err := m.Snapshot(code)
	if err != nil {
		log.Printf("websocket join-room %s: %v", code, err)
		return
	}
	select {
	case client.SendChan <- models.NewRoomUpdate(room):
	default:
	}
}

func (m *WebSocketManager) writePump(client *Client) {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.SendChan:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// RoomUpdated broadcasts a full room snapshot to the room's channel.
func (m *WebSocketManager) RoomUpdated(room *models.Room) {
	m.broadcast(room.Code, models.NewRoomUpdate(room))
}

// ProblemSolved broadcasts a single locked problem to the room's channel.
func (m *WebSocketManager) ProblemSolved(code string, problem *models.RoomProblem) {
	m.broadcast(code, models.NewProblemSolved(code, problem))
}

func (m *WebSocketManager) broadcast(code string, event *models.Event) {
	m.clientsMux.RLock()
	clients := make([]*Client, 0, len(m.clients[code]))
	for client := range m.clients[code] {
		clients = append(clients, client)
	}
	m.clientsMux.RUnlock()

	for _, client := range clients {
		select {
		case client.SendChan <- event:
		default:
			// Queue full: the observer stopped draining, drop it.
			m.removeClient(client)
			client.Conn.Close()
		}
	}
}

func (m *WebSocketManager) removeClient(client *Client) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	if clients, ok := m.clients[client.RoomCode]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(m.clients, client.RoomCode)
		}
	}
}

// RoomObservers reports how many clients watch the given room.
func (m *WebSocketManager) RoomObservers(code string) int {
	m.clientsMux.RLock()
	defer m.clientsMux.RUnlock()

	return len(m.clients[code])
}
