package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/catering-app/utils"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// client is one registered socket. Only its writePump writes to conn.
type client struct {
	conn   *websocket.Conn
	userID uint
	send   chan []byte
}

// Hub keeps the live notification sockets of every user. Notify only queues
// messages; each socket is written by its own goroutine.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

func New() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

func (h *Hub) Register(conn *websocket.Conn, userID uint) {
	c := &client{conn: conn, userID: userID, send: make(chan []byte, sendBuffer)}

	h.mutex.Lock()
	h.clients[conn] = c
	h.mutex.Unlock()

	go h.writePump(c)
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if c, ok := h.clients[conn]; ok {
		h.drop(c)
	}
}

// drop removes the client and closes its socket. The caller holds the mutex.
func (h *Hub) drop(c *client) {
	delete(h.clients, c.conn)
	close(c.send)
	c.conn.Close()
}

func (h *Hub) writePump(c *client) {
	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			utils.ErrorLogger.Errorf("Error sending notification to user %d: %v", c.userID, err)
			h.Unregister(c.conn)
			return
		}
	}
}

// Connected returns the number of open sockets of the user.
func (h *Hub) Connected(userID uint) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	n := 0
	for _, c := range h.clients {
		if c.userID == userID {
			n++
		}
	}
	return n
}

// Notify queues the event for every socket of the user. A socket whose queue is
// full is dropped.
func (h *Hub) Notify(userID uint, event string, data interface{}) {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling %s notification: %v", event, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	queued := 0
	for _, c := range h.clients {
		if c.userID != userID {
			continue
		}
		select {
		case c.send <- payload:
			queued++
		default:
			utils.ErrorLogger.Errorf("Dropping slow socket of user %d on %s", userID, event)
			h.drop(c)
		}
	}
	if queued > 0 {
		utils.InfoLogger.Debugf("Queued %s for %d sockets of user %d", event, queued, userID)
	}
}
