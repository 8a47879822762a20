package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/Dias221467/Friends_Manager/internal/models"
	jwtutil "github.com/Dias221467/Friends_Manager/pkg/jwt"
	"github.com/Dias221467/Friends_Manager/pkg/logger"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	writeWait = 5 * time.Second
	// frames queued per connection before the client is dropped as too slow
	sendBuffer = 16
)

// WSMessage is the frame pushed to a connected client.
type WSMessage struct {
	Type         string               `json:"type"`
	Notification *models.Notification `json:"notification,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsClient owns one connection. Only writePump writes to conn.
type wsClient struct {
	conn      *websocket.Conn
	send      chan WSMessage
	done      chan struct{}
	closeOnce sync.Once
}

func newWSClient(conn *websocket.Conn, buffer int) *wsClient {
	return &wsClient{
		conn: conn,
		send: make(chan WSMessage, buffer),
		done: make(chan struct{}),
	}
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *wsClient) writePump() {
	defer c.close()
	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				logger.Log.WithError(err).Warn("WebSocket write failed")
				return
			}
		case <-c.done:
			return
		}
	}
}

// NotificationHub keeps one live websocket per user and pushes new notifications to it.
type NotificationHub struct {
	JWTSecret string

	mu      sync.Mutex
	clients map[primitive.ObjectID]*wsClient
}

func NewNotificationHub(jwtSecret string) *NotificationHub {
	return &NotificationHub{
		JWTSecret: jwtSecret,
		clients:   make(map[primitive.ObjectID]*wsClient),
	}
}

// Push queues notif for userID if connected and reports whether it was queued.
// It never waits on the network; a client whose queue is full is disconnected.
func (h *NotificationHub) Push(userID primitive.ObjectID, notif *models.Notification) bool {
	h.mu.Lock()
	client, ok := h.clients[userID]
	h.mu.Unlock()
	if !ok {
		return false
	}

	select {
	case <-client.done:
		h.remove(userID, client)
		return false
	default:
	}

	select {
	case client.send <- WSMessage{Type: "notification", Notification: notif}:
		return true
	default:
		logger.Log.Warnf("WebSocket queue full for %s, dropping connection", userID.Hex())
		h.remove(userID, client)
		client.close()
		return false
	}
}

// Connected reports whether userID has a live connection.
func (h *NotificationHub) Connected(userID primitive.ObjectID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.clients[userID]
	return ok
}

// add registers client and queues its greeting before any push can reach it.
func (h *NotificationHub) add(userID primitive.ObjectID, client *wsClient) {
	h.mu.Lock()
	old := h.clients[userID]
	h.clients[userID] = client
	client.send <- WSMessage{Type: "connected"}
	h.mu.Unlock()

	// a newer connection replaces the previous one
	if old != nil {
		old.close()
	}
}

func (h *NotificationHub) remove(userID primitive.ObjectID, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == client {
		delete(h.clients, userID)
	}
}

// ServeWS handles GET /ws/notifications?token=. Browsers cannot set headers
// on websocket requests, so the token travels in the query string.
func (h *NotificationHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		logger.Log.WithError(err).Warn("WebSocket auth failed")
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already wrote an error response
		logger.Log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := newWSClient(conn, sendBuffer)
	h.add(userID, client)
	go client.writePump()
	logger.Log.Infof("WebSocket connected: %s", userID.Hex())

	defer func() {
		h.remove(userID, client)
		client.close()
		logger.Log.Infof("WebSocket disconnected: %s", userID.Hex())
	}()

	// clients only listen; reading drives ping/pong and detects disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
