package ws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"pedeai/entity"
	"pedeai/events"
	"pedeai/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// OrderHub streams order events to connected clients. Customers receive
// events for their own orders; admins receive every event.
type OrderHub struct {
	clients    map[uint]map[*websocket.Conn]bool // userID -> set of conns
	admins     map[*websocket.Conn]bool
	broadcast  chan events.OrderEvent
	register   chan Subscription
	unregister chan Subscription
	done       chan struct{}
	mu         sync.Mutex
	log        *slog.Logger
}

// Subscription is one websocket connection of one user.
type Subscription struct {
	Conn   *websocket.Conn
	UserID uint
	Admin  bool
}

var _ events.Publisher = (*OrderHub)(nil)

func NewOrderHub(logger *slog.Logger) *OrderHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderHub{
		clients:    make(map[uint]map[*websocket.Conn]bool),
		admins:     make(map[*websocket.Conn]bool),
		broadcast:  make(chan events.OrderEvent, 64),
		register:   make(chan Subscription),
		unregister: make(chan Subscription),
		done:       make(chan struct{}),
		log:        logger.With("component", "ws"),
	}
}

// Run serves register, unregister and broadcast until ctx ends, then
// closes every connection.
func (h *OrderHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			if sub.Admin {
				h.admins[sub.Conn] = true
			} else {
				if h.clients[sub.UserID] == nil {
					h.clients[sub.UserID] = make(map[*websocket.Conn]bool)
				}
				h.clients[sub.UserID][sub.Conn] = true
			}
			h.mu.Unlock()

		case sub := <-h.unregister:
			h.mu.Lock()
			h.drop(sub)
			h.mu.Unlock()

		case e := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients[e.UserID] {
				h.send(Subscription{Conn: conn, UserID: e.UserID}, e)
			}
			for conn := range h.admins {
				h.send(Subscription{Conn: conn, Admin: true}, e)
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for _, set := range h.clients {
				for conn := range set {
					conn.Close()
				}
			}
			for conn := range h.admins {
				conn.Close()
			}
			h.clients = make(map[uint]map[*websocket.Conn]bool)
			h.admins = make(map[*websocket.Conn]bool)
			h.mu.Unlock()
			return
		}
	}
}

// Publish queues e for delivery. Once Run has returned events are dropped.
func (h *OrderHub) Publish(ctx context.Context, e events.OrderEvent) error {
	select {
	case h.broadcast <- e:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Connections reports how many sockets the user has open.
func (h *OrderHub) Connections(userID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

func (h *OrderHub) AdminConnections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.admins)
}

func (h *OrderHub) send(sub Subscription, e events.OrderEvent) {
	_ = sub.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := sub.Conn.WriteJSON(e); err != nil {
		h.log.Warn("ws write error", "user_id", sub.UserID, "err", err)
		h.drop(sub)
	}
}

// drop must be called with mu held.
func (h *OrderHub) drop(sub Subscription) {
	if sub.Admin {
		if h.admins[sub.Conn] {
			delete(h.admins, sub.Conn)
			sub.Conn.Close()
		}
		return
	}
	if h.clients[sub.UserID][sub.Conn] {
		delete(h.clients[sub.UserID], sub.Conn)
		if len(h.clients[sub.UserID]) == 0 {
			delete(h.clients, sub.UserID)
		}
		sub.Conn.Close()
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /ws/orders
func (h *OrderHub) HandleWebSocket(c *gin.Context) {
	userID := utils.CurrentUserID(c)
	if userID == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "UNAUTHORIZED", "message": "unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws upgrade error", "err", err)
		return
	}

	sub := Subscription{Conn: conn, UserID: userID, Admin: utils.CurrentRole(c) == entity.RoleAdmin}
	select {
	case h.register <- sub:
	case <-h.done:
		conn.Close()
		return
	}

	go h.listen(sub)
}

// listen only drains the socket so close frames are noticed; clients do not
// send anything meaningful.
func (h *OrderHub) listen(sub Subscription) {
	defer func() {
		select {
		case h.unregister <- sub:
		case <-h.done:
		}
	}()
	for {
		if _, _, err := sub.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
