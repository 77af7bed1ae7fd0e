package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"bacbo-analyst-backend/internal/models"
	"bacbo-analyst-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FeedHandler is the operator transport: inbound events arrive as JSON
// frames over a websocket and notification intents stream back on the
// same connection. Out-of-band notices (payment webhooks) reach connected
// operators through Deliver.
type FeedHandler struct {
	machine *services.ConversationStateMachine
	limiter services.RateLimiter

	mu      sync.Mutex
	clients map[int64]*websocket.Conn

	// Serializes writes; gorilla/websocket forbids concurrent writers and
	// Deliver runs outside the read loop goroutine.
	writeMu sync.Mutex
}

func (h *FeedHandler) writeJSON(conn *websocket.Conn, v interface{}) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	return conn.WriteJSON(v)
}

func NewFeedHandler(machine *services.ConversationStateMachine, limiter services.RateLimiter) *FeedHandler {
	return &FeedHandler{
		machine: machine,
		limiter: limiter,
		clients: make(map[int64]*websocket.Conn),
	}
}

func (h *FeedHandler) HandleFeed(c *gin.Context) {
	userID := c.GetInt64("user_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	h.mu.Lock()
	if old, ok := h.clients[userID]; ok {
		old.Close()
	}
	h.clients[userID] = conn
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		if h.clients[userID] == conn {
			delete(h.clients, userID)
		}
		h.mu.Unlock()
		conn.Close()
	}()

	for {
		var event models.Event
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Feed read error for user %d: %v", userID, err)
			}
			return
		}

		// The connection is bound to one conversation; a frame cannot
		// inject events for another user.
		event.UserID = userID

		if h.limiter != nil {
			allowed, err := h.limiter.CheckRateLimit(c.Request.Context(), userID, "event",
				services.DefaultRateLimitEvents, time.Minute)
			if err != nil || !allowed {
				// Fail closed: if the limiter cannot answer, the event is
				// dropped rather than processed unmetered.
				if err != nil {
					log.Printf("Rate limit check failed for user %d: %v", userID, err)
				}
				continue
			}
		}

		notifications, err := h.machine.Handle(c.Request.Context(), event)
		if err != nil {
			log.Printf("Event handling failed for user %d: %v", userID, err)
		}

		for _, n := range notifications {
			if err := h.writeJSON(conn, n); err != nil {
				log.Printf("Feed write error for user %d: %v", userID, err)
				return
			}
		}
	}
}

// Deliver implements services.Notifier.
func (h *FeedHandler) Deliver(notification models.Notification) {
	h.mu.Lock()
	conn, ok := h.clients[notification.UserID]
	h.mu.Unlock()

	if !ok {
		return
	}

	if err := h.writeJSON(conn, notification); err != nil {
		log.Printf("Push delivery failed for user %d: %v", notification.UserID, err)
	}
}
