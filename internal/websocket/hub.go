package websocket

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"studymate-backend/internal/middleware"
	"studymate-backend/internal/services"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Subscriber streams the payloads published on channel until ctx ends.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan string, error)
}

type RedisSubscriber struct {
	client *redis.Client
}

func NewRedisSubscriber(client *redis.Client) *RedisSubscriber {
	return &RedisSubscriber{client: client}
}

func (s *RedisSubscriber) Subscribe(ctx context.Context, channel string) (<-chan string, error) {
	pubsub := s.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// client serialises writes; gorilla connections allow one concurrent writer.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub relays each user's update channel to all of their open sockets. The
// subscription lives while the user has at least one connection.
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*client
	cancelFuncs map[string]context.CancelFunc
	auth        middleware.Authenticator
	subscriber  Subscriber
	logger      *log.Logger
}

func NewHub(auth middleware.Authenticator, subscriber Subscriber, logger *log.Logger) *Hub {
	return &Hub{
		connections: make(map[string][]*client),
		cancelFuncs: make(map[string]context.CancelFunc),
		auth:        auth,
		subscriber:  subscriber,
		logger:      logger,
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}

	user, err := h.auth.Authenticate(r.Context(), token)
	if err != nil {
		if _, ok := services.AsError(err); !ok {
			h.logger.Error("websocket session lookup failed", "err", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := &client{conn: conn}
	h.registerConnection(user.ID, c)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(user.ID, c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) registerConnection(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[userID] = append(h.connections[userID], c)

	// Start pub/sub subscription if this is the first connection for this user
	if len(h.connections[userID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[userID] = cancel
		go h.relay(ctx, userID)
	}

	h.logger.Debug("websocket connected", "user_id", userID, "connections", len(h.connections[userID]))
}

func (h *Hub) unregisterConnection(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.conn.Close()

	conns := h.connections[userID]
	for i, existing := range conns {
		if existing == c {
			h.connections[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	if len(h.connections[userID]) == 0 {
		delete(h.connections, userID)
		if cancel, ok := h.cancelFuncs[userID]; ok {
			cancel()
			delete(h.cancelFuncs, userID)
		}
	}

	h.logger.Debug("websocket disconnected", "user_id", userID)
}

func (h *Hub) relay(ctx context.Context, userID string) {
	messages, err := h.subscriber.Subscribe(ctx, services.UserChannel(userID))
	if err != nil {
		h.logger.Error("websocket relay unavailable", "user_id", userID, "err", err)
		h.dropUser(ctx, userID)
		return
	}

	for payload := range messages {
		h.broadcast(userID, []byte(payload))
	}
	h.dropUser(ctx, userID)
}

// dropUser closes userID's sockets once their subscription is gone so
// clients reconnect and the next connection subscribes again. It is a no-op
// when ctx was cancelled, meaning the subscription was already torn down.
func (h *Hub) dropUser(ctx context.Context, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	for _, c := range h.connections[userID] {
		c.conn.Close()
	}
	delete(h.connections, userID)
	if cancel, ok := h.cancelFuncs[userID]; ok {
		cancel()
		delete(h.cancelFuncs, userID)
	}

	h.logger.Warn("websocket connections dropped after relay ended", "user_id", userID)
}

func (h *Hub) broadcast(userID string, data []byte) {
	h.mu.RLock()
	clients := append([]*client(nil), h.connections[userID]...)
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(data); err != nil {
			h.logger.Debug("websocket write failed", "user_id", userID, "err", err)
		}
	}
}

// ConnectionCount reports open sockets for userID.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID])
}

// Close drops every connection and subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, conns := range h.connections {
		for _, c := range conns {
			c.conn.Close()
		}
		if cancel, ok := h.cancelFuncs[userID]; ok {
			cancel()
		}
	}
	h.connections = make(map[string][]*client)
	h.cancelFuncs = make(map[string]context.CancelFunc)
}
