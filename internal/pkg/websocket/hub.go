package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yigit/schoolchat/internal/app/models"
)

// Config tunes the realtime core
type Config struct {
	// Outbound frames buffered per connection before it is considered slow
	SendBuffer int
	// Maximum inbound frame size in bytes
	MaxMessageSize int64
	// Concurrent enqueue workers per fan-out
	FanoutWorkers int
	// Inbound events per second per connection, <= 0 disables limiting
	RateLimit float64
	RateBurst int
	// Browser origins allowed to connect, "*" allows all
	AllowedOrigins []string
}

func (c Config) withDefaults() Config {
	if c.SendBuffer <= 0 {
		c.SendBuffer = 256
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 64 * 1024
	}
	if c.FanoutWorkers <= 0 {
		c.FanoutWorkers = 16
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 1
	}
	return c
}

// Dependencies are the external collaborators of the hub
type Dependencies struct {
	Directory Directory
	Store     MessageStore
	Presence  PresenceStore
}

// Stats is a point-in-time snapshot of the hub
type Stats struct {
	Clients int `json:"clients"`
	Users   int `json:"users"`
	Rooms   int `json:"rooms"`
}

// Hub owns the connected clients and the room table and drives each
// connection from admission to disconnect.
type Hub struct {
	cfg    Config
	rooms  *Rooms
	fanout *fanout

	mu      sync.RWMutex
	clients map[*Client]struct{}

	membership *MembershipManager
	presence   *PresenceTracker
	router     *MessageRouter

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(cfg Config, deps Dependencies, logger zerolog.Logger) *Hub {
	cfg = cfg.withDefaults()
	h := &Hub{
		cfg:     cfg,
		rooms:   NewRooms(),
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
	h.fanout = &fanout{workers: cfg.FanoutWorkers, logger: logger}
	h.membership = NewMembershipManager(h.rooms, deps.Directory, logger)
	h.presence = NewPresenceTracker(deps.Presence, h, logger)
	h.router = NewMessageRouter(deps.Store, h.rooms, h.fanout, logger)
	return h
}

func (h *Hub) newLimiter() *rate.Limiter {
	if h.cfg.RateLimit <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(h.cfg.RateLimit), h.cfg.RateBurst)
}

// Admit registers an authenticated client, joins its rooms and marks it online
func (h *Hub) Admit(ctx context.Context, client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	rooms := h.membership.AutoJoin(ctx, client)
	h.presence.MarkOnline(ctx, client.identity.UserID)

	client.logger.Info().
		Str("role", string(client.identity.Role)).
		Int("rooms", len(rooms)).
		Msg("Client admitted")
}

// Disconnect removes client from the hub and marks its user offline.
// Only the first call for a client has any effect.
func (h *Hub) Disconnect(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	h.mu.Unlock()
	if !ok {
		return
	}

	client.close()
	h.rooms.LeaveAll(client)

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()
	h.presence.MarkOffline(ctx, client.identity.UserID)

	client.logger.Info().Msg("Client disconnected")
}

// BroadcastAll enqueues frame on every connected client and returns how
// many accepted it
func (h *Hub) BroadcastAll(frame []byte) int {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	return h.fanout.deliver(clients, frame)
}

// Stats returns the current client, user and room counts
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	users := make(map[string]struct{})
	for client := range h.clients {
		users[client.identity.UserID] = struct{}{}
	}
	stats := Stats{Clients: len(h.clients), Users: len(users)}
	h.mu.RUnlock()

	stats.Rooms = h.rooms.Count()
	return stats
}

// NewClient creates a client for conn. It is not registered until Admit.
func (h *Hub) NewClient(conn *websocket.Conn, identity models.Identity) *Client {
	return newClient(h, conn, identity)
}

// Shutdown asks every client to close and waits until they have all
// disconnected or ctx is done
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.RLock()
	for client := range h.clients {
		client.close()
	}
	h.mu.RUnlock()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		h.mu.RLock()
		remaining := len(h.clients)
		h.mu.RUnlock()
		if remaining == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			h.logger.Warn().Int("remaining", remaining).Msg("Hub shutdown timed out")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// fanout enqueues one frame on many clients with bounded concurrency
type fanout struct {
	workers int
	logger  zerolog.Logger
}

func (f *fanout) deliver(clients []*Client, frame []byte) int {
	var delivered atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(f.workers)
	for _, client := range clients {
		g.Go(func() error {
			if err := client.enqueue(frame); err != nil {
				f.logger.Debug().Err(err).Str("connID", client.id).Msg("Frame not delivered")
				return nil
			}
			delivered.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return int(delivered.Load())
}
