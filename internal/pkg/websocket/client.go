package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/yigit/schoolchat/internal/app/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Upper bound for a single event's external calls
	operationTimeout = 5 * time.Second
)

var (
	errClientClosed   = errors.New("client closed")
	errSendBufferFull = errors.New("send buffer full")
)

// Client is one authenticated connection. Its identity is fixed at admission.
type Client struct {
	id       string
	identity models.Identity
	hub      *Hub

	// nil for clients that are not backed by a network connection
	conn *websocket.Conn

	// Buffered channel of outbound frames. Never closed; done signals shutdown.
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	limiter *rate.Limiter
	logger  zerolog.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, identity models.Identity) *Client {
	id := uuid.NewString()
	return &Client{
		id:       id,
		identity: identity,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, hub.cfg.SendBuffer),
		done:     make(chan struct{}),
		limiter:  hub.newLimiter(),
		logger: hub.logger.With().
			Str("connID", id).
			Str("userID", identity.UserID).
			Logger(),
	}
}

// ID returns the connection id
func (c *Client) ID() string {
	return c.id
}

// Identity returns the verified identity of the connection
func (c *Client) Identity() models.Identity {
	return c.identity
}

// enqueue hands frame to the write pump without blocking. A client whose
// buffer is full is closed and will be disconnected by its pumps.
func (c *Client) enqueue(frame []byte) error {
	select {
	case <-c.done:
		return errClientClosed
	default:
	}

	select {
	case c.send <- frame:
		return nil
	default:
		c.logger.Warn().Int("buffered", len(c.send)).Msg("Send buffer full, closing slow client")
		c.close()
		return errSendBufferFull
	}
}

// close signals the pumps to stop. Safe to call more than once.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// readPump pumps events from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.Disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.hub.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			// Don't log normal close conditions as warnings
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info().Msg("WebSocket closed normally")
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("Unexpected WebSocket close")
			} else {
				c.logger.Debug().Err(err).Msg("WebSocket read error")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			c.logger.Warn().Err(err).Int("size", len(frame)).Msg("Failed to unmarshal client event")
			continue
		}

		c.handleEvent(env)
	}
}

// handleEvent dispatches one inbound event. Nothing is ever written back
// to the client on failure.
func (c *Client) handleEvent(env Envelope) {
	switch env.Event {
	case EventJoinClass, EventSendMessage:
		if !c.limiter.Allow() {
			c.logger.Warn().Str("event", env.Event).Msg("Rate limit exceeded, dropping event")
			return
		}
	}

	switch env.Event {
	case EventJoinClass:
		classID, err := parseJoinClass(env.Data)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Ignoring malformed join_class")
			return
		}
		c.hub.membership.Join(c, classID)

	case EventSendMessage:
		var payload SendMessagePayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			c.logger.Warn().Err(err).Msg("Ignoring malformed send_message")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
		defer cancel()
		// failures are logged by the router
		_, _ = c.hub.router.Send(ctx, c, payload)

	default:
		c.logger.Debug().Str("event", env.Event).Msg("Ignoring unknown event")
	}
}

// writePump pumps frames from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug().Err(err).Msg("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		}
	}
}
