package websocket

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/yigit/schoolchat/internal/app/models"
	"github.com/yigit/schoolchat/internal/pkg/apperrors"
	"github.com/yigit/schoolchat/internal/pkg/auth"
)

// Authenticator verifies a bearer token and returns the identity it vouches for
type Authenticator interface {
	VerifyIdentity(ctx context.Context, token string) (models.Identity, error)
}

// Handler for WebSocket connections
type Handler struct {
	hub      *Hub
	auth     Authenticator
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authenticator Authenticator, logger zerolog.Logger) *Handler {
	origins := newOriginPolicy(hub.cfg.AllowedOrigins, logger)
	return &Handler{
		hub:  hub,
		auth: authenticator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.check,
		},
		logger: logger,
	}
}

// tokenFromRequest prefers the token query parameter, since browsers cannot
// set headers on a websocket handshake
func tokenFromRequest(r *http.Request) (string, error) {
	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}
	return auth.ExtractBearerToken(r.Header.Get("Authorization"))
}

// HandleConnection godoc
// @Summary Establish a WebSocket connection for real-time messaging
// @Description Authenticates the token, upgrades to WebSocket, joins the user's rooms and marks them online
// @Tags realtime
// @Param token query string false "Access token (alternative to Authorization header)"
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} gin.H "Unauthorized: token missing or invalid"
// @Router /ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	token, err := tokenFromRequest(c.Request)
	if err == nil {
		var identity models.Identity
		identity, err = h.auth.VerifyIdentity(c.Request.Context(), token)
		if err == nil {
			h.upgrade(c, identity)
			return
		}
	}

	if !errors.Is(err, apperrors.ErrAuth) {
		err = apperrors.Wrap(apperrors.ErrAuth, err, "")
	}
	h.logger.Warn().
		Err(err).
		Str("remoteAddr", c.ClientIP()).
		Msg("Rejected WebSocket connection")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": apperrors.ErrAuth.Error(),
	})
}

func (h *Handler) upgrade(c *gin.Context, identity models.Identity) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		h.logger.Warn().
			Err(err).
			Str("userID", identity.UserID).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := h.hub.NewClient(conn, identity)

	// The request context ends with this handler; admission gets its own
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	h.hub.Admit(ctx, client)
	cancel()

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Str("connID", client.ID()).
		Str("userID", client.Identity().UserID).
		Str("schoolID", client.Identity().SchoolID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}
