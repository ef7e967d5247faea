package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/schoolchat/internal/app/models/dto"
	"github.com/yigit/schoolchat/internal/pkg/websocket"
)

// HubStats reports the live state of the realtime hub
type HubStats interface {
	Stats() websocket.Stats
}

// OnlineCounter reports how many users the presence store holds as online
type OnlineCounter interface {
	OnlineCount(ctx context.Context) (int64, error)
}

// RealtimeController exposes read-only realtime diagnostics
type RealtimeController struct {
	hub    HubStats
	online OnlineCounter
	logger zerolog.Logger
}

// NewRealtimeController creates a new RealtimeController. online may be nil.
func NewRealtimeController(hub HubStats, online OnlineCounter, logger zerolog.Logger) *RealtimeController {
	return &RealtimeController{
		hub:    hub,
		online: online,
		logger: logger,
	}
}

// GetStats godoc
// @Summary Realtime hub statistics
// @Description Returns connected clients, distinct users and active rooms
// @Tags realtime
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StructuredResponse{data=dto.RealtimeStatsData}
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /realtime/stats [get]
func (rc *RealtimeController) GetStats(c *gin.Context) {
	stats := rc.hub.Stats()
	data := dto.RealtimeStatsData{
		Clients: stats.Clients,
		Users:   stats.Users,
		Rooms:   stats.Rooms,
	}

	if rc.online != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := rc.online.OnlineCount(ctx)
		if err != nil {
			// partial stats are still useful
			rc.logger.Warn().Err(err).Msg("Failed to read online user count")
		} else {
			data.OnlineUsers = &count
		}
	}

	c.JSON(http.StatusOK, dto.NewStructuredResponse(data, "Realtime statistics retrieved successfully"))
}
