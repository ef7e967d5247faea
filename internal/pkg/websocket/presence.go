package websocket

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/yigit/schoolchat/internal/pkg/apperrors"
)

// PresenceStore persists a user's online flag. Last write wins.
type PresenceStore interface {
	SetPresence(ctx context.Context, userID string, online bool) error
}

// broadcaster delivers a frame to every connected client
type broadcaster interface {
	BroadcastAll(frame []byte) int
}

// PresenceTracker records online/offline transitions and announces them
type PresenceTracker struct {
	store       PresenceStore
	broadcaster broadcaster
	logger      zerolog.Logger
}

// NewPresenceTracker creates a presence tracker
func NewPresenceTracker(store PresenceStore, b broadcaster, logger zerolog.Logger) *PresenceTracker {
	return &PresenceTracker{
		store:       store,
		broadcaster: b,
		logger:      logger,
	}
}

// MarkOnline records userID as online and tells every client
func (p *PresenceTracker) MarkOnline(ctx context.Context, userID string) error {
	return p.transition(ctx, userID, true)
}

// MarkOffline records userID as offline and tells every client
func (p *PresenceTracker) MarkOffline(ctx context.Context, userID string) error {
	return p.transition(ctx, userID, false)
}

// transition writes the flag and broadcasts regardless of the write result
func (p *PresenceTracker) transition(ctx context.Context, userID string, online bool) error {
	var writeErr error
	if p.store != nil {
		if err := p.store.SetPresence(ctx, userID, online); err != nil {
			writeErr = apperrors.Wrap(apperrors.ErrPresenceWrite, err, "failed to store presence")
			p.logger.Error().
				Err(writeErr).
				Str("userID", userID).
				Bool("isOnline", online).
				Msg("Presence write failed")
		}
	}

	frame, err := encodeEvent(EventUserStatusUpdate, StatusUpdate{UserID: userID, IsOnline: online})
	if err != nil {
		p.logger.Error().Err(err).Str("userID", userID).Msg("Failed to encode status update")
		return writeErr
	}

	delivered := p.broadcaster.BroadcastAll(frame)
	p.logger.Debug().
		Str("userID", userID).
		Bool("isOnline", online).
		Int("delivered", delivered).
		Msg("Presence broadcast")

	return writeErr
}
