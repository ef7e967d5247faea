package websocket

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/yigit/schoolchat/internal/app/models"
	"github.com/yigit/schoolchat/internal/pkg/apperrors"
)

// Directory lists the class channels a user belongs to
type Directory interface {
	ListChannels(ctx context.Context, userID string, role models.RoleType) ([]string, error)
}

// MembershipManager places clients in their home room and class rooms
type MembershipManager struct {
	rooms     *Rooms
	directory Directory
	logger    zerolog.Logger
}

// NewMembershipManager creates a membership manager over rooms
func NewMembershipManager(rooms *Rooms, directory Directory, logger zerolog.Logger) *MembershipManager {
	return &MembershipManager{
		rooms:     rooms,
		directory: directory,
		logger:    logger,
	}
}

// AutoJoin joins client to its home room and to every class room the
// directory lists for it. If the directory fails the client keeps its home
// room only. Returns the rooms the client is in afterwards.
func (m *MembershipManager) AutoJoin(ctx context.Context, client *Client) []RoomID {
	identity := client.identity
	joined := []RoomID{UserRoom(identity.UserID)}
	m.rooms.Join(client, joined[0])

	if m.directory == nil {
		return joined
	}

	classIDs, err := m.directory.ListChannels(ctx, identity.UserID, identity.Role)
	if err != nil {
		err = apperrors.Wrap(apperrors.ErrDirectory, err, "failed to list class channels")
		client.logger.Error().Err(err).Msg("Auto-join limited to home room")
		return joined
	}

	for _, classID := range classIDs {
		if classID == "" {
			continue
		}
		room := ClassRoom(classID)
		m.rooms.Join(client, room)
		joined = append(joined, room)
	}
	return joined
}

// Join adds client to a class room on request. No directory check is made.
func (m *MembershipManager) Join(client *Client, classID string) bool {
	if classID == "" {
		client.logger.Debug().Msg("Ignoring join_class without classId")
		return false
	}

	added := m.rooms.Join(client, ClassRoom(classID))
	client.logger.Debug().
		Str("room", string(ClassRoom(classID))).
		Bool("added", added).
		Msg("Joined class room")
	return added
}
