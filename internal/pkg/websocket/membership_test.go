package websocket

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/yigit/schoolchat/internal/app/models"
)

func TestMembershipManager_AutoJoin(t *testing.T) {
	directory := new(MockDirectory)
	directory.On("ListChannels", mock.Anything, "teacher-1", models.RoleTeacher).
		Return([]string{"c1", "c2"}, nil)

	h := newTestHub(Dependencies{Directory: directory})
	c := newTestClient(h, "teacher-1", models.RoleTeacher)

	joined := h.membership.AutoJoin(context.Background(), c)

	expected := []RoomID{UserRoom("teacher-1"), ClassRoom("c1"), ClassRoom("c2")}
	assert.ElementsMatch(t, expected, joined)
	assert.ElementsMatch(t, expected, h.rooms.RoomsOf(c))
	directory.AssertExpectations(t)

	// a second auto-join leaves membership unchanged
	h.membership.AutoJoin(context.Background(), c)
	assert.ElementsMatch(t, expected, h.rooms.RoomsOf(c))
}

func TestMembershipManager_DirectoryFailureKeepsHomeRoom(t *testing.T) {
	directory := new(MockDirectory)
	directory.On("ListChannels", mock.Anything, "user-a", models.RoleStudent).
		Return(nil, errors.New("directory down"))

	h := newTestHub(Dependencies{Directory: directory})
	c := newTestClient(h, "user-a", models.RoleStudent)

	joined := h.membership.AutoJoin(context.Background(), c)
	assert.Equal(t, []RoomID{UserRoom("user-a")}, joined)

	// manual join still works afterwards
	assert.True(t, h.membership.Join(c, "c1"))
	assert.ElementsMatch(t, []RoomID{UserRoom("user-a"), ClassRoom("c1")}, h.rooms.RoomsOf(c))
}

func TestMembershipManager_Join(t *testing.T) {
	h := newTestHub(Dependencies{})
	c := newTestClient(h, "user-a", models.RoleStudent)

	assert.False(t, h.membership.Join(c, ""))
	assert.True(t, h.membership.Join(c, "any-class"))
	assert.False(t, h.membership.Join(c, "any-class"))
	assert.Len(t, h.rooms.Members(ClassRoom("any-class")), 1)
}
