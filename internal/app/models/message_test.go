package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yigit/schoolchat/internal/pkg/apperrors"
)

func strPtr(s string) *string { return &s }

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{name: "private", msg: Message{SenderID: "a", Content: "hey", ReceiverID: strPtr("b")}},
		{name: "class", msg: Message{SenderID: "a", Content: "hi", ClassID: strPtr("c")}},
		{name: "attachment only", msg: Message{SenderID: "a", ClassID: strPtr("c"), AttachmentURL: strPtr("https://files/x.pdf")}},
		{name: "both targets", msg: Message{SenderID: "a", Content: "x", ReceiverID: strPtr("b"), ClassID: strPtr("c")}, wantErr: true},
		{name: "no target", msg: Message{SenderID: "a", Content: "x"}, wantErr: true},
		{name: "empty receiver counts as absent", msg: Message{SenderID: "a", Content: "x", ReceiverID: strPtr("")}, wantErr: true},
		{name: "empty content", msg: Message{SenderID: "a", Content: "  ", ClassID: strPtr("c")}},
		{name: "blank class counts as absent", msg: Message{SenderID: "a", Content: "x", ClassID: strPtr("  ")}, wantErr: true},
		{name: "no sender", msg: Message{Content: "x", ClassID: strPtr("c")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidIntent)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRoleType_Valid(t *testing.T) {
	assert.True(t, RoleStudent.Valid())
	assert.True(t, RoleTeacher.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, RoleType("INSTRUCTOR").Valid())
}
