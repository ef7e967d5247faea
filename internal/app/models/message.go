package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/yigit/schoolchat/internal/pkg/apperrors"
)

// Message is a chat message addressed either to one user or to one class
type Message struct {
	ID             string    `json:"id" db:"id"`
	Content        string    `json:"content" db:"content"`
	SenderID       string    `json:"senderId" db:"sender_id"`
	ReceiverID     *string   `json:"receiverId,omitempty" db:"receiver_id"`
	ClassID        *string   `json:"classId,omitempty" db:"class_id"`
	AttachmentURL  *string   `json:"attachmentUrl,omitempty" db:"attachment_url"`
	AttachmentType *string   `json:"attachmentType,omitempty" db:"attachment_type"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`

	// Populated by the store on persist
	Sender *Sender `json:"sender,omitempty"`
}

// IsPrivate reports whether the message targets a single receiver
func (m *Message) IsPrivate() bool {
	return m.ReceiverID != nil
}

// Validate checks that exactly one target is set. Blank targets count as
// absent. Empty content is allowed.
func (m *Message) Validate() error {
	hasReceiver := m.ReceiverID != nil && strings.TrimSpace(*m.ReceiverID) != ""
	hasClass := m.ClassID != nil && strings.TrimSpace(*m.ClassID) != ""

	switch {
	case hasReceiver && hasClass:
		return fmt.Errorf("%w: both receiverId and classId set", apperrors.ErrInvalidIntent)
	case !hasReceiver && !hasClass:
		return fmt.Errorf("%w: no receiverId or classId", apperrors.ErrInvalidIntent)
	case m.SenderID == "":
		return fmt.Errorf("%w: missing sender", apperrors.ErrInvalidIntent)
	}
	return nil
}
