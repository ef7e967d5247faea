package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/schoolchat/internal/app/models"
	"github.com/yigit/schoolchat/internal/pkg/dberrors"
)

// MessageRepository handles database operations for chat messages
type MessageRepository struct {
	db DBTX
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

// The insert and the sender lookup share one round trip so a delivered
// message always carries the display name that existed at write time.
const persistMessageSQL = `
	WITH inserted AS (
		INSERT INTO chat_messages (
			content, sender_id, receiver_id, class_id, attachment_url, attachment_type
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, content, sender_id, receiver_id, class_id, attachment_url, attachment_type, created_at
	)
	SELECT
		i.id, i.content, i.sender_id, i.receiver_id, i.class_id,
		i.attachment_url, i.attachment_type, i.created_at,
		u.first_name, u.last_name
	FROM inserted i
	JOIN users u ON u.id = i.sender_id
`

// PersistMessage inserts message and returns the stored record with its
// generated id, timestamp and sender
func (r *MessageRepository) PersistMessage(ctx context.Context, message *models.Message) (*models.Message, error) {
	var stored models.Message
	var sender models.Sender

	err := r.db.QueryRow(ctx, persistMessageSQL,
		message.Content,
		message.SenderID,
		message.ReceiverID,
		message.ClassID,
		message.AttachmentURL,
		message.AttachmentType,
	).Scan(
		&stored.ID,
		&stored.Content,
		&stored.SenderID,
		&stored.ReceiverID,
		&stored.ClassID,
		&stored.AttachmentURL,
		&stored.AttachmentType,
		&stored.CreatedAt,
		&sender.FirstName,
		&sender.LastName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("sender %s not found", message.SenderID)
		}
		if constraint, ok := dberrors.ForeignKeyViolation(err); ok {
			return nil, fmt.Errorf("message references an unknown user or class (%s): %w", constraint, err)
		}
		if dberrors.IsInvalidInput(err) {
			return nil, fmt.Errorf("message rejected by database: %w", err)
		}
		return nil, fmt.Errorf("error creating chat message: %w", err)
	}

	sender.ID = stored.SenderID
	stored.Sender = &sender

	return &stored, nil
}
