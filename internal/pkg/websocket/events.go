package websocket

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yigit/schoolchat/internal/app/models"
)

// Event names carried in Envelope.Event
const (
	EventUserStatusUpdate = "user_status_update"
	EventJoinClass        = "join_class"
	EventSendMessage      = "send_message"
	EventReceiveMessage   = "receive_message"
)

// Envelope is the frame exchanged in both directions
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// StatusUpdate is broadcast to every client on presence transitions
type StatusUpdate = models.Presence

// SendMessagePayload is the client's intent to send a message
type SendMessagePayload struct {
	Content        string  `json:"content"`
	ReceiverID     *string `json:"receiverId,omitempty"`
	ClassID        *string `json:"classId,omitempty"`
	AttachmentURL  *string `json:"attachmentUrl,omitempty"`
	AttachmentType *string `json:"attachmentType,omitempty"`
}

// toMessage builds the message to persist. Blank optional fields are
// treated as absent so "" never counts as a target; others are kept as sent.
func (p SendMessagePayload) toMessage(senderID string) (*models.Message, error) {
	msg := &models.Message{
		Content:        p.Content,
		SenderID:       senderID,
		ReceiverID:     nonBlank(p.ReceiverID),
		ClassID:        nonBlank(p.ClassID),
		AttachmentURL:  nonBlank(p.AttachmentURL),
		AttachmentType: nonBlank(p.AttachmentType),
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return msg, nil
}

func nonBlank(s *string) *string {
	if s == nil {
		return nil
	}
	if strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// encodeEvent marshals data into a ready-to-send frame
func encodeEvent(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// parseJoinClass accepts either a bare JSON string or {"classId": "..."}
func parseJoinClass(data json.RawMessage) (string, error) {
	var classID string
	if err := json.Unmarshal(data, &classID); err == nil {
		return strings.TrimSpace(classID), nil
	}

	var body struct {
		ClassID string `json:"classId"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return "", fmt.Errorf("invalid join_class payload: %w", err)
	}
	return strings.TrimSpace(body.ClassID), nil
}
