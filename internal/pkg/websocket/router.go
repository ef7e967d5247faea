package websocket

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/yigit/schoolchat/internal/app/models"
	"github.com/yigit/schoolchat/internal/pkg/apperrors"
)

// MessageStore durably records a message and returns the stored record
// with its id, timestamp and sender details
type MessageStore interface {
	PersistMessage(ctx context.Context, message *models.Message) (*models.Message, error)
}

// MessageRouter persists send intents and delivers them to their rooms
type MessageRouter struct {
	store  MessageStore
	rooms  *Rooms
	fanout *fanout

	// persist and fan-out for one sender run under that sender's lock so
	// their deliveries keep persistence order
	locks *senderLocks

	logger zerolog.Logger
}

// NewMessageRouter creates a message router
func NewMessageRouter(store MessageStore, rooms *Rooms, f *fanout, logger zerolog.Logger) *MessageRouter {
	return &MessageRouter{
		store:  store,
		rooms:  rooms,
		fanout: f,
		locks:  newSenderLocks(),
		logger: logger,
	}
}

// Send persists intent on behalf of sender and delivers receive_message to
// the target rooms. Nothing is delivered if validation or persistence fails.
func (r *MessageRouter) Send(ctx context.Context, sender *Client, intent SendMessagePayload) (*models.Message, error) {
	msg, err := intent.toMessage(sender.identity.UserID)
	if err != nil {
		sender.logger.Warn().Err(err).Msg("Rejected send_message")
		return nil, err
	}

	unlock := r.locks.lock(msg.SenderID)
	defer unlock()

	stored, err := r.store.PersistMessage(ctx, msg)
	if err != nil {
		err = apperrors.Wrap(apperrors.ErrStore, err, "failed to persist message").
			WithDetails(map[string]interface{}{"senderID": msg.SenderID})
		sender.logger.Error().Err(err).Msg("Message dropped")
		return nil, err
	}

	frame, err := encodeEvent(EventReceiveMessage, stored)
	if err != nil {
		sender.logger.Error().Err(err).Str("messageID", stored.ID).Msg("Failed to encode message")
		return stored, err
	}

	targets := deliveryRooms(msg)
	recipients := r.rooms.Members(targets...)
	delivered := r.fanout.deliver(recipients, frame)

	sender.logger.Debug().
		Str("messageID", stored.ID).
		Int("recipients", len(recipients)).
		Int("delivered", delivered).
		Msg("Message routed")

	return stored, nil
}

// deliveryRooms returns the rooms a validated message fans out to. Private
// messages also go to the sender's home room so their other connections
// see them.
func deliveryRooms(msg *models.Message) []RoomID {
	if msg.IsPrivate() {
		return []RoomID{UserRoom(*msg.ReceiverID), UserRoom(msg.SenderID)}
	}
	return []RoomID{ClassRoom(*msg.ClassID)}
}

// senderLocks hands out one mutex per sender id. Entries are dropped once
// no send for that sender holds or waits on them.
type senderLocks struct {
	mu    sync.Mutex
	locks map[string]*senderLock
}

type senderLock struct {
	mu   sync.Mutex
	refs int
}

func newSenderLocks() *senderLocks {
	return &senderLocks{locks: make(map[string]*senderLock)}
}

// lock blocks until senderID's lock is held and returns its release func
func (l *senderLocks) lock(senderID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[senderID]
	if !ok {
		entry = &senderLock{}
		l.locks[senderID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, senderID)
		}
		l.mu.Unlock()
	}
}
