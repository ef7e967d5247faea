package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schoolchat/internal/app/models"
)

// MockDirectory is a testify mock of Directory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) ListChannels(ctx context.Context, userID string, role models.RoleType) ([]string, error) {
	args := m.Called(ctx, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockMessageStore is a testify mock of MessageStore
type MockMessageStore struct {
	mock.Mock
}

func (m *MockMessageStore) PersistMessage(ctx context.Context, message *models.Message) (*models.Message, error) {
	args := m.Called(ctx, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

// MockPresenceStore is a testify mock of PresenceStore
type MockPresenceStore struct {
	mock.Mock
}

func (m *MockPresenceStore) SetPresence(ctx context.Context, userID string, online bool) error {
	args := m.Called(ctx, userID, online)
	return args.Error(0)
}

// memoryBackend is an in-memory implementation of all three collaborators
type memoryBackend struct {
	mu       sync.Mutex
	channels map[string][]string
	messages []*models.Message
	online   map[string]bool
	seq      int
}

func newMemoryBackend(channels map[string][]string) *memoryBackend {
	return &memoryBackend{
		channels: channels,
		online:   make(map[string]bool),
	}
}

func (b *memoryBackend) ListChannels(_ context.Context, userID string, _ models.RoleType) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.channels[userID], nil
}

func (b *memoryBackend) PersistMessage(_ context.Context, message *models.Message) (*models.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	stored := *message
	stored.ID = fmt.Sprintf("msg-%d", b.seq)
	stored.CreatedAt = time.Now().UTC()
	stored.Sender = &models.Sender{ID: message.SenderID, FirstName: "First " + message.SenderID, LastName: "Last"}
	b.messages = append(b.messages, &stored)
	return &stored, nil
}

func (b *memoryBackend) SetPresence(_ context.Context, userID string, online bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.online[userID] = online
	return nil
}

func (b *memoryBackend) isOnline(userID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.online[userID]
}

func (b *memoryBackend) persisted() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}

func newTestHub(deps Dependencies) *Hub {
	return NewHub(Config{SendBuffer: 32, FanoutWorkers: 4}, deps, zerolog.Nop())
}

// newTestClient creates a client that is not backed by a network connection
func newTestClient(h *Hub, userID string, role models.RoleType) *Client {
	return h.NewClient(nil, models.Identity{UserID: userID, Role: role, SchoolID: "school-1"})
}

// drain returns every frame currently queued for c
func drain(t *testing.T, c *Client) []Envelope {
	t.Helper()
	var out []Envelope
	for {
		select {
		case frame := <-c.send:
			var env Envelope
			require.NoError(t, json.Unmarshal(frame, &env))
			out = append(out, env)
		default:
			return out
		}
	}
}

func messagesOf(t *testing.T, envs []Envelope) []models.Message {
	t.Helper()
	var out []models.Message
	for _, env := range envs {
		if env.Event != EventReceiveMessage {
			continue
		}
		var msg models.Message
		require.NoError(t, json.Unmarshal(env.Data, &msg))
		out = append(out, msg)
	}
	return out
}

func statusUpdatesOf(t *testing.T, envs []Envelope) []StatusUpdate {
	t.Helper()
	var out []StatusUpdate
	for _, env := range envs {
		if env.Event != EventUserStatusUpdate {
			continue
		}
		var update StatusUpdate
		require.NoError(t, json.Unmarshal(env.Data, &update))
		out = append(out, update)
	}
	return out
}

func strPtr(s string) *string { return &s }
