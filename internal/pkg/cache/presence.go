package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const onlineUsersKey = "presence:online"

// RedisPresenceStore keeps the set of online user ids in Redis
type RedisPresenceStore struct {
	client redis.Cmdable
}

// NewRedisPresenceStore creates a presence store on top of client
func NewRedisPresenceStore(client redis.Cmdable) *RedisPresenceStore {
	return &RedisPresenceStore{client: client}
}

// SetPresence adds or removes userID from the online set. Last writer wins.
func (s *RedisPresenceStore) SetPresence(ctx context.Context, userID string, online bool) error {
	var err error
	if online {
		err = s.client.SAdd(ctx, onlineUsersKey, userID).Err()
	} else {
		err = s.client.SRem(ctx, onlineUsersKey, userID).Err()
	}
	if err != nil {
		return fmt.Errorf("error updating presence for %s: %w", userID, err)
	}
	return nil
}

// OnlineCount returns how many users are currently flagged online
func (s *RedisPresenceStore) OnlineCount(ctx context.Context) (int64, error) {
	count, err := s.client.SCard(ctx, onlineUsersKey).Result()
	if err != nil {
		return 0, fmt.Errorf("error counting online users: %w", err)
	}
	return count, nil
}
