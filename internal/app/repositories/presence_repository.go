package repositories

import (
	"context"
	"fmt"
)

// PresenceRepository keeps the online flag on the users table
type PresenceRepository struct {
	db DBTX
}

// NewPresenceRepository creates a new PresenceRepository
func NewPresenceRepository(db DBTX) *PresenceRepository {
	return &PresenceRepository{db: db}
}

// SetPresence overwrites the user's online flag. Concurrent writers race
// and the last one wins.
func (r *PresenceRepository) SetPresence(ctx context.Context, userID string, online bool) error {
	query := `UPDATE users SET is_online = $2, last_seen_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, userID, online)
	if err != nil {
		return fmt.Errorf("error updating presence: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("no user found with ID %s", userID)
	}

	return nil
}
