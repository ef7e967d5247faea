package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/schoolchat/internal/app/models"
)

// MembershipRepository answers which class channels a user belongs to
type MembershipRepository struct {
	db DBTX
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(db DBTX) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// ListChannels returns the class ids a user is attached to: the classes a
// teacher teaches or the classes a student is enrolled in. Other roles have none.
func (r *MembershipRepository) ListChannels(ctx context.Context, userID string, role models.RoleType) ([]string, error) {
	var query squirrel.SelectBuilder

	switch role {
	case models.RoleTeacher:
		query = squirrel.Select("c.id").
			From("classes c").
			Where(squirrel.Eq{"c.teacher_id": userID}).
			OrderBy("c.id")
	case models.RoleStudent:
		query = squirrel.Select("ce.class_id").
			From("class_enrollments ce").
			Where(squirrel.Eq{"ce.student_id": userID}).
			OrderBy("ce.class_id")
	default:
		return nil, nil
	}

	sql, args, err := query.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var classIDs []string
	for rows.Next() {
		var classID string
		if err := rows.Scan(&classID); err != nil {
			return nil, fmt.Errorf("error scanning class id: %w", err)
		}
		classIDs = append(classIDs, classID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating class ids: %w", err)
	}

	return classIDs, nil
}
