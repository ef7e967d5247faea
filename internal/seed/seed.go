package seed

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"

	appModels "github.com/yigit/schoolchat/internal/app/models"
	appRepos "github.com/yigit/schoolchat/internal/app/repositories"
)

// Fixed ids of the demo school so dev tokens can be issued for them
const (
	DemoSchoolID  = "00000000-0000-0000-0000-0000000000a1"
	DemoTeacherID = "00000000-0000-0000-0000-0000000000b1"
	DemoStudentA  = "00000000-0000-0000-0000-0000000000c1"
	DemoStudentB  = "00000000-0000-0000-0000-0000000000c2"
	DemoAdminID   = "00000000-0000-0000-0000-0000000000d1"
	DemoClassID   = "00000000-0000-0000-0000-0000000000e1"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type demoUser struct {
	id, firstName, lastName string
	role                    appModels.RoleType
}

var demoUsers = []demoUser{
	{id: DemoTeacherID, firstName: "Grace", lastName: "Hopper", role: appModels.RoleTeacher},
	{id: DemoStudentA, firstName: "Ada", lastName: "Lovelace", role: appModels.RoleStudent},
	{id: DemoStudentB, firstName: "Alan", lastName: "Turing", role: appModels.RoleStudent},
	{id: DemoAdminID, firstName: "Edsger", lastName: "Dijkstra", role: appModels.RoleAdmin},
}

// CreateDemoData inserts a small demo school: one teacher, two students,
// one admin and one class both students are enrolled in. Existing rows are
// left untouched so this is safe to run on every start.
func CreateDemoData(ctx context.Context, db appRepos.DBTX, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating demo school data...")
	var finalErr error // collect errors without stopping the process

	users := psql.Insert("users").
		Columns("id", "school_id", "first_name", "last_name", "role_type").
		Suffix("ON CONFLICT (id) DO NOTHING")
	for _, u := range demoUsers {
		users = users.Values(u.id, DemoSchoolID, u.firstName, u.lastName, string(u.role))
	}
	if err := execBuilder(ctx, db, users); err != nil {
		lgr.Error().Err(err).Msg("Error creating demo users")
		finalErr = errors.Join(finalErr, err)
	}

	class := psql.Insert("classes").
		Columns("id", "school_id", "name", "teacher_id").
		Values(DemoClassID, DemoSchoolID, "Computer Science 101", DemoTeacherID).
		Suffix("ON CONFLICT (id) DO NOTHING")
	if err := execBuilder(ctx, db, class); err != nil {
		lgr.Error().Err(err).Msg("Error creating demo class")
		finalErr = errors.Join(finalErr, err)
	}

	enrollments := psql.Insert("class_enrollments").
		Columns("class_id", "student_id").
		Values(DemoClassID, DemoStudentA).
		Values(DemoClassID, DemoStudentB).
		Suffix("ON CONFLICT (class_id, student_id) DO NOTHING")
	if err := execBuilder(ctx, db, enrollments); err != nil {
		lgr.Error().Err(err).Msg("Error creating demo enrollments")
		finalErr = errors.Join(finalErr, err)
	}

	if finalErr == nil {
		lgr.Info().Str("schoolID", DemoSchoolID).Msg("Demo school data is in place")
	}
	return finalErr
}

func execBuilder(ctx context.Context, db appRepos.DBTX, builder sq.InsertBuilder) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("error building query: %w", err)
	}
	if _, err := db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("error executing %q: %w", query, err)
	}
	return nil
}
