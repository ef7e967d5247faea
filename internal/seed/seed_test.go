package seed

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDemoData(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (id,school_id,first_name,last_name,role_type) VALUES")).
		WillReturnResult(pgxmock.NewResult("INSERT", 4))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO classes")).
		WithArgs(DemoClassID, DemoSchoolID, "Computer Science 101", DemoTeacherID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_enrollments (class_id,student_id) VALUES ($1,$2),($3,$4) ON CONFLICT")).
		WithArgs(DemoClassID, DemoStudentA, DemoClassID, DemoStudentB).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	require.NoError(t, CreateDemoData(context.Background(), mock, zerolog.Nop()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDemoData_ContinuesAfterFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("relation \"users\" does not exist"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO classes")).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_enrollments")).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err = CreateDemoData(context.Background(), mock, zerolog.Nop())
	assert.ErrorContains(t, err, "does not exist")
	assert.NoError(t, mock.ExpectationsWereMet())
}
