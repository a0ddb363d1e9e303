package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/justsurfingit/goodjob-api/internal/apperrors"
	"github.com/justsurfingit/goodjob-api/internal/store"
)

var _ store.Store = (*Store)(nil)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := Open(postgres.New(postgres.Config{Conn: sqlDB}))
	require.NoError(t, err)
	return NewStore(db), mock
}

func TestFindUserByIDMapsMissingRow(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.FindUserByID(context.Background(), "2f1c5b0e-8f7e-4d35-9a3b-0f2b8e0f9a11")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateExperienceStatusWithoutRows(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "experiences" SET "status"=\$1 WHERE id = \$2`).
		WithArgs("hidden", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.UpdateExperienceStatus(context.Background(), "missing", "hidden")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeExperienceRollsBackWhenCountFails(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "experience_likes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`UPDATE "experiences" SET "like_count"`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := s.LikeExperience(context.Background(), "2f1c5b0e-8f7e-4d35-9a3b-0f2b8e0f9a11", "u1")
	assert.EqualError(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnlikeExperienceWithoutLike(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "experience_likes" WHERE experience_id = \$1 AND user_id = \$2`).
		WithArgs("e1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := s.UnlikeExperience(context.Background(), "e1", "u1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopCompanyKeywords(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT word FROM \(\s*SELECT word FROM company_keywords`).
		WithArgs(keywordWindow, 2).
		WillReturnRows(sqlmock.NewRows([]string{"word"}).AddRow("GOODJOB").AddRow("TSMC"))

	words, err := s.TopCompanyKeywords(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"GOODJOB", "TSMC"}, words)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunDataMigrationsSkipsRecorded(t *testing.T) {
	s, mock := newMockStore(t)

	ran := map[string]bool{}
	migrations := []DataMigration{
		{Name: "done", Up: func(context.Context, *gorm.DB, *zap.Logger) error { ran["done"] = true; return nil }},
		{Name: "pending", Up: func(context.Context, *gorm.DB, *zap.Logger) error { ran["pending"] = true; return nil }},
	}

	mock.ExpectQuery(`SELECT count\(\*\) FROM "data_migrations" WHERE name = \$1`).
		WithArgs("done").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "data_migrations" WHERE name = \$1`).
		WithArgs("pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "data_migrations"`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	applied, err := RunDataMigrations(context.Background(), s.DB, migrations, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"pending"}, applied)
	assert.False(t, ran["done"])
	assert.True(t, ran["pending"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "created_at DESC NULLS LAST, id", orderClause("", false))
	assert.Equal(t, "week_work_time ASC NULLS FIRST, id", orderClause("week_work_time", true))
	assert.Equal(t, "created_at DESC NULLS LAST, id", orderClause("password; DROP TABLE users", false))
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%100\%\_A%`, likePattern("100%_A"))
}
