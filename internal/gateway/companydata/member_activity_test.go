package companydata

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workroomhq/appkit/internal/shared"
)

// --- helpers ---

func newActivityRepoWithMock(t *testing.T) (*PostgresMemberActivityRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresMemberActivityRepository(db), mock, db
}

// --- tests ---

func TestInsertActivity(t *testing.T) {
	repo, mock, db := newActivityRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO member_activity_list .* ON CONFLICT \(user_id, day_start_at\) DO NOTHING;`).
		WithArgs(int64(101), int64(1699999200)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Insert(context.Background(), 101, 1699999200))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertActivityDBError(t *testing.T) {
	repo, mock, db := newActivityRepoWithMock(t)
	defer db.Close()

	dbErr := errors.New("connection reset")
	mock.ExpectExec(`INSERT INTO member_activity_list .*`).
		WillReturnError(dbErr)

	require.ErrorIs(t, repo.Insert(context.Background(), 101, 1699999200), dbErr)
}

func TestLastActiveAt(t *testing.T) {
	repo, mock, db := newActivityRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT day_start_at FROM member_activity_list WHERE user_id = \$1 ORDER BY day_start_at DESC LIMIT 1`).
		WithArgs(int64(101)).
		WillReturnRows(sqlmock.NewRows([]string{"day_start_at"}).AddRow(int64(1699999200)))

	got, err := repo.LastActiveAt(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, int64(1699999200), got)
}

func TestLastActiveAtNotFound(t *testing.T) {
	repo, mock, db := newActivityRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT day_start_at FROM member_activity_list .*`).
		WithArgs(int64(101)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.LastActiveAt(context.Background(), 101)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCountActiveSince(t *testing.T) {
	repo, mock, db := newActivityRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(DISTINCT user_id\) FROM member_activity_list WHERE day_start_at >= \$1`).
		WithArgs(int64(1699999200)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(7)))

	got, err := repo.CountActiveSince(context.Background(), 1699999200)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)
}

func TestManagerVendsRepositories(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m := NewPostgresManager()
	var _ Manager = m
	require.NotNil(t, m.HibernationTokens(db))
	require.NotNil(t, m.MemberActivity(db))
}

func TestRunMigrationsUsesEmbeddedDir(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, NewPostgresManager().RunMigrations(context.Background(), db))
	assert.Equal(t, ".", gotDir)
}
