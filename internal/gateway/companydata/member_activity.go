package companydata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/workroomhq/appkit/internal/dbx"
	"github.com/workroomhq/appkit/internal/shared"
)

// MemberActivity is one row of member_activity_list. Each row marks one
// day a member was active in the company.
type MemberActivity struct {
	UserID     int64
	DayStartAt int64
}

// MemberActivityRepository records daily member activity. Hibernation
// decisions read it to tell live companies from abandoned ones.
type MemberActivityRepository interface {
	Insert(ctx context.Context, userID int64, dayStartAt int64) error
	LastActiveAt(ctx context.Context, userID int64) (int64, error)
	CountActiveSince(ctx context.Context, dayStartAt int64) (int64, error)
}

// PostgresMemberActivityRepository implements activity storage over a
// dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresMemberActivityRepository struct {
	db dbx.DBTX
}

func NewPostgresMemberActivityRepository(db dbx.DBTX) *PostgresMemberActivityRepository {
	return &PostgresMemberActivityRepository{db: db}
}

// Insert marks the member active for the day. Repeats within one day
// are absorbed by the unique index.
func (r *PostgresMemberActivityRepository) Insert(ctx context.Context, userID int64, dayStartAt int64) error {
	query := `
		INSERT INTO member_activity_list (user_id, day_start_at)
		VALUES ($1, $2)
		ON CONFLICT (user_id, day_start_at) DO NOTHING;
	`
	if _, err := r.db.ExecContext(ctx, query, userID, dayStartAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// LastActiveAt returns the start of the member's most recent active
// day, shared.ErrNotFound when the member never showed up.
func (r *PostgresMemberActivityRepository) LastActiveAt(ctx context.Context, userID int64) (int64, error) {
	query := `
		SELECT day_start_at FROM member_activity_list
		WHERE user_id = $1
		ORDER BY day_start_at DESC
		LIMIT 1
	`

	var dayStartAt int64
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&dayStartAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return dayStartAt, nil
}

// CountActiveSince counts distinct members active on or after the day.
func (r *PostgresMemberActivityRepository) CountActiveSince(ctx context.Context, dayStartAt int64) (int64, error) {
	query := `
		SELECT COUNT(DISTINCT user_id) FROM member_activity_list
		WHERE day_start_at >= $1
	`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, dayStartAt).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}
