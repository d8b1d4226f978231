// Package companydata persists per-company member state: the activity
// tokens that delay hibernation and the daily activity log.
package companydata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/workroomhq/appkit/internal/dbx"
	"github.com/workroomhq/appkit/internal/shared"
)

// HibernationDelayToken is one row of hibernation_delay_token_list.
type HibernationDelayToken struct {
	TokenUniq              string
	UserID                 int64
	HibernationDelayedTill int64
	CreatedAt              int64
	UpdatedAt              int64
}

// HibernationTokenRepository stores issued activity token uniqs so a
// presented token can be matched against what was actually handed out.
type HibernationTokenRepository interface {
	InsertOrUpdate(ctx context.Context, tokenUniq string, userID int64, hibernationDelayedTill int64) error
	GetByUniq(ctx context.Context, tokenUniq string) (*HibernationDelayToken, error)
	DeleteByUserID(ctx context.Context, userID int64) error
}

// PostgresHibernationTokenRepository implements token storage over a
// dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresHibernationTokenRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewPostgresHibernationTokenRepository(db dbx.DBTX) *PostgresHibernationTokenRepository {
	return &PostgresHibernationTokenRepository{db: db, now: time.Now}
}

// InsertOrUpdate upserts the token row by its uniq, refreshing the
// delay deadline and updated_at on conflict.
func (r *PostgresHibernationTokenRepository) InsertOrUpdate(ctx context.Context, tokenUniq string, userID int64, hibernationDelayedTill int64) error {
	query := `
		INSERT INTO hibernation_delay_token_list (token_uniq, user_id, hibernation_delayed_till, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (token_uniq)
		DO UPDATE SET
			hibernation_delayed_till = EXCLUDED.hibernation_delayed_till,
			updated_at = EXCLUDED.updated_at;
	`
	now := r.now().Unix()
	if _, err := r.db.ExecContext(ctx, query, tokenUniq, userID, hibernationDelayedTill, now); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByUniq looks a token row up, shared.ErrNotFound when absent.
func (r *PostgresHibernationTokenRepository) GetByUniq(ctx context.Context, tokenUniq string) (*HibernationDelayToken, error) {
	query := `
		SELECT token_uniq, user_id, hibernation_delayed_till, created_at, updated_at
		FROM hibernation_delay_token_list
		WHERE token_uniq = $1
	`

	token := &HibernationDelayToken{}
	err := r.db.QueryRowContext(ctx, query, tokenUniq).Scan(
		&token.TokenUniq, &token.UserID, &token.HibernationDelayedTill, &token.CreatedAt, &token.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return token, nil
}

// DeleteByUserID drops every token the user holds.
func (r *PostgresHibernationTokenRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	query := `DELETE FROM hibernation_delay_token_list WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
