package companydata

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/workroomhq/appkit/internal/dbx"
	"github.com/workroomhq/appkit/internal/gateway/companydata/migrations"
)

// Manager vends the company data repositories and owns the schema.
type Manager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	HibernationTokens(db dbx.DBTX) HibernationTokenRepository
	MemberActivity(db dbx.DBTX) MemberActivityRepository
}

// PostgresManager vends PostgreSQL-backed repositories bound to a
// company shard and exposes a schema migration hook.
type PostgresManager struct{}

func NewPostgresManager() *PostgresManager {
	return &PostgresManager{}
}

// Open connects to a company shard.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return db, nil
}

// HibernationTokens returns a HibernationTokenRepository bound to the
// provided DBTX.
func (m *PostgresManager) HibernationTokens(db dbx.DBTX) HibernationTokenRepository {
	return NewPostgresHibernationTokenRepository(db)
}

// MemberActivity returns a MemberActivityRepository bound to the
// provided DBTX.
func (m *PostgresManager) MemberActivity(db dbx.DBTX) MemberActivityRepository {
	return NewPostgresMemberActivityRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs
// them against the provided shard connection.
func (m *PostgresManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}
