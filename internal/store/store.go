// Package store bulk-loads a snapshot into PostgreSQL for consumers that
// query the collections with SQL.
package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"kpss-tercih/internal/logging"
	"kpss-tercih/internal/snapshot"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Table names.
const (
	QualificationsTable         = "qualifications"
	PositionsTable              = "positions"
	PositionQualificationsTable = "position_qualifications"
)

// Tables lists the tables in dependency order.
var Tables = []string{QualificationsTable, PositionsTable, PositionQualificationsTable}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Seeder loads snapshots into a database.
type Seeder interface {
	Migrate(ctx context.Context) error
	Seed(ctx context.Context, snap *snapshot.Snapshot) (SeedStats, error)
	Counts(ctx context.Context) (map[string]int64, error)
	Close()
}

// SeedStats reports what one Seed call wrote and skipped.
type SeedStats struct {
	Qualifications     int64
	Positions          int64
	Links              int64
	DuplicatePositions int
	UnknownCodes       int
}

// querier is the part of pgxpool.Pool the loader uses.
type querier interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a PostgreSQL-backed Seeder.
type Store struct {
	pool   *pgxpool.Pool
	conn   querier
	logger logging.Logger
}

// Connect opens a pool on databaseURL and checks it with a ping.
func Connect(ctx context.Context, databaseURL string, logger logging.Logger) (*Store, error) {
	if databaseURL == "" {
		return nil, errors.New("database URL is not configured")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Connected to PostgreSQL")
	return &Store{pool: pool, conn: pool, logger: logger}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate applies the embedded schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("store is not connected")
	}
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	db := stdlib.OpenDBFromPool(s.pool)
	defer func() {
		if err := db.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close migration connection")
		}
	}()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		s.logger.Info("Applied migration",
			logging.F(logging.FieldFile, r.Source.Path),
			logging.F(logging.FieldDuration, r.Duration.Milliseconds()))
	}
	return nil
}

// Seed replaces the content of all tables with snap in a single
// transaction; readers never see a partially loaded snapshot.
func (s *Store) Seed(ctx context.Context, snap *snapshot.Snapshot) (stats SeedStats, err error) {
	started := time.Now()
	rows := buildSeedRows(snap.Qualifications(), snap.Positions())
	stats.DuplicatePositions = rows.duplicatePositions
	stats.UnknownCodes = rows.unknownCodes

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.WithError(rbErr).Warn("Failed to roll back seed transaction")
			}
		}
	}()

	if _, err = tx.Exec(ctx, "TRUNCATE TABLE "+PositionQualificationsTable+", "+PositionsTable+", "+QualificationsTable); err != nil {
		return stats, fmt.Errorf("failed to clear tables: %w", err)
	}
	if stats.Qualifications, err = tx.CopyFrom(ctx, pgx.Identifier{QualificationsTable}, qualificationColumns, pgx.CopyFromRows(rows.qualifications)); err != nil {
		return stats, fmt.Errorf("failed to load qualifications: %w", err)
	}
	if stats.Positions, err = tx.CopyFrom(ctx, pgx.Identifier{PositionsTable}, positionColumns, pgx.CopyFromRows(rows.positions)); err != nil {
		return stats, fmt.Errorf("failed to load positions: %w", err)
	}
	if stats.Links, err = tx.CopyFrom(ctx, pgx.Identifier{PositionQualificationsTable}, linkColumns, pgx.CopyFromRows(rows.links)); err != nil {
		return stats, fmt.Errorf("failed to load position qualifications: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return stats, fmt.Errorf("failed to commit seed: %w", err)
	}

	s.logger.Info("Seeded database",
		logging.F(logging.FieldRunID, snap.RunID()),
		logging.F("qualifications", stats.Qualifications),
		logging.F("positions", stats.Positions),
		logging.F("links", stats.Links),
		logging.F("duplicate_positions", stats.DuplicatePositions),
		logging.F("unknown_codes", stats.UnknownCodes),
		logging.F(logging.FieldDuration, time.Since(started).Milliseconds()))
	return stats, nil
}

func countQuery(table string) (string, []interface{}, error) {
	return psql.Select("COUNT(*)").From(table).ToSql()
}

// Counts returns the row count of every table.
func (s *Store) Counts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(Tables))
	for _, table := range Tables {
		query, args, err := countQuery(table)
		if err != nil {
			return nil, err
		}
		var n int64
		if err := s.conn.QueryRow(ctx, query, args...).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
