package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNoResults = errors.New("storage: no results")

const schema = `CREATE TABLE IF NOT EXISTS measurements (
	strategy    TEXT    NOT NULL,
	n           BIGINT  NOT NULL,
	workers     INTEGER NOT NULL,
	start_from  BIGINT  NOT NULL,
	divisors    INTEGER NOT NULL,
	tasks       INTEGER NOT NULL,
	max_tasks   INTEGER NOT NULL,
	primes      BIGINT  NOT NULL,
	elapsed_ns  BIGINT  NOT NULL,
	verified    BOOLEAN NOT NULL,
	digest      TEXT    NOT NULL,
	measured_at TEXT    NOT NULL
)`

const columns = `strategy, n, workers, start_from, divisors, tasks, max_tasks, primes, elapsed_ns, verified, digest, measured_at`

// DB stores measurements in SQLite (go-sqlite3) or PostgreSQL (lib/pq).
type DB struct {
	db     *sql.DB
	driver string
}

// Open connects to the database and creates the schema if needed.
func Open(driver, dsn string) (*DB, error) {
	switch driver {
	case "sqlite3", "postgres":
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	s := &DB{db: db, driver: driver}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *DB) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}
	_, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_measurements_strategy_n ON measurements(strategy, n)`)
	if err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}

	if s.driver == "sqlite3" {
		// Set pragmas for performance
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			return fmt.Errorf("failed to set journal mode: %v", err)
		}
		if _, err := s.db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
			return fmt.Errorf("failed to set synchronous mode: %v", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL.
func (s *DB) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SaveRecords inserts recs in a single transaction.
func (s *DB) SaveRecords(ctx context.Context, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(`INSERT INTO measurements (`+columns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %v", err)
	}
	defer stmt.Close()

	for _, r := range recs {
		_, err := stmt.ExecContext(ctx,
			r.Strategy, r.N, r.Workers, r.StartFrom, r.Divisors, r.Tasks, r.MaxTasks,
			r.Primes, int64(r.Elapsed), r.Verified, r.Digest, r.MeasuredAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert %s n=%d workers=%d: %v", r.Strategy, r.N, r.Workers, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}
	return nil
}

// Best returns the fastest stored measurement of strategy at size n.
func (s *DB) Best(ctx context.Context, strategy string, n int) (Record, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+columns+` FROM measurements
		WHERE strategy = ? AND n = ? ORDER BY elapsed_ns ASC LIMIT 1`), strategy, n)

	var (
		r          Record
		elapsed    int64
		measuredAt string
	)
	err := row.Scan(&r.Strategy, &r.N, &r.Workers, &r.StartFrom, &r.Divisors, &r.Tasks, &r.MaxTasks,
		&r.Primes, &elapsed, &r.Verified, &r.Digest, &measuredAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Record{}, fmt.Errorf("%w for %s n=%d", ErrNoResults, strategy, n)
		}
		return Record{}, fmt.Errorf("failed to query best result: %v", err)
	}

	r.Elapsed = time.Duration(elapsed)
	if t, err := time.Parse(time.RFC3339Nano, measuredAt); err == nil {
		r.MeasuredAt = t
	}
	return r, nil
}

// Count returns the number of stored measurements.
func (s *DB) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM measurements`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count measurements: %v", err)
	}
	return count, nil
}

func (s *DB) Close() error {
	return s.db.Close()
}
