package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"runtime"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DB is a persistent hit count backed by SQLite. It must be closed when it
// is no longer needed.
type DB struct {
	db           *sql.DB
	upsert       *sql.Stmt
	mostFrequent *sql.Stmt
}

// Open opens (or creates) the SQLite database at dataSourceName and prepares
// the statements used by the service. ":memory:" is accepted.
func Open(ctx context.Context, dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite3", withPragmas(dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("open stats database: %w", err)
	}

	// A shared in-memory database only lives as long as its single connection.
	if strings.Contains(dataSourceName, ":memory:") {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(runtime.NumCPU())
		db.SetMaxIdleConns(0)
	}

	s := &DB{db: db}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// withPragmas sets the connection options through the DSN so that every
// pooled connection gets them, not only the first one.
func withPragmas(dsn string) string {
	const opts = "_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL"
	if strings.Contains(dsn, "?") {
		return dsn + "&" + opts
	}
	return dsn + "?" + opts
}

func (s *DB) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		create table if not exists "request_stat" (
			"task"  text    not null,
			"n"     integer not null,
			"count" integer not null,
			primary key ("task", "n")
		) without rowid;
		create index if not exists "idx_request_stat_count" on "request_stat" ("count");
	`); err != nil {
		return fmt.Errorf("create stats schema: %w", err)
	}

	var err error
	s.upsert, err = s.db.PrepareContext(ctx, `
		insert into "request_stat" ("task", "n", "count")
		values (?, ?, 1)
		on conflict ("task", "n") do update set "count" = "count" + 1;
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}

	s.mostFrequent, err = s.db.PrepareContext(ctx, `
		select "task", "n", "count"
		from "request_stat"
		where "count" = (select max("count") from "request_stat")
		order by "task", "n"
		limit 1;
	`)
	if err != nil {
		return fmt.Errorf("prepare most frequent: %w", err)
	}
	return nil
}

// Increment upserts the counter for key in a transaction.
func (s *DB) Increment(ctx context.Context, key Key) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.StmtContext(ctx, s.upsert).ExecContext(ctx, key.Task, int64(key.N)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("increment %s(%d): %w", key.Task, key.N, err)
	}
	return tx.Commit()
}

// MostFrequent returns the highest count, ties broken on the smallest
// (task, n). An empty table yields the zero Entry.
func (s *DB) MostFrequent(ctx context.Context) (Entry, error) {
	var (
		e Entry
		n int64
	)
	err := s.mostFrequent.QueryRowContext(ctx).Scan(&e.Task, &n, &e.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, nil
	}
	if err != nil {
		return Entry{}, err
	}
	e.N = uint64(n)
	return e, nil
}

// Close releases the prepared statements and the database handle.
func (s *DB) Close() error {
	return errors.Join(
		s.upsert.Close(),
		s.mostFrequent.Close(),
		s.db.Close(),
	)
}
