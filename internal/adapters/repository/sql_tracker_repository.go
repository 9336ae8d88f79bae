package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ domain.TrackerRepository = (*SQLTrackerRepository)(nil)

// One row per user, per metadata key, per (date, field) and per streak
// activity. Saves upsert individual rows so a patch never clobbers fields it
// does not mention.
var trackerSchema = []string{
	`CREATE TABLE IF NOT EXISTS tracker_users (
		user_id          TEXT PRIMARY KEY,
		region_id        TEXT,
		start_date       TEXT,
		last_active_date TEXT,
		updated_at       BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tracker_metadata (
		user_id    TEXT NOT NULL,
		meta_key   TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at BIGINT NOT NULL,
		PRIMARY KEY (user_id, meta_key)
	)`,
	`CREATE TABLE IF NOT EXISTS ledger_fields (
		user_id     TEXT NOT NULL,
		record_date TEXT NOT NULL,
		field       TEXT NOT NULL,
		value       TEXT NOT NULL,
		updated_at  BIGINT NOT NULL,
		PRIMARY KEY (user_id, record_date, field)
	)`,
	`CREATE TABLE IF NOT EXISTS streak_states (
		user_id        TEXT NOT NULL,
		activity       TEXT NOT NULL,
		current_streak INTEGER NOT NULL,
		best_streak    INTEGER NOT NULL,
		last_date      TEXT,
		updated_at     BIGINT NOT NULL,
		PRIMARY KEY (user_id, activity)
	)`,
}

type SQLTrackerRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewSQLTrackerRepository creates the tracker tables if needed. The same
// statements run on Postgres (pgx or lib/pq) and SQLite.
func NewSQLTrackerRepository(ctx context.Context, db *sqlx.DB) (*SQLTrackerRepository, error) {
	for _, stmt := range trackerSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to migrate tracker schema: %w", classify(err))
		}
	}
	return &SQLTrackerRepository{db: db, timeout: 5 * time.Second}, nil
}

// ConnectSQL opens and pings a database for one of the supported drivers.
func ConnectSQL(driverName, dsn string) (*sqlx.DB, error) {
	switch driverName {
	case "pgx", "postgres", "sqlite3":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driverName)
	}

	db, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driverName, err)
	}

	if driverName == "sqlite3" {
		// A second connection to ":memory:" would see an empty database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	return db, nil
}

type userRow struct {
	UserID         string         `db:"user_id"`
	RegionID       sql.NullString `db:"region_id"`
	StartDate      sql.NullString `db:"start_date"`
	LastActiveDate sql.NullString `db:"last_active_date"`
	UpdatedAt      int64          `db:"updated_at"`
}

type metadataRow struct {
	Key   string `db:"meta_key"`
	Value string `db:"value"`
}

type ledgerRow struct {
	RecordDate string `db:"record_date"`
	Field      string `db:"field"`
	Value      string `db:"value"`
}

type streakRow struct {
	Activity string         `db:"activity"`
	Current  int            `db:"current_streak"`
	Best     int            `db:"best_streak"`
	LastDate sql.NullString `db:"last_date"`
}

func (r *SQLTrackerRepository) Load(ctx context.Context, userID string) (*domain.UserRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rec := domain.NewUserRecord(userID)

	var u userRow
	err := r.db.GetContext(ctx, &u, r.db.Rebind(
		`SELECT user_id, region_id, start_date, last_active_date, updated_at
		 FROM tracker_users WHERE user_id = ?`), userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return rec, nil
	case err != nil:
		return nil, classify(err)
	}

	if u.RegionID.Valid && u.StartDate.Valid {
		start, err := domain.ParseDate(u.StartDate.String)
		if err != nil {
			return nil, fmt.Errorf("corrupt start_date for user %s: %w", userID, err)
		}
		rec.Region = &domain.RegionProfile{RegionID: u.RegionID.String, StartDate: start}
	}
	if u.LastActiveDate.Valid && u.LastActiveDate.String != "" {
		d, err := domain.ParseDate(u.LastActiveDate.String)
		if err != nil {
			return nil, fmt.Errorf("corrupt last_active_date for user %s: %w", userID, err)
		}
		rec.LastActiveDate = d
	}
	rec.UpdatedAt = time.UnixMilli(u.UpdatedAt).UTC()

	var meta []metadataRow
	if err := r.db.SelectContext(ctx, &meta, r.db.Rebind(
		`SELECT meta_key, value FROM tracker_metadata WHERE user_id = ?`), userID); err != nil {
		return nil, classify(err)
	}
	for _, m := range meta {
		var v any
		if err := json.Unmarshal([]byte(m.Value), &v); err != nil {
			return nil, fmt.Errorf("corrupt metadata %q for user %s: %w", m.Key, userID, err)
		}
		rec.Metadata[m.Key] = v
	}

	var fields []ledgerRow
	if err := r.db.SelectContext(ctx, &fields, r.db.Rebind(
		`SELECT record_date, field, value FROM ledger_fields
		 WHERE user_id = ? ORDER BY record_date, field`), userID); err != nil {
		return nil, classify(err)
	}
	for _, f := range fields {
		date, err := domain.ParseDate(f.RecordDate)
		if err != nil {
			return nil, fmt.Errorf("corrupt ledger date for user %s: %w", userID, err)
		}
		var v any
		if err := json.Unmarshal([]byte(f.Value), &v); err != nil {
			return nil, fmt.Errorf("corrupt ledger value %s/%s for user %s: %w", f.RecordDate, f.Field, userID, err)
		}
		if _, err := rec.Ledger.Merge(date, domain.FieldUpdate{Key: f.Field, Value: v}); err != nil {
			return nil, fmt.Errorf("corrupt ledger field %s/%s for user %s: %w", f.RecordDate, f.Field, userID, err)
		}
	}

	var streaks []streakRow
	if err := r.db.SelectContext(ctx, &streaks, r.db.Rebind(
		`SELECT activity, current_streak, best_streak, last_date FROM streak_states WHERE user_id = ?`), userID); err != nil {
		return nil, classify(err)
	}
	for _, s := range streaks {
		st := domain.StreakState{Current: s.Current, Best: s.Best}
		if s.LastDate.Valid && s.LastDate.String != "" {
			d, err := domain.ParseDate(s.LastDate.String)
			if err != nil {
				return nil, fmt.Errorf("corrupt streak date for user %s: %w", userID, err)
			}
			st.LastDate = &d
		}
		rec.Streaks[domain.ActivityType(s.Activity)] = st
	}

	return rec, nil
}

func (r *SQLTrackerRepository) Save(ctx context.Context, userID string, patch domain.UserPatch) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// Validate ledger writes before touching the database.
	scratch := domain.NewLedger()
	for _, w := range patch.Ledger {
		if _, err := scratch.Merge(w.Date, w.Update); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().UnixMilli()

	if _, err := tx.ExecContext(ctx, tx.Rebind(
		`INSERT INTO tracker_users (user_id, updated_at) VALUES (?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET updated_at = excluded.updated_at`), userID, now); err != nil {
		return classify(err)
	}

	if patch.Region != nil {
		if _, err := tx.ExecContext(ctx, tx.Rebind(
			`UPDATE tracker_users SET region_id = ?, start_date = ? WHERE user_id = ?`),
			patch.Region.RegionID, patch.Region.StartDate.String(), userID); err != nil {
			return classify(err)
		}
	}

	if patch.LastActiveDate != nil {
		if _, err := tx.ExecContext(ctx, tx.Rebind(
			`UPDATE tracker_users SET last_active_date = ? WHERE user_id = ?`),
			patch.LastActiveDate.String(), userID); err != nil {
			return classify(err)
		}
	}

	metaStmt := tx.Rebind(
		`INSERT INTO tracker_metadata (user_id, meta_key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, meta_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	for k, v := range patch.Metadata {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata %q: %w", k, err)
		}
		if _, err := tx.ExecContext(ctx, metaStmt, userID, k, string(data), now); err != nil {
			return classify(err)
		}
	}

	ledgerStmt := tx.Rebind(
		`INSERT INTO ledger_fields (user_id, record_date, field, value, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, record_date, field) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	for _, w := range patch.Ledger {
		data, err := json.Marshal(w.Update.Value)
		if err != nil {
			return fmt.Errorf("failed to marshal ledger field %q: %w", w.Update.Key, err)
		}
		if _, err := tx.ExecContext(ctx, ledgerStmt, userID, w.Date.String(), w.Update.Key, string(data), now); err != nil {
			return classify(err)
		}
	}

	streakStmt := tx.Rebind(
		`INSERT INTO streak_states (user_id, activity, current_streak, best_streak, last_date, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, activity) DO UPDATE SET
		   current_streak = excluded.current_streak,
		   best_streak = excluded.best_streak,
		   last_date = excluded.last_date,
		   updated_at = excluded.updated_at`)
	for a, s := range patch.Streaks {
		var last sql.NullString
		if s.LastDate != nil {
			last = sql.NullString{String: s.LastDate.String(), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, streakStmt, userID, string(a), s.Current, s.Best, last, now); err != nil {
			return classify(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return classify(err)
	}
	return nil
}

// classify marks errors a retry may fix as ErrStoreUnavailable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isTransient(err) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return err
}

func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return transientSQLState(pgErr.Code)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return transientSQLState(string(pqErr.Code))
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// Connection exceptions, resource shortage, operator intervention and
// serialization conflicts.
func transientSQLState(code string) bool {
	switch {
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "53"):
		return true
	case code == "40001", code == "40P01":
		return true
	case code == "57P01", code == "57P02", code == "57P03":
		return true
	}
	return false
}
