package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"giro/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist or is soft-deleted.
var ErrNotFound = errors.New("not found")

// SyncStatus values for the entries.sync_status column.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const entryColumns = `id, kind, entry_date, entry_time, label, gross,
	fuel_reserve, food_reserve, maintenance_reserve, net, distance_km,
	fuel_price, liters, odometer_km, alert_id, payment_method, settled, version`

func scanEntry(row interface {
	Scan(dest ...any) error
}) (core.Entry, int64, error) {
	var (
		e       core.Entry
		date    string
		kind    string
		payment string
		settled int64
		version int64
	)
	err := row.Scan(&e.ID, &kind, &date, &e.Time, &e.Label, &e.Gross,
		&e.FuelReserve, &e.FoodReserve, &e.MaintenanceReserve, &e.Net,
		&e.Distance, &e.FuelPrice, &e.Liters, &e.Odometer, &e.AlertID,
		&payment, &settled, &version)
	if err != nil {
		return core.Entry{}, 0, err
	}
	e.Kind = core.Kind(kind)
	e.Payment = core.PaymentMethod(payment)
	e.Settled = settled != 0
	e.Date, err = core.ParseDate(date)
	if err != nil {
		return core.Entry{}, 0, fmt.Errorf("parse entry date %q: %w", date, err)
	}
	return e, version, nil
}

func (r *SQLiteRepository) CreateEntry(ctx context.Context, e core.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO entries (id, kind, entry_date, entry_time, label, gross,
			fuel_reserve, food_reserve, maintenance_reserve, net, distance_km,
			fuel_price, liters, odometer_km, alert_id, payment_method, settled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Kind), e.Date.ISO(), string(e.Time), e.Label, e.Gross,
		e.FuelReserve, e.FoodReserve, e.MaintenanceReserve, e.Net, e.Distance,
		e.FuelPrice, e.Liters, e.Odometer, e.AlertID, string(e.Payment), boolToInt(e.Settled))
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved",
		"id", e.ID,
		"kind", e.Kind,
		"date", e.Date.ISO(),
		"gross", e.Gross,
		"net", e.Net)

	return nil
}

// ReplaceEntry overwrites an entry in place, bumps its version and flags it
// for re-sync. The entry keeps its original ID.
func (r *SQLiteRepository) ReplaceEntry(ctx context.Context, e core.Entry) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE entries SET kind = ?, entry_date = ?, entry_time = ?, label = ?,
			gross = ?, fuel_reserve = ?, food_reserve = ?, maintenance_reserve = ?,
			net = ?, distance_km = ?, fuel_price = ?, liters = ?, odometer_km = ?,
			alert_id = ?, payment_method = ?, settled = ?,
			version = version + 1, sync_status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted = 0`,
		string(e.Kind), e.Date.ISO(), string(e.Time), e.Label,
		e.Gross, e.FuelReserve, e.FoodReserve, e.MaintenanceReserve,
		e.Net, e.Distance, e.FuelPrice, e.Liters, e.Odometer,
		e.AlertID, string(e.Payment), boolToInt(e.Settled),
		SyncPending, e.ID)
	if err != nil {
		return 0, fmt.Errorf("update entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update entry rows affected: %w", err)
	}
	if n == 0 {
		return 0, ErrNotFound
	}

	var version int64
	if err := r.db.QueryRowContext(ctx, `SELECT version FROM entries WHERE id = ?`, e.ID).Scan(&version); err != nil {
		return 0, fmt.Errorf("read entry version: %w", err)
	}

	slog.InfoContext(ctx, "Entry replaced", "id", e.ID, "version", version)
	return version, nil
}

// DeleteEntry soft-deletes so the sync worker can still propagate the removal.
func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE entries SET deleted = 1, sync_status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted = 0`, SyncPending, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Entry deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) GetEntry(ctx context.Context, id string) (core.Entry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id = ? AND deleted = 0`, id)
	e, _, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entry{}, ErrNotFound
	}
	if err != nil {
		return core.Entry{}, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// ListEntries returns live entries in insertion order, oldest first.
func (r *SQLiteRepository) ListEntries(ctx context.Context) ([]core.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE deleted = 0 ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []core.Entry
	for rows.Next() {
		e, _, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

func (r *SQLiteRepository) SetEntrySettled(ctx context.Context, id string, settled bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE entries SET settled = ?, sync_status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted = 0`, boolToInt(settled), SyncPending, id)
	if err != nil {
		return fmt.Errorf("set entry settled: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set entry settled rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// PendingEntry pairs an entry with its sync bookkeeping for the worker.
type PendingEntry struct {
	Entry   core.Entry
	Version int64
	Deleted bool
}

// GetEntryForSync fetches an entry regardless of its deleted flag so the
// worker can propagate removals to the backup sheet.
func (r *SQLiteRepository) GetEntryForSync(ctx context.Context, id string) (PendingEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+`, deleted FROM entries WHERE id = ?`, id)

	var (
		e       core.Entry
		date    string
		kind    string
		payment string
		settled int64
		version int64
		deleted int64
	)
	err := row.Scan(&e.ID, &kind, &date, &e.Time, &e.Label, &e.Gross,
		&e.FuelReserve, &e.FoodReserve, &e.MaintenanceReserve, &e.Net,
		&e.Distance, &e.FuelPrice, &e.Liters, &e.Odometer, &e.AlertID,
		&payment, &settled, &version, &deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return PendingEntry{}, ErrNotFound
	}
	if err != nil {
		return PendingEntry{}, fmt.Errorf("get entry for sync: %w", err)
	}
	e.Kind = core.Kind(kind)
	e.Payment = core.PaymentMethod(payment)
	e.Settled = settled != 0
	e.Date, err = core.ParseDate(date)
	if err != nil {
		return PendingEntry{}, fmt.Errorf("parse entry date %q: %w", date, err)
	}
	return PendingEntry{Entry: e, Version: version, Deleted: deleted != 0}, nil
}

func (r *SQLiteRepository) ListPendingEntries(ctx context.Context, limit int) ([]PendingEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryColumns+`, deleted FROM entries
		 WHERE sync_status = ? ORDER BY rowid LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending entries: %w", err)
	}
	defer rows.Close()

	var pending []PendingEntry
	for rows.Next() {
		var (
			e       core.Entry
			date    string
			kind    string
			payment string
			settled int64
			version int64
			deleted int64
		)
		err := rows.Scan(&e.ID, &kind, &date, &e.Time, &e.Label, &e.Gross,
			&e.FuelReserve, &e.FoodReserve, &e.MaintenanceReserve, &e.Net,
			&e.Distance, &e.FuelPrice, &e.Liters, &e.Odometer, &e.AlertID,
			&payment, &settled, &version, &deleted)
		if err != nil {
			return nil, fmt.Errorf("scan pending entry: %w", err)
		}
		e.Kind = core.Kind(kind)
		e.Payment = core.PaymentMethod(payment)
		e.Settled = settled != 0
		e.Date, err = core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("parse entry date %q: %w", date, err)
		}
		pending = append(pending, PendingEntry{Entry: e, Version: version, Deleted: deleted != 0})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending entries: %w", err)
	}
	return pending, nil
}

// MarkEntrySynced records a successful sync, but only if the entry has not
// been modified again since the worker read it.
func (r *SQLiteRepository) MarkEntrySynced(ctx context.Context, id string, version int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE entries SET sync_status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?`, SyncDone, id, version)
	if err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkEntrySyncError(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE entries SET sync_status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, SyncError, id)
	if err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CreateSession(ctx context.Context, s core.Session) error {
	var end any
	if s.EndTime != "" {
		end = string(s.EndTime)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO time_sessions (id, session_date, start_time, end_time, break_minutes, notes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.Date.ISO(), string(s.StartTime), end, s.BreakMinutes, s.Notes)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	slog.InfoContext(ctx, "Session started",
		"id", s.ID,
		"date", s.Date.ISO(),
		"start", s.StartTime)
	return nil
}

// CloseSession fills in the end time and break of an open session.
func (r *SQLiteRepository) CloseSession(ctx context.Context, id string, end core.Clock, breakMinutes int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE time_sessions SET end_time = ?, break_minutes = ?
		WHERE id = ? AND end_time IS NULL`, string(end), breakMinutes, id)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("close session rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Session closed", "id", id, "end", end)
	return nil
}

// OpenSession returns the open session for a date, or ErrNotFound.
func (r *SQLiteRepository) OpenSession(ctx context.Context, date core.Date) (core.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, session_date, start_time, end_time, break_minutes, notes
		FROM time_sessions WHERE session_date = ? AND end_time IS NULL`, date.ISO())
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Session{}, ErrNotFound
	}
	if err != nil {
		return core.Session{}, fmt.Errorf("get open session: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) ListSessions(ctx context.Context) ([]core.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_date, start_time, end_time, break_minutes, notes
		FROM time_sessions ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []core.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

func scanSession(row interface {
	Scan(dest ...any) error
}) (core.Session, error) {
	var (
		s     core.Session
		date  string
		start string
		end   sql.NullString
	)
	err := row.Scan(&s.ID, &date, &start, &end, &s.BreakMinutes, &s.Notes)
	if err != nil {
		return core.Session{}, err
	}
	s.StartTime = core.Clock(start)
	if end.Valid {
		s.EndTime = core.Clock(end.String)
	}
	s.Date, err = core.ParseDate(date)
	if err != nil {
		return core.Session{}, fmt.Errorf("parse session date %q: %w", date, err)
	}
	return s, nil
}

func (r *SQLiteRepository) GetSettings(ctx context.Context) (core.Settings, error) {
	var cfg core.Settings
	err := r.db.QueryRowContext(ctx, `
		SELECT perc_fuel, perc_food, perc_maintenance, daily_goal, last_fuel_price, last_total_km
		FROM settings WHERE id = 1`).Scan(
		&cfg.PercFuel, &cfg.PercFood, &cfg.PercMaintenance,
		&cfg.DailyGoal, &cfg.LastFuelPrice, &cfg.LastTotalKM)
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, km_interval, last_km FROM maintenance_alerts ORDER BY rowid`)
	if err != nil {
		return core.Settings{}, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a core.MaintenanceAlert
		if err := rows.Scan(&a.ID, &a.Description, &a.KMInterval, &a.LastKM); err != nil {
			return core.Settings{}, fmt.Errorf("scan alert: %w", err)
		}
		cfg.Alerts = append(cfg.Alerts, a)
	}
	if err := rows.Err(); err != nil {
		return core.Settings{}, fmt.Errorf("iterate alerts: %w", err)
	}
	return cfg, nil
}

// PutSettings replaces the single settings row and the alert list atomically.
func (r *SQLiteRepository) PutSettings(ctx context.Context, cfg core.Settings) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settings tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE settings SET perc_fuel = ?, perc_food = ?, perc_maintenance = ?,
			daily_goal = ?, last_fuel_price = ?, last_total_km = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1`,
		cfg.PercFuel, cfg.PercFood, cfg.PercMaintenance,
		cfg.DailyGoal, cfg.LastFuelPrice, cfg.LastTotalKM)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM maintenance_alerts`); err != nil {
		return fmt.Errorf("clear alerts: %w", err)
	}
	for _, a := range cfg.Alerts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO maintenance_alerts (id, description, km_interval, last_km)
			VALUES (?, ?, ?, ?)`, a.ID, a.Description, a.KMInterval, a.LastKM)
		if err != nil {
			return fmt.Errorf("insert alert %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settings tx: %w", err)
	}

	slog.InfoContext(ctx, "Settings updated",
		"daily_goal", cfg.DailyGoal,
		"alerts", len(cfg.Alerts))
	return nil
}

// UpdateLastTotalKM records the latest odometer reading without touching the
// rest of the settings row.
func (r *SQLiteRepository) UpdateLastTotalKM(ctx context.Context, km float64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE settings SET last_total_km = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1`, km)
	if err != nil {
		return fmt.Errorf("update last total km: %w", err)
	}
	return nil
}

// UpdateLastFuelPrice records the most recent price paid per liter.
func (r *SQLiteRepository) UpdateLastFuelPrice(ctx context.Context, price float64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE settings SET last_fuel_price = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1`, price)
	if err != nil {
		return fmt.Errorf("update last fuel price: %w", err)
	}
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
