// Package sqlite is the document-store collaborator for HealthSync.
// Uses WAL mode for concurrent reads and crash-safe writes. Every
// committed write publishes the new record snapshot to the watch hub.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/healthsync-app/healthsync/internal/domain"
)

// Collection names, mirroring the original document-store layout.
const (
	ColUsers       = "users"
	ColMedications = "medications"
	ColSymptoms    = "symptoms"
	ColXPHistory   = "xp_history"
)

// DB wraps a SQLite connection with WAL mode, migrations and a watch hub.
type DB struct {
	db  *sql.DB
	hub *hub
}

// Open creates or opens the SQLite database at dir/healthsync.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "healthsync.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db, hub: newHub()}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database and the watch hub.
func (d *DB) Close() error {
	d.hub.close()
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// Subscribe registers a watcher for one collection. Snapshots are
// push-based with no ordering guarantee across collections; consumers
// treat each snapshot as the authoritative latest state. The returned
// cancel func must be called to release the watcher.
func (d *DB) Subscribe(collection string) (<-chan Snapshot, func()) {
	return d.hub.subscribe(collection)
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			uid          TEXT PRIMARY KEY,
			email        TEXT NOT NULL DEFAULT '',
			name         TEXT NOT NULL DEFAULT '',
			role         TEXT NOT NULL DEFAULT 'patient',
			doctor_id    TEXT NOT NULL DEFAULT '',
			xp           INTEGER NOT NULL DEFAULT 0,
			streak       INTEGER NOT NULL DEFAULT 0,
			best_streak  INTEGER NOT NULL DEFAULT 0,
			last_active  INTEGER,
			health_score INTEGER NOT NULL DEFAULT 0,
			created_at   INTEGER NOT NULL,
			updated_at   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_doctor ON users(doctor_id)`,

		`CREATE TABLE IF NOT EXISTS medications (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			name       TEXT NOT NULL,
			dosage     TEXT NOT NULL,
			time       TEXT NOT NULL,
			frequency  TEXT NOT NULL,
			color      TEXT NOT NULL DEFAULT '',
			taken      BOOLEAN NOT NULL DEFAULT 0,
			last_taken INTEGER,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_meds_user ON medications(user_id)`,

		`CREATE TABLE IF NOT EXISTS symptoms (
			id       TEXT PRIMARY KEY,
			user_id  TEXT NOT NULL,
			name     TEXT NOT NULL,
			severity INTEGER NOT NULL,
			notes    TEXT NOT NULL DEFAULT '',
			date     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_symptoms_user ON symptoms(user_id, date)`,

		// Append-only XP ledger. Rows are never updated or deleted.
		`CREATE TABLE IF NOT EXISTS xp_history (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			points         INTEGER NOT NULL,
			reason         TEXT NOT NULL,
			previous_xp    INTEGER NOT NULL,
			new_xp         INTEGER NOT NULL,
			previous_level INTEGER NOT NULL,
			new_level      INTEGER NOT NULL,
			timestamp      INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_xp_user_ts ON xp_history(user_id, timestamp)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── User Repository ────────────────────────────────────────────────────────

const userCols = `uid, email, name, role, doctor_id, xp, streak, best_streak, last_active, health_score, created_at, updated_at`

// PutUser inserts or replaces a full account record.
func (d *DB) PutUser(u domain.UserAccount) error {
	_, err := d.db.Exec(
		`INSERT INTO users (`+userCols+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(uid) DO UPDATE SET
			email=excluded.email,
			name=excluded.name,
			role=excluded.role,
			doctor_id=excluded.doctor_id,
			xp=excluded.xp,
			streak=excluded.streak,
			best_streak=excluded.best_streak,
			last_active=excluded.last_active,
			health_score=excluded.health_score,
			updated_at=excluded.updated_at`,
		u.UID, u.Email, u.Name, string(u.Role), u.DoctorID,
		u.XP, u.Streak, u.BestStreak, nullableUnix(u.LastActive),
		u.HealthScore, u.CreatedAt.Unix(), u.UpdatedAt.Unix(),
	)
	if err != nil {
		return err
	}
	d.hub.publish(ColUsers, u.UID, u)
	return nil
}

// GetUser retrieves an account by uid. Returns domain.ErrUserNotFound
// when the account does not exist.
func (d *DB) GetUser(uid string) (*domain.UserAccount, error) {
	row := d.db.QueryRow(`SELECT `+userCols+` FROM users WHERE uid = ?`, uid)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateStreakFields persists the streak outcome on an account.
func (d *DB) UpdateStreakFields(uid string, streak, bestStreak int, lastActive, updatedAt time.Time) error {
	result, err := d.db.Exec(
		`UPDATE users SET streak = ?, best_streak = ?, last_active = ?, updated_at = ? WHERE uid = ?`,
		streak, bestStreak, nullableUnix(lastActive), updatedAt.Unix(), uid,
	)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	d.publishUser(uid)
	return nil
}

// ResetStreakFields zeroes the streak and clears last_active.
func (d *DB) ResetStreakFields(uid string, updatedAt time.Time) error {
	result, err := d.db.Exec(
		`UPDATE users SET streak = 0, last_active = NULL, updated_at = ? WHERE uid = ?`,
		updatedAt.Unix(), uid,
	)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	d.publishUser(uid)
	return nil
}

// SetHealthScore persists a recomputed health score.
func (d *DB) SetHealthScore(uid string, score int, updatedAt time.Time) error {
	result, err := d.db.Exec(
		`UPDATE users SET health_score = ?, updated_at = ? WHERE uid = ?`,
		score, updatedAt.Unix(), uid,
	)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	d.publishUser(uid)
	return nil
}

// PatientsByDoctor returns all patient accounts assigned to a doctor.
func (d *DB) PatientsByDoctor(doctorID string) ([]domain.UserAccount, error) {
	rows, err := d.db.Query(
		`SELECT `+userCols+` FROM users WHERE doctor_id = ? AND role = 'patient' ORDER BY name`,
		doctorID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []domain.UserAccount
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, *u)
	}
	return patients, rows.Err()
}

// ListPatients returns every patient account (daily rollover job).
func (d *DB) ListPatients() ([]domain.UserAccount, error) {
	rows, err := d.db.Query(`SELECT ` + userCols + ` FROM users WHERE role = 'patient' ORDER BY uid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []domain.UserAccount
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, *u)
	}
	return patients, rows.Err()
}

// publishUser re-reads the account and pushes the snapshot to watchers.
func (d *DB) publishUser(uid string) {
	if u, err := d.GetUser(uid); err == nil {
		d.hub.publish(ColUsers, uid, *u)
	}
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*domain.UserAccount, error) {
	var u domain.UserAccount
	var role string
	var lastActive sql.NullInt64
	var createdAt, updatedAt int64

	err := s.Scan(&u.UID, &u.Email, &u.Name, &role, &u.DoctorID,
		&u.XP, &u.Streak, &u.BestStreak, &lastActive,
		&u.HealthScore, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	u.Role = domain.Role(role)
	if lastActive.Valid {
		u.LastActive = time.Unix(lastActive.Int64, 0)
	}
	u.CreatedAt = time.Unix(createdAt, 0)
	u.UpdatedAt = time.Unix(updatedAt, 0)
	return &u, nil
}

func nullableUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
