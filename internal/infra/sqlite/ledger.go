package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/healthsync-app/healthsync/internal/domain"
)

// ─── XP Ledger ──────────────────────────────────────────────────────────────
// The account update and the ledger append commit in one transaction, so
// two concurrent awards serialize instead of clobbering each other and
// the ledger can never disagree with the account balance.

// AwardXP atomically adds points to an account and appends the matching
// ledger entry. levelFor maps cumulative XP to a level so the ledger can
// record level history without the store knowing the threshold table.
// Returns domain.ErrUserNotFound when the account does not exist.
func (d *DB) AwardXP(id, userID string, points int64, reason string, at time.Time, levelFor func(int64) int) (domain.XPTransaction, error) {
	var entry domain.XPTransaction

	tx, err := d.db.Begin()
	if err != nil {
		return entry, fmt.Errorf("begin award: %w", err)
	}
	defer tx.Rollback()

	var currentXP int64
	err = tx.QueryRow(`SELECT xp FROM users WHERE uid = ?`, userID).Scan(&currentXP)
	if err == sql.ErrNoRows {
		return entry, domain.ErrUserNotFound
	}
	if err != nil {
		return entry, fmt.Errorf("read xp: %w", err)
	}

	newXP := currentXP + points
	if _, err := tx.Exec(
		`UPDATE users SET xp = ?, updated_at = ? WHERE uid = ?`,
		newXP, at.Unix(), userID,
	); err != nil {
		return entry, fmt.Errorf("update xp: %w", err)
	}

	entry = domain.XPTransaction{
		ID:            id,
		UserID:        userID,
		Points:        points,
		Reason:        reason,
		PreviousXP:    currentXP,
		NewXP:         newXP,
		PreviousLevel: levelFor(currentXP),
		NewLevel:      levelFor(newXP),
		Timestamp:     at,
	}
	if _, err := tx.Exec(
		`INSERT INTO xp_history (id, user_id, points, reason, previous_xp, new_xp, previous_level, new_level, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.Points, entry.Reason,
		entry.PreviousXP, entry.NewXP, entry.PreviousLevel, entry.NewLevel,
		entry.Timestamp.Unix(),
	); err != nil {
		return entry, fmt.Errorf("append ledger: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return entry, fmt.Errorf("commit award: %w", err)
	}

	d.hub.publish(ColXPHistory, entry.ID, entry)
	d.publishUser(userID)
	return entry, nil
}

// XPHistorySince returns a user's ledger entries with timestamp >= since,
// oldest first.
func (d *DB) XPHistorySince(userID string, since time.Time) ([]domain.XPTransaction, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, points, reason, previous_xp, new_xp, previous_level, new_level, timestamp
		 FROM xp_history WHERE user_id = ? AND timestamp >= ? ORDER BY timestamp ASC`,
		userID, since.Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.XPTransaction
	for rows.Next() {
		var e domain.XPTransaction
		var ts int64
		if err := rows.Scan(&e.ID, &e.UserID, &e.Points, &e.Reason,
			&e.PreviousXP, &e.NewXP, &e.PreviousLevel, &e.NewLevel, &ts); err != nil {
			return nil, err
		}
		e.Timestamp = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// XPTotalSince sums points awarded to a user since a cutoff.
func (d *DB) XPTotalSince(userID string, since time.Time) (int64, error) {
	var total sql.NullInt64
	err := d.db.QueryRow(
		`SELECT SUM(points) FROM xp_history WHERE user_id = ? AND timestamp >= ?`,
		userID, since.Unix(),
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}

// LedgerCount returns the number of ledger entries for a user.
func (d *DB) LedgerCount(userID string) (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM xp_history WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}
