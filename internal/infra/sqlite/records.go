package sqlite

import (
	"database/sql"
	"time"

	"github.com/healthsync-app/healthsync/internal/domain"
)

// ─── Medication Repository ──────────────────────────────────────────────────

const medCols = `id, user_id, name, dosage, time, frequency, color, taken, last_taken, created_at`

// InsertMedication stores a new medication record.
func (d *DB) InsertMedication(m domain.MedicationRecord) error {
	_, err := d.db.Exec(
		`INSERT INTO medications (`+medCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.Name, m.Dosage, m.Time, string(m.Frequency),
		m.Color, m.Taken, nullableUnix(m.LastTaken), m.CreatedAt.Unix(),
	)
	if err != nil {
		return err
	}
	d.hub.publish(ColMedications, m.ID, m)
	return nil
}

// GetMedication retrieves one medication by id. Returns
// domain.ErrMedicationNotFound when absent.
func (d *DB) GetMedication(id string) (*domain.MedicationRecord, error) {
	row := d.db.QueryRow(`SELECT `+medCols+` FROM medications WHERE id = ?`, id)
	m, err := scanMedication(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrMedicationNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// MedicationsByUser returns all of a user's medications, newest first.
func (d *DB) MedicationsByUser(userID string) ([]domain.MedicationRecord, error) {
	rows, err := d.db.Query(
		`SELECT `+medCols+` FROM medications WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMedications(rows)
}

// TrackedMedicationsByUser returns the user's daily and as-needed
// medications — the set the adherence calculator counts.
func (d *DB) TrackedMedicationsByUser(userID string) ([]domain.MedicationRecord, error) {
	rows, err := d.db.Query(
		`SELECT `+medCols+` FROM medications
		 WHERE user_id = ? AND frequency IN (?, ?)
		 ORDER BY created_at DESC`,
		userID, string(domain.FreqDaily), string(domain.FreqAsNeeded),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMedications(rows)
}

// MarkMedicationTaken sets taken and stamps last_taken.
func (d *DB) MarkMedicationTaken(id string, at time.Time) error {
	result, err := d.db.Exec(
		`UPDATE medications SET taken = 1, last_taken = ? WHERE id = ?`,
		at.Unix(), id,
	)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrMedicationNotFound
	}
	d.publishMedication(id)
	return nil
}

// ClearMedicationTaken unmarks a medication for the day. last_taken is
// preserved as history.
func (d *DB) ClearMedicationTaken(id string) error {
	result, err := d.db.Exec(`UPDATE medications SET taken = 0 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrMedicationNotFound
	}
	d.publishMedication(id)
	return nil
}

// DeleteMedication removes a medication record.
func (d *DB) DeleteMedication(id string) error {
	result, err := d.db.Exec(`DELETE FROM medications WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrMedicationNotFound
	}
	return nil
}

func (d *DB) publishMedication(id string) {
	if m, err := d.GetMedication(id); err == nil {
		d.hub.publish(ColMedications, id, *m)
	}
}

func scanMedication(s scanner) (*domain.MedicationRecord, error) {
	var m domain.MedicationRecord
	var freq string
	var lastTaken sql.NullInt64
	var createdAt int64

	err := s.Scan(&m.ID, &m.UserID, &m.Name, &m.Dosage, &m.Time,
		&freq, &m.Color, &m.Taken, &lastTaken, &createdAt)
	if err != nil {
		return nil, err
	}

	m.Frequency = domain.Frequency(freq)
	if lastTaken.Valid {
		m.LastTaken = time.Unix(lastTaken.Int64, 0)
	}
	m.CreatedAt = time.Unix(createdAt, 0)
	return &m, nil
}

func collectMedications(rows *sql.Rows) ([]domain.MedicationRecord, error) {
	var meds []domain.MedicationRecord
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		meds = append(meds, *m)
	}
	return meds, rows.Err()
}

// ─── Symptom Repository ─────────────────────────────────────────────────────

// InsertSymptom stores a logged symptom.
func (d *DB) InsertSymptom(s domain.SymptomRecord) error {
	_, err := d.db.Exec(
		`INSERT INTO symptoms (id, user_id, name, severity, notes, date) VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Name, s.Severity, s.Notes, s.Date.Unix(),
	)
	if err != nil {
		return err
	}
	d.hub.publish(ColSymptoms, s.ID, s)
	return nil
}

// SymptomsByUserSince returns a user's symptoms on or after since,
// newest first.
func (d *DB) SymptomsByUserSince(userID string, since time.Time) ([]domain.SymptomRecord, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, name, severity, notes, date FROM symptoms
		 WHERE user_id = ? AND date >= ? ORDER BY date DESC`,
		userID, since.Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symptoms []domain.SymptomRecord
	for rows.Next() {
		var s domain.SymptomRecord
		var date int64
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Severity, &s.Notes, &date); err != nil {
			return nil, err
		}
		s.Date = time.Unix(date, 0)
		symptoms = append(symptoms, s)
	}
	return symptoms, rows.Err()
}

// SymptomOwner returns the user id a symptom belongs to.
func (d *DB) SymptomOwner(id string) (string, error) {
	var userID string
	err := d.db.QueryRow(`SELECT user_id FROM symptoms WHERE id = ?`, id).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", domain.ErrSymptomNotFound
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

// DeleteSymptom removes a symptom record.
func (d *DB) DeleteSymptom(id string) error {
	result, err := d.db.Exec(`DELETE FROM symptoms WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrSymptomNotFound
	}
	return nil
}
