// ABOUTME: Reading upsert and query operations for SQLite storage.
// ABOUTME: The (user_id, date) unique key makes the daily upsert a single statement.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/harperreed/cortitrack/internal/models"
)

const readingColumns = `id, user_id, stress_level, heart_rate, blood_oxygen_lv, sleep_quality, medical_context, timestamp, date`

// UpsertReading inserts r, or amends the existing reading for the same owner and day.
func (d *DB) UpsertReading(r *models.Reading) (*models.Reading, error) {
	query := `
		INSERT INTO readings (` + readingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET
			stress_level = excluded.stress_level,
			heart_rate = excluded.heart_rate,
			blood_oxygen_lv = excluded.blood_oxygen_lv,
			sleep_quality = excluded.sleep_quality,
			medical_context = excluded.medical_context,
			timestamp = excluded.timestamp
		RETURNING ` + readingColumns

	row := d.db.QueryRow(query,
		r.ID,
		r.OwnerID,
		r.StressLevel,
		r.HeartRate,
		r.BloodOxygen,
		r.SleepQuality,
		r.MedicalContext,
		formatTime(r.CapturedAt),
		r.CalendarDay,
	)
	stored, err := scanReading(row)
	if err != nil {
		return nil, fmt.Errorf("upsert reading: %w", err)
	}
	return stored, nil
}

// GetReadingForDay returns the owner's reading for the given calendar day.
func (d *DB) GetReadingForDay(ownerID, day string) (*models.Reading, error) {
	query := `SELECT ` + readingColumns + ` FROM readings WHERE user_id = ? AND date = ?`
	r, err := scanReading(d.db.QueryRow(query, ownerID, day))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reading: %w", err)
	}
	return r, nil
}

// ListReadings retrieves readings ordered by timestamp ascending.
func (d *DB) ListReadings(ownerID *string) ([]*models.Reading, error) {
	query := `SELECT ` + readingColumns + ` FROM readings`
	var args []interface{}
	if ownerID != nil {
		query += ` WHERE user_id = ?`
		args = append(args, *ownerID)
	}
	query += ` ORDER BY timestamp ASC, id ASC`

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	defer rows.Close()

	var readings []*models.Reading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// DeleteReadings removes every reading for ownerID and returns how many were deleted.
func (d *DB) DeleteReadings(ownerID string) (int, error) {
	result, err := d.db.Exec("DELETE FROM readings WHERE user_id = ?", ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete readings: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete readings: %w", err)
	}
	return int(affected), nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanReading scans a single row into a Reading.
func scanReading(row rowScanner) (*models.Reading, error) {
	var r models.Reading
	var context sql.NullString
	var timestamp string

	err := row.Scan(&r.ID, &r.OwnerID, &r.StressLevel, &r.HeartRate, &r.BloodOxygen,
		&r.SleepQuality, &context, &timestamp, &r.CalendarDay)
	if err != nil {
		return nil, err
	}

	r.CapturedAt = parseTime(timestamp)
	if context.Valid {
		r.MedicalContext = &context.String
	}
	return &r, nil
}
