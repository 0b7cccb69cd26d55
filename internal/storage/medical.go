// ABOUTME: Medical history operations for SQLite storage.
// ABOUTME: Records are listed raw here; access control lives in the wellness service.
package storage

import (
	"fmt"

	"github.com/harperreed/cortitrack/internal/models"
)

// CreateMedicalRecord stores a new medical history record.
func (d *DB) CreateMedicalRecord(rec *models.MedicalRecord) error {
	_, err := d.db.Exec(`
		INSERT INTO medical_history (id, user_id, condition, diagnosis_date, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.OwnerID, rec.Condition, rec.DiagnosisDate, rec.Notes, formatTime(rec.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create medical record %s: %w", rec.ID, ErrDuplicate)
		}
		return fmt.Errorf("create medical record: %w", err)
	}
	return nil
}

// ListMedicalRecords returns records ordered by diagnosis date, optionally filtered by owner.
func (d *DB) ListMedicalRecords(ownerID *string) ([]*models.MedicalRecord, error) {
	query := `SELECT id, user_id, condition, diagnosis_date, notes, created_at FROM medical_history`
	var args []interface{}
	if ownerID != nil {
		query += ` WHERE user_id = ?`
		args = append(args, *ownerID)
	}
	query += ` ORDER BY diagnosis_date DESC, id`

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list medical records: %w", err)
	}
	defer rows.Close()

	var records []*models.MedicalRecord
	for rows.Next() {
		var rec models.MedicalRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Condition, &rec.DiagnosisDate, &rec.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("scan medical record: %w", err)
		}
		rec.CreatedAt = parseTime(createdAt)
		records = append(records, &rec)
	}
	return records, rows.Err()
}
