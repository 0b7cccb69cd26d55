// ABOUTME: MedicalRecord model for a user's medical history entries.
// ABOUTME: Lifecycle is independent of readings; ids are sortable xids.
package models

import (
	"time"

	"github.com/rs/xid"
)

// MedicalRecord is one condition in a user's medical history.
type MedicalRecord struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"user_id"`
	Condition     string    `json:"condition"`
	DiagnosisDate string    `json:"diagnosis_date"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewMedicalRecord creates a MedicalRecord with a generated id.
func NewMedicalRecord(ownerID, condition, diagnosisDate, notes string) *MedicalRecord {
	return &MedicalRecord{
		ID:            xid.New().String(),
		OwnerID:       ownerID,
		Condition:     condition,
		DiagnosisDate: diagnosisDate,
		Notes:         notes,
		CreatedAt:     time.Now(),
	}
}

// WithCreatedAt sets a custom created_at timestamp.
func (r *MedicalRecord) WithCreatedAt(t time.Time) *MedicalRecord {
	r.CreatedAt = t
	return r
}
