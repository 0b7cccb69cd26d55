// ABOUTME: Reading model: one daily physiological snapshot for a user.
// ABOUTME: JSON tags match the persisted report shape (user_id, timestamp, date).
package models

import (
	"strconv"
	"time"
)

// DayLayout is the calendar-day key format.
const DayLayout = "2006-01-02"

// Reading is one timestamped set of four physiological metrics for one user.
// At most one Reading exists per (OwnerID, CalendarDay).
type Reading struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"user_id"`
	StressLevel    int       `json:"stress_level"`
	HeartRate      int       `json:"heart_rate"`
	BloodOxygen    int       `json:"blood_oxygen_lv"`
	SleepQuality   int       `json:"sleep_quality"`
	MedicalContext *string   `json:"medical_context,omitempty"`
	CapturedAt     time.Time `json:"timestamp"`
	CalendarDay    string    `json:"date"`
}

// NewReading creates a Reading for ownerID captured at now, keyed by the
// calendar day of now in its own location.
func NewReading(ownerID string, m Metrics, now time.Time) *Reading {
	return &Reading{
		ID:             NewReadingID(ownerID, now),
		OwnerID:        ownerID,
		StressLevel:    m.StressLevel,
		HeartRate:      m.HeartRate,
		BloodOxygen:    m.BloodOxygen,
		SleepQuality:   m.SleepQuality,
		MedicalContext: m.MedicalContext,
		CapturedAt:     now,
		CalendarDay:    DayOf(now),
	}
}

// NewReadingID builds an id from the owner and a nanosecond timestamp.
func NewReadingID(ownerID string, now time.Time) string {
	return ownerID + "_" + strconv.FormatInt(now.UnixNano(), 10)
}

// DayOf truncates t to its calendar-day key in t's location.
func DayOf(t time.Time) string {
	return t.Format(DayLayout)
}

// Metrics returns the reading's values as a Metrics set.
func (r *Reading) Metrics() Metrics {
	return Metrics{
		StressLevel:    r.StressLevel,
		HeartRate:      r.HeartRate,
		BloodOxygen:    r.BloodOxygen,
		SleepQuality:   r.SleepQuality,
		MedicalContext: r.MedicalContext,
	}
}

// Apply replaces the metric fields and medical context, and stamps capturedAt.
// ID and CalendarDay are left untouched.
func (r *Reading) Apply(m Metrics, capturedAt time.Time) {
	r.StressLevel = m.StressLevel
	r.HeartRate = m.HeartRate
	r.BloodOxygen = m.BloodOxygen
	r.SleepQuality = m.SleepQuality
	r.MedicalContext = m.MedicalContext
	r.CapturedAt = capturedAt
}
