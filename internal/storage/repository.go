// ABOUTME: Repository interface for cortitrack data storage.
// ABOUTME: Readings are upserted and queried by owner and calendar day.
package storage

import (
	"errors"

	"github.com/harperreed/cortitrack/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Repository defines the storage interface for tracker data.
// This interface allows swapping implementations (SQLite, local KV, synced KV).
type Repository interface {
	// Reading operations. UpsertReading inserts r unless a reading already
	// exists for (r.OwnerID, r.CalendarDay), in which case that reading's
	// metrics, medical context and timestamp are replaced and its ID kept.
	// The stored reading is returned.
	UpsertReading(r *models.Reading) (*models.Reading, error)
	GetReadingForDay(ownerID, day string) (*models.Reading, error)
	// ListReadings returns readings ordered by CapturedAt ascending,
	// optionally filtered by owner.
	ListReadings(ownerID *string) ([]*models.Reading, error)
	DeleteReadings(ownerID string) (int, error)

	// Medical history operations
	CreateMedicalRecord(rec *models.MedicalRecord) error
	ListMedicalRecords(ownerID *string) ([]*models.MedicalRecord, error)

	// User operations
	CreateUser(u *models.User) error
	GetUser(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	UpdateUser(u *models.User) error
	DeleteUser(id string) error
	ListUsers() ([]*models.User, error)

	// Settings operations. GetGaugeSettings never fails on bad stored data;
	// it falls back to defaults.
	GetGaugeSettings() (*models.GaugeSettings, error)
	SaveGaugeSettings(s *models.GaugeSettings) error
	GetUserSettings(userID string) (*models.UserSettings, error)
	SaveUserSettings(s *models.UserSettings) error
	ListUserSettings() ([]*models.UserSettings, error)

	// Lifecycle
	Close() error
}
