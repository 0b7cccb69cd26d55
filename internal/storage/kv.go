// ABOUTME: Key-value backed Repository storing each logical collection under one key.
// ABOUTME: Corrupt collections are reset to empty; undecodable entries are skipped.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/harperreed/cortitrack/internal/logging"
	"github.com/harperreed/cortitrack/internal/models"
)

// ErrKeyNotFound is returned by KV implementations for missing keys.
var ErrKeyNotFound = errors.New("key not found")

// ErrDuplicate is returned when a create or update would reuse a taken id or unique field.
var ErrDuplicate = errors.New("already exists")

// Collection keys.
const (
	KeyReadings       = "readings"
	KeyMedicalHistory = "medicalHistory"
	KeyUsers          = "users"
	KeyGaugeSettings  = "gaugeSettings"
	KeyUserSettings   = "settings"
)

// KV is an opaque byte store keyed by collection name.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Close() error
}

// KVStore implements Repository over a KV by loading and saving whole
// collections. A mutex makes every read-modify-write atomic.
type KVStore struct {
	mu     sync.Mutex
	kv     KV
	logger *log.Logger
}

// Compile-time check that KVStore implements Repository.
var _ Repository = (*KVStore)(nil)

// NewKVStore creates a store backed by kv.
func NewKVStore(kv KV, logger *log.Logger) *KVStore {
	return &KVStore{kv: kv, logger: logging.OrDiscard(logger)}
}

// Close closes the underlying KV.
func (s *KVStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Close()
}

// loadCollection reads the JSON array stored under key.
func loadCollection[T any](s *KVStore, key string) ([]*T, error) {
	data, err := s.kv.Get([]byte(key))
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("resetting corrupt collection", "key", key, "err", err)
		if err := s.kv.Delete([]byte(key)); err != nil {
			return nil, fmt.Errorf("reset %s: %w", key, err)
		}
		return nil, nil
	}

	items := make([]*T, 0, len(raw))
	for i, entry := range raw {
		var item T
		if err := json.Unmarshal(entry, &item); err != nil {
			s.logger.Warn("skipping corrupt entry", "key", key, "index", i, "err", err)
			continue
		}
		items = append(items, &item)
	}
	return items, nil
}

// saveCollection replaces the whole collection stored under key. An empty
// collection is stored as an absent key.
func saveCollection[T any](s *KVStore, key string, items []*T) error {
	if len(items) == 0 {
		if err := s.kv.Delete([]byte(key)); err != nil && !errors.Is(err, ErrKeyNotFound) {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		return nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.kv.Set([]byte(key), data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func clone[T any](v *T) *T {
	c := *v
	return &c
}

// UpsertReading inserts r, or amends the existing reading for the same owner and day.
func (s *KVStore) UpsertReading(r *models.Reading) (*models.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	readings, err := loadCollection[models.Reading](s, KeyReadings)
	if err != nil {
		return nil, err
	}

	for _, existing := range readings {
		if existing.OwnerID == r.OwnerID && existing.CalendarDay == r.CalendarDay {
			existing.Apply(r.Metrics(), r.CapturedAt)
			if err := saveCollection(s, KeyReadings, readings); err != nil {
				return nil, err
			}
			return clone(existing), nil
		}
	}

	stored := clone(r)
	readings = append(readings, stored)
	if err := saveCollection(s, KeyReadings, readings); err != nil {
		return nil, err
	}
	return clone(stored), nil
}

// GetReadingForDay returns the owner's reading for the given calendar day.
func (s *KVStore) GetReadingForDay(ownerID, day string) (*models.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	readings, err := loadCollection[models.Reading](s, KeyReadings)
	if err != nil {
		return nil, err
	}
	for _, r := range readings {
		if r.OwnerID == ownerID && r.CalendarDay == day {
			return r, nil
		}
	}
	return nil, ErrNotFound
}

// ListReadings returns readings ordered by CapturedAt ascending.
func (s *KVStore) ListReadings(ownerID *string) ([]*models.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := loadCollection[models.Reading](s, KeyReadings)
	if err != nil {
		return nil, err
	}

	var readings []*models.Reading
	for _, r := range all {
		if ownerID != nil && r.OwnerID != *ownerID {
			continue
		}
		readings = append(readings, r)
	}

	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].CapturedAt.Before(readings[j].CapturedAt)
	})
	return readings, nil
}

// DeleteReadings removes every reading for ownerID.
func (s *KVStore) DeleteReadings(ownerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	readings, err := loadCollection[models.Reading](s, KeyReadings)
	if err != nil {
		return 0, err
	}

	kept := readings[:0]
	for _, r := range readings {
		if r.OwnerID != ownerID {
			kept = append(kept, r)
		}
	}
	deleted := len(readings) - len(kept)
	if deleted == 0 {
		return 0, nil
	}
	return deleted, saveCollection(s, KeyReadings, kept)
}

// CreateMedicalRecord appends a medical history record.
func (s *KVStore) CreateMedicalRecord(rec *models.MedicalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := loadCollection[models.MedicalRecord](s, KeyMedicalHistory)
	if err != nil {
		return err
	}
	for _, existing := range records {
		if existing.ID == rec.ID {
			return fmt.Errorf("create medical record %s: %w", rec.ID, ErrDuplicate)
		}
	}
	return saveCollection(s, KeyMedicalHistory, append(records, clone(rec)))
}

// ListMedicalRecords returns records ordered by diagnosis date, newest first.
func (s *KVStore) ListMedicalRecords(ownerID *string) ([]*models.MedicalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := loadCollection[models.MedicalRecord](s, KeyMedicalHistory)
	if err != nil {
		return nil, err
	}

	var records []*models.MedicalRecord
	for _, rec := range all {
		if ownerID != nil && rec.OwnerID != *ownerID {
			continue
		}
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].DiagnosisDate != records[j].DiagnosisDate {
			return records[i].DiagnosisDate > records[j].DiagnosisDate
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

// CreateUser appends a user, rejecting duplicate ids and emails.
func (s *KVStore) CreateUser(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := loadCollection[models.User](s, KeyUsers)
	if err != nil {
		return err
	}
	for _, existing := range users {
		if existing.ID == u.ID || existing.Email == u.Email {
			return fmt.Errorf("create user %s: %w", u.Email, ErrDuplicate)
		}
	}
	return saveCollection(s, KeyUsers, append(users, clone(u)))
}

// GetUser retrieves a user by ID.
func (s *KVStore) GetUser(id string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.ID == id })
}

// GetUserByEmail retrieves a user by email address.
func (s *KVStore) GetUserByEmail(email string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.Email == email })
}

func (s *KVStore) findUser(match func(*models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := loadCollection[models.User](s, KeyUsers)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if match(u) {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

// UpdateUser replaces a stored user.
func (s *KVStore) UpdateUser(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := loadCollection[models.User](s, KeyUsers)
	if err != nil {
		return err
	}
	idx := -1
	for i, existing := range users {
		switch {
		case existing.ID == u.ID:
			idx = i
		case existing.Email == u.Email:
			return fmt.Errorf("update user %s: %w", u.Email, ErrDuplicate)
		}
	}
	if idx < 0 {
		return fmt.Errorf("update user: %w", ErrNotFound)
	}
	users[idx] = clone(u)
	return saveCollection(s, KeyUsers, users)
}

// DeleteUser removes a user by ID.
func (s *KVStore) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := loadCollection[models.User](s, KeyUsers)
	if err != nil {
		return err
	}
	for i, existing := range users {
		if existing.ID == id {
			users = append(users[:i], users[i+1:]...)
			return saveCollection(s, KeyUsers, users)
		}
	}
	return fmt.Errorf("delete user: %w", ErrNotFound)
}

// ListUsers returns all users ordered by name.
func (s *KVStore) ListUsers() ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := loadCollection[models.User](s, KeyUsers)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

// GetGaugeSettings loads gauge settings over defaults, resetting invalid data.
func (s *KVStore) GetGaugeSettings() (*models.GaugeSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.kv.Get([]byte(KeyGaugeSettings))
	if errors.Is(err, ErrKeyNotFound) {
		return models.DefaultGaugeSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", KeyGaugeSettings, err)
	}

	settings, err := models.ParseGaugeSettings(data)
	if err != nil {
		s.logger.Warn("resetting invalid gauge settings", "err", err)
		defaults := models.DefaultGaugeSettings()
		if err := s.saveGaugeSettings(defaults); err != nil {
			return nil, err
		}
		return defaults, nil
	}
	return settings, nil
}

// SaveGaugeSettings replaces the stored gauge settings.
func (s *KVStore) SaveGaugeSettings(settings *models.GaugeSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveGaugeSettings(settings)
}

func (s *KVStore) saveGaugeSettings(settings *models.GaugeSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal gauge settings: %w", err)
	}
	if err := s.kv.Set([]byte(KeyGaugeSettings), data); err != nil {
		return fmt.Errorf("save gauge settings: %w", err)
	}
	return nil
}

// GetUserSettings returns a user's settings.
func (s *KVStore) GetUserSettings(userID string) (*models.UserSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := loadCollection[models.UserSettings](s, KeyUserSettings)
	if err != nil {
		return nil, err
	}
	for _, us := range all {
		if us.UserID == userID {
			return us, nil
		}
	}
	return nil, ErrNotFound
}

// SaveUserSettings inserts or replaces a user's settings.
func (s *KVStore) SaveUserSettings(settings *models.UserSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := loadCollection[models.UserSettings](s, KeyUserSettings)
	if err != nil {
		return err
	}
	for i, us := range all {
		if us.UserID == settings.UserID {
			all[i] = clone(settings)
			return saveCollection(s, KeyUserSettings, all)
		}
	}
	return saveCollection(s, KeyUserSettings, append(all, clone(settings)))
}

// ListUserSettings returns every stored user settings entry.
func (s *KVStore) ListUserSettings() ([]*models.UserSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadCollection[models.UserSettings](s, KeyUserSettings)
}
