// ABOUTME: Gauge and per-user settings operations for SQLite storage.
// ABOUTME: Invalid stored gauge settings are reset to defaults on read.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harperreed/cortitrack/internal/models"
)

// GetGaugeSettings loads gauge settings, filling missing fields from defaults.
func (d *DB) GetGaugeSettings() (*models.GaugeSettings, error) {
	var raw string
	err := d.db.QueryRow(`SELECT settings FROM gauge_settings WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultGaugeSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get gauge settings: %w", err)
	}

	s, err := models.ParseGaugeSettings([]byte(raw))
	if err != nil {
		d.logger.Warn("resetting invalid gauge settings", "err", err)
		defaults := models.DefaultGaugeSettings()
		if err := d.SaveGaugeSettings(defaults); err != nil {
			return nil, err
		}
		return defaults, nil
	}
	return s, nil
}

// SaveGaugeSettings replaces the stored gauge settings.
func (d *DB) SaveGaugeSettings(s *models.GaugeSettings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal gauge settings: %w", err)
	}
	_, err = d.db.Exec(`
		INSERT INTO gauge_settings (id, settings) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET settings = excluded.settings`, string(data))
	if err != nil {
		return fmt.Errorf("save gauge settings: %w", err)
	}
	return nil
}

// GetUserSettings returns a user's settings.
func (d *DB) GetUserSettings(userID string) (*models.UserSettings, error) {
	s := models.UserSettings{UserID: userID}
	err := d.db.QueryRow(`SELECT notification, sound FROM user_settings WHERE user_id = ?`, userID).
		Scan(&s.Notification, &s.Sound)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user settings: %w", err)
	}
	return &s, nil
}

// SaveUserSettings inserts or replaces a user's settings.
func (d *DB) SaveUserSettings(s *models.UserSettings) error {
	_, err := d.db.Exec(`
		INSERT INTO user_settings (user_id, notification, sound) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET notification = excluded.notification, sound = excluded.sound`,
		s.UserID, s.Notification, s.Sound)
	if err != nil {
		return fmt.Errorf("save user settings: %w", err)
	}
	return nil
}

// ListUserSettings returns every stored user settings row.
func (d *DB) ListUserSettings() ([]*models.UserSettings, error) {
	rows, err := d.db.Query(`SELECT user_id, notification, sound FROM user_settings ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list user settings: %w", err)
	}
	defer rows.Close()

	var all []*models.UserSettings
	for rows.Next() {
		var s models.UserSettings
		if err := rows.Scan(&s.UserID, &s.Notification, &s.Sound); err != nil {
			return nil, fmt.Errorf("scan user settings: %w", err)
		}
		all = append(all, &s)
	}
	return all, rows.Err()
}
