// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines users, readings (unique per user and day), medical history and settings.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT,
		role TEXT NOT NULL,
		team TEXT NOT NULL DEFAULT '',
		dob TEXT NOT NULL DEFAULT '',
		sex TEXT,
		picture TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS readings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		stress_level INTEGER NOT NULL,
		heart_rate INTEGER NOT NULL,
		blood_oxygen_lv INTEGER NOT NULL,
		sleep_quality INTEGER NOT NULL,
		medical_context TEXT,
		timestamp TEXT NOT NULL,
		date TEXT NOT NULL,
		UNIQUE (user_id, date)
	);

	CREATE TABLE IF NOT EXISTS medical_history (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		condition TEXT NOT NULL,
		diagnosis_date TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS gauge_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		settings TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS user_settings (
		user_id TEXT PRIMARY KEY,
		notification INTEGER NOT NULL DEFAULT 0,
		sound INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_readings_user_timestamp ON readings(user_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_medical_history_user ON medical_history(user_id);
	CREATE INDEX IF NOT EXISTS idx_users_team ON users(team);
	`

	_, err := d.db.Exec(schema)
	return err
}
