// ABOUTME: User CRUD operations for SQLite storage.
// ABOUTME: Implements Repository interface methods for users.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/harperreed/cortitrack/internal/models"
)

const userColumns = `id, name, email, password_hash, role, team, dob, sex, picture, created_at`

// CreateUser stores a new user.
func (d *DB) CreateUser(u *models.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := d.db.Exec(query,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.Team,
		u.DateOfBirth, u.Sex, u.Picture, formatTime(u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user %s: %w", u.Email, ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (d *DB) GetUser(id string) (*models.User, error) {
	return d.getUserWhere("id = ?", id)
}

// GetUserByEmail retrieves a user by email address.
func (d *DB) GetUserByEmail(email string) (*models.User, error) {
	return d.getUserWhere("email = ?", email)
}

func (d *DB) getUserWhere(cond string, arg string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + cond
	u, err := scanUser(d.db.QueryRow(query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UpdateUser replaces a stored user's fields.
func (d *DB) UpdateUser(u *models.User) error {
	result, err := d.db.Exec(`
		UPDATE users SET name = ?, email = ?, password_hash = ?, role = ?, team = ?,
			dob = ?, sex = ?, picture = ?
		WHERE id = ?`,
		u.Name, u.Email, u.PasswordHash, string(u.Role), u.Team,
		u.DateOfBirth, u.Sex, u.Picture, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update user %s: %w", u.Email, ErrDuplicate)
		}
		return fmt.Errorf("update user: %w", err)
	}
	return requireAffected(result, "update user")
}

// DeleteUser removes a user by ID.
func (d *DB) DeleteUser(id string) error {
	result, err := d.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireAffected(result, "delete user")
}

// ListUsers returns all users ordered by name.
func (d *DB) ListUsers() ([]*models.User, error) {
	rows, err := d.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var role, createdAt string
	var hash, sex, picture sql.NullString

	err := row.Scan(&u.ID, &u.Name, &u.Email, &hash, &role, &u.Team,
		&u.DateOfBirth, &sex, &picture, &createdAt)
	if err != nil {
		return nil, err
	}

	u.Role = models.Role(role)
	u.PasswordHash = hash.String
	u.Sex = sex.String
	u.Picture = picture.String
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}

func requireAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
