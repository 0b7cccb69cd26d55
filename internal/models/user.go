// ABOUTME: User, Role, Principal and per-user settings models.
// ABOUTME: Principal is the acting identity supplied with each request.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is a user's dashboard role.
type Role string

const (
	RoleAthlete            Role = "athlete"
	RoleCoach              Role = "coach"
	RoleAdmin              Role = "admin"
	RoleHealthcareProvider Role = "healthcare_provider"
)

// AllRoles returns all valid roles.
var AllRoles = []Role{RoleAthlete, RoleCoach, RoleAdmin, RoleHealthcareProvider}

// IsValidRole checks if a string is a valid role.
func IsValidRole(s string) bool {
	for _, r := range AllRoles {
		if string(r) == s {
			return true
		}
	}
	return false
}

// User is a dashboard account. Team is a free-text grouping key.
type User struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Email        string    `json:"email" yaml:"email"`
	PasswordHash string    `json:"password_hash,omitempty" yaml:"-"`
	Role         Role      `json:"role" yaml:"role"`
	Team         string    `json:"team" yaml:"team"`
	DateOfBirth  string    `json:"dob" yaml:"dob,omitempty"`
	Sex          string    `json:"sex,omitempty" yaml:"sex,omitempty"`
	Picture      string    `json:"picture,omitempty" yaml:"-"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// NewUser creates a User with a generated UUID.
func NewUser(name, email string, role Role, team string) *User {
	return &User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Role:      role,
		Team:      team,
		CreatedAt: time.Now(),
	}
}

// Principal returns the acting identity for u.
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Role: u.Role, Team: u.Team}
}

// Public returns a copy of u without its password hash.
func (u *User) Public() *User {
	c := *u
	c.PasswordHash = ""
	return &c
}

// Age returns the user's age in whole years at now, or 0 when the date of
// birth is missing or malformed.
func (u *User) Age(now time.Time) int {
	dob, err := time.Parse(DayLayout, u.DateOfBirth)
	if err != nil {
		return 0
	}
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return max(age, 0)
}

// Principal is the identity and role of whoever is making a call.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	Team string `json:"team"`
}

// UserSettings holds per-user notification preferences.
type UserSettings struct {
	UserID       string `json:"user_id"`
	Notification bool   `json:"notification"`
	Sound        bool   `json:"sound"`
}
