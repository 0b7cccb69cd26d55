// ABOUTME: Tests for User helpers and role validation.
package models

import (
	"testing"
	"time"
)

func TestIsValidRole(t *testing.T) {
	for _, r := range AllRoles {
		if !IsValidRole(string(r)) {
			t.Errorf("IsValidRole(%s) = false", r)
		}
	}
	if IsValidRole("owner") {
		t.Error("expected owner to be invalid")
	}
}

func TestUserAge(t *testing.T) {
	now := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		dob  string
		want int
	}{
		{"2000-01-01", 25},
		{"2000-03-14", 25},
		{"2000-03-15", 24},
		{"", 0},
		{"not a date", 0},
		{"2030-01-01", 0},
	}
	for _, tt := range tests {
		u := &User{DateOfBirth: tt.dob}
		if got := u.Age(now); got != tt.want {
			t.Errorf("Age(%q) = %d, want %d", tt.dob, got, tt.want)
		}
	}
}

func TestUserPublicDropsHash(t *testing.T) {
	u := NewUser("Mike", "mike@example.com", RoleAthlete, "Team Alpha")
	u.PasswordHash = "secret"

	p := u.Public()
	if p.PasswordHash != "" {
		t.Error("Public() kept the password hash")
	}
	if u.PasswordHash != "secret" {
		t.Error("Public() modified the original")
	}
	if p.Principal() != u.Principal() {
		t.Errorf("Principal mismatch: %+v vs %+v", p.Principal(), u.Principal())
	}
}
