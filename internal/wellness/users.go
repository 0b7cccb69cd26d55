// ABOUTME: User administration, gauge settings and per-user preferences.
// ABOUTME: Passwords are stored as bcrypt hashes; deleting a user removes their readings.
package wellness

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/harperreed/cortitrack/internal/models"
	"github.com/harperreed/cortitrack/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// NewUserInput is the data needed to create a user. ID is optional; a UUID
// is generated when it is empty.
type NewUserInput struct {
	ID          string
	Name        string
	Email       string
	Password    string
	Role        models.Role
	Team        string
	DateOfBirth string
	Sex         string
	Picture     string
}

// UserPatch is a partial user update. Nil fields are left unchanged.
type UserPatch struct {
	Name        *string
	Email       *string
	Password    *string
	Role        *models.Role
	Team        *string
	DateOfBirth *string
	Sex         *string
	Picture     *string
}

func validateUserFields(v *ValidationError, name, email string, role models.Role, dob string) {
	if strings.TrimSpace(name) == "" {
		v.add("name", "name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		v.add("email", "email must be a valid address")
	}
	if !models.IsValidRole(string(role)) {
		v.add("role", fmt.Sprintf("role must be one of %v", models.AllRoles))
	}
	if dob != "" {
		if _, err := time.Parse(models.DayLayout, dob); err != nil {
			v.add("dob", "date of birth must be a YYYY-MM-DD date")
		}
	}
}

func (s *Service) hashPassword(v *ValidationError, password string) string {
	switch {
	case password == "":
		v.add("password", "password is required")
		return ""
	case len(password) > 72:
		v.add("password", "password must be 72 bytes or fewer")
		return ""
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.passwordCost)
	if err != nil {
		v.add("password", "password could not be hashed")
		return ""
	}
	return string(hashed)
}

// CreateUser validates in, hashes the password and stores the user.
func (s *Service) CreateUser(in NewUserInput) (*models.User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	var v ValidationError
	validateUserFields(&v, in.Name, in.Email, in.Role, in.DateOfBirth)
	hash := s.hashPassword(&v, in.Password)
	if err := v.orNil(); err != nil {
		return nil, err
	}

	u := models.NewUser(strings.TrimSpace(in.Name), in.Email, in.Role, strings.TrimSpace(in.Team))
	if in.ID != "" {
		u.ID = in.ID
	}
	u.PasswordHash = hash
	u.DateOfBirth = in.DateOfBirth
	u.Sex = in.Sex
	u.Picture = in.Picture
	u.CreatedAt = s.Now()

	if err := s.repo.CreateUser(u); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, &ValidationError{FieldErrors: map[string]string{"email": "email is already registered"}}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user created", "id", u.ID, "role", u.Role, "team", u.Team)
	return u, nil
}

// UpdateUser applies patch to the user with id.
func (s *Service) UpdateUser(id string, patch UserPatch) (*models.User, error) {
	u, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		u.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		u.Email = strings.TrimSpace(strings.ToLower(*patch.Email))
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.Team != nil {
		u.Team = strings.TrimSpace(*patch.Team)
	}
	if patch.DateOfBirth != nil {
		u.DateOfBirth = *patch.DateOfBirth
	}
	if patch.Sex != nil {
		u.Sex = *patch.Sex
	}
	if patch.Picture != nil {
		u.Picture = *patch.Picture
	}

	var v ValidationError
	validateUserFields(&v, u.Name, u.Email, u.Role, u.DateOfBirth)
	if patch.Password != nil {
		u.PasswordHash = s.hashPassword(&v, *patch.Password)
	}
	if err := v.orNil(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateUser(u); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, &ValidationError{FieldErrors: map[string]string{"email": "email is already registered"}}
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// DeleteUser removes a user and every reading they own.
func (s *Service) DeleteUser(id string) error {
	if err := s.repo.DeleteUser(id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := s.repo.DeleteReadings(id)
	if err != nil {
		return fmt.Errorf("delete readings: %w", err)
	}
	s.logger.Info("user deleted", "id", id, "readings", n)
	return nil
}

// ListUsers returns all users ordered by name.
func (s *Service) ListUsers() ([]*models.User, error) {
	users, err := s.repo.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

// GetUser returns the user with id, or an error wrapping ErrNotFound.
func (s *Service) GetUser(id string) (*models.User, error) {
	u, err := s.repo.GetUser(id)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// UserByEmail returns the user registered with email.
func (s *Service) UserByEmail(email string) (*models.User, error) {
	u, err := s.repo.GetUserByEmail(strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", email, err)
	}
	return u, nil
}

// Principal resolves the acting identity for userID.
func (s *Service) Principal(userID string) (models.Principal, error) {
	u, err := s.GetUser(userID)
	if err != nil {
		return models.Principal{}, err
	}
	return u.Principal(), nil
}

// CheckPassword reports whether password matches the stored hash for email.
// An unknown email is ErrUnauthorized too.
func (s *Service) CheckPassword(email, password string) (*models.User, error) {
	u, err := s.UserByEmail(email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}
	return u, nil
}

// GaugeSettings returns the current gauge configuration.
func (s *Service) GaugeSettings() (*models.GaugeSettings, error) {
	g, err := s.repo.GetGaugeSettings()
	if err != nil {
		return nil, fmt.Errorf("get gauge settings: %w", err)
	}
	return g, nil
}

// UpdateGaugeSettings replaces the gauge configuration. Admin only.
func (s *Service) UpdateGaugeSettings(requester models.Principal, settings *models.GaugeSettings) error {
	if requester.Role != models.RoleAdmin {
		return ErrUnauthorized
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGaugeSettings, err)
	}
	if err := s.repo.SaveGaugeSettings(settings); err != nil {
		return fmt.Errorf("save gauge settings: %w", err)
	}
	return nil
}

// UserSettings returns userID's preferences; both toggles default to on.
func (s *Service) UserSettings(userID string) (*models.UserSettings, error) {
	us, err := s.repo.GetUserSettings(userID)
	if errors.Is(err, storage.ErrNotFound) {
		return &models.UserSettings{UserID: userID, Notification: true, Sound: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return us, nil
}

// UpdateUserSettings stores userID's preferences.
func (s *Service) UpdateUserSettings(settings *models.UserSettings) error {
	if settings.UserID == "" {
		return &ValidationError{FieldErrors: map[string]string{"user_id": "user id is required"}}
	}
	if err := s.repo.SaveUserSettings(settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
