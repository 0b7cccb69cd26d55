// ABOUTME: Role-based access to medical history.
// ABOUTME: Denied reads return an empty list, never an error.
package wellness

import (
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/cortitrack/internal/models"
	"github.com/harperreed/cortitrack/internal/storage"
)

// canSeeMedical reports whether requester may read or write target's history.
// target may be nil when the user does not exist.
func canSeeMedical(requester models.Principal, target *models.User) bool {
	switch requester.Role {
	case models.RoleAdmin:
		return true
	case models.RoleHealthcareProvider:
		return target != nil && target.Team == requester.Team
	default:
		return false
	}
}

// VisibleMedicalHistory returns targetID's medical records that requester is
// allowed to see. Admins see everything; healthcare providers see users on
// their own team; everyone else sees nothing. The error only reports storage
// failures.
func (s *Service) VisibleMedicalHistory(targetID string, requester models.Principal) ([]*models.MedicalRecord, error) {
	empty := []*models.MedicalRecord{}

	var target *models.User
	if requester.Role == models.RoleHealthcareProvider {
		u, err := s.repo.GetUser(targetID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			return nil, fmt.Errorf("get user: %w", err)
		default:
			target = u
		}
	}

	if !canSeeMedical(requester, target) {
		return empty, nil
	}

	records, err := s.repo.ListMedicalRecords(&targetID)
	if err != nil {
		return nil, fmt.Errorf("list medical history: %w", err)
	}
	if records == nil {
		return empty, nil
	}
	return records, nil
}

// AddMedicalRecord stores rec when requester may manage the owner's history.
func (s *Service) AddMedicalRecord(requester models.Principal, rec *models.MedicalRecord) error {
	var v ValidationError
	if rec.OwnerID == "" {
		v.add("user_id", "user id is required")
	}
	if rec.Condition == "" {
		v.add("condition", "condition is required")
	}
	if err := v.orNil(); err != nil {
		return err
	}

	target, err := s.repo.GetUser(rec.OwnerID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("get user: %w", err)
	}
	if !canSeeMedical(requester, target) {
		return ErrUnauthorized
	}

	if rec.DiagnosisDate != "" {
		if _, err := time.Parse(models.DayLayout, rec.DiagnosisDate); err != nil {
			return &ValidationError{FieldErrors: map[string]string{"diagnosis_date": "diagnosis date must be a YYYY-MM-DD date"}}
		}
	}

	if err := s.repo.CreateMedicalRecord(rec); err != nil {
		return fmt.Errorf("create medical record: %w", err)
	}
	s.logger.Debug("medical record added", "owner", rec.OwnerID, "by", requester.ID)
	return nil
}

// canSeeContext reports whether requester may read the medical context on
// ownerID's readings: the owner, admins, and healthcare providers on the
// owner's team.
func (s *Service) canSeeContext(ownerID string, requester models.Principal) (bool, error) {
	switch {
	case requester.ID != "" && requester.ID == ownerID:
		return true, nil
	case requester.Role == models.RoleAdmin:
		return true, nil
	case requester.Role != models.RoleHealthcareProvider:
		return false, nil
	}

	owner, err := s.repo.GetUser(ownerID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get user: %w", err)
	}
	return canSeeMedical(requester, owner), nil
}

func redactReading(r *models.Reading) *models.Reading {
	if r.MedicalContext == nil {
		return r
	}
	c := *r
	c.MedicalContext = nil
	return &c
}

// VisibleReadings returns readings as requester may see them. Readings whose
// context requester may not read come back as copies without it; the stored
// readings are untouched.
func (s *Service) VisibleReadings(requester models.Principal, readings []*models.Reading) ([]*models.Reading, error) {
	allowed := make(map[string]bool)
	out := make([]*models.Reading, 0, len(readings))
	for _, r := range readings {
		ok, seen := allowed[r.OwnerID]
		if !seen {
			var err error
			if ok, err = s.canSeeContext(r.OwnerID, requester); err != nil {
				return nil, err
			}
			allowed[r.OwnerID] = ok
		}
		if ok {
			out = append(out, r)
		} else {
			out = append(out, redactReading(r))
		}
	}
	return out, nil
}

// VisibleReading is VisibleReadings for one reading. A nil reading stays nil.
func (s *Service) VisibleReading(requester models.Principal, r *models.Reading) (*models.Reading, error) {
	if r == nil {
		return nil, nil
	}
	out, err := s.VisibleReadings(requester, []*models.Reading{r})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}
