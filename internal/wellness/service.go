// ABOUTME: Service is the single entry point surfaces use for wellness data.
// ABOUTME: Owns the daily-reading upsert and the reading queries built on it.
package wellness

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/cortitrack/internal/logging"
	"github.com/harperreed/cortitrack/internal/models"
	"github.com/harperreed/cortitrack/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// Fallback values used when an edit leaves a metric unset and no reading exists today.
const (
	FallbackStress       = 0
	FallbackHeartRate    = 70
	FallbackBloodOxygen  = 98
	FallbackSleepQuality = 80
)

// UpsertHook is called after every successful upsert. created is false when
// an existing reading for the day was amended.
type UpsertHook func(r *models.Reading, created bool)

// Service orchestrates clamping, authorization and persistence.
type Service struct {
	repo         storage.Repository
	now          func() time.Time
	loc          *time.Location
	logger       *log.Logger
	hooks        []UpsertHook
	passwordCost int
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the location that decides calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		s.logger = logging.OrDiscard(l)
	}
}

// WithUpsertHook registers a hook run after each upsert.
func WithUpsertHook(h UpsertHook) Option {
	return func(s *Service) {
		if h != nil {
			s.hooks = append(s.hooks, h)
		}
	}
}

// WithPasswordCost sets the bcrypt cost for new password hashes.
func WithPasswordCost(cost int) Option {
	return func(s *Service) {
		s.passwordCost = cost
	}
}

// NewService wires a Service over repo.
func NewService(repo storage.Repository, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		now:          time.Now,
		loc:          time.UTC,
		logger:       logging.Discard(),
		passwordCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repository exposes the underlying store for export and migration.
func (s *Service) Repository() storage.Repository {
	return s.repo
}

// Now returns the current time in the service location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// Today returns the current calendar-day key.
func (s *Service) Today() string {
	return models.DayOf(s.Now())
}

// UpsertTodaysReading clamps m and stores it as ownerID's reading for today.
// If a reading already exists for today its values and timestamp are
// replaced and its id is kept.
func (s *Service) UpsertTodaysReading(ownerID string, m models.Metrics) (*models.Reading, error) {
	if ownerID == "" {
		return nil, &ValidationError{FieldErrors: map[string]string{"user_id": "user id is required"}}
	}

	candidate := models.NewReading(ownerID, Clamp(m), s.Now())
	stored, err := s.repo.UpsertReading(candidate)
	if err != nil {
		return nil, fmt.Errorf("upsert reading: %w", err)
	}

	created := stored.ID == candidate.ID
	s.logger.Debug("reading saved", "owner", ownerID, "day", stored.CalendarDay, "id", stored.ID, "created", created)
	for _, h := range s.hooks {
		h(stored, created)
	}
	return stored, nil
}

// EditLatestReading applies a partial edit to today's reading. Unset fields
// keep today's value, or fall back to defaults when nothing was recorded
// today. A patch without metric values returns ErrEmptyPatch.
func (s *Service) EditLatestReading(ownerID string, patch models.MetricsPatch) (*models.Reading, error) {
	if !patch.HasMetrics() {
		return nil, ErrEmptyPatch
	}

	base := models.Metrics{
		StressLevel:  FallbackStress,
		HeartRate:    FallbackHeartRate,
		BloodOxygen:  FallbackBloodOxygen,
		SleepQuality: FallbackSleepQuality,
	}
	today, err := s.TodaysReading(ownerID)
	if err != nil {
		return nil, err
	}
	if today != nil {
		base = today.Metrics()
	}

	if patch.StressLevel != nil {
		base.StressLevel = *patch.StressLevel
	}
	if patch.HeartRate != nil {
		base.HeartRate = *patch.HeartRate
	}
	if patch.BloodOxygen != nil {
		base.BloodOxygen = *patch.BloodOxygen
	}
	if patch.SleepQuality != nil {
		base.SleepQuality = *patch.SleepQuality
	}
	if patch.MedicalContext != nil {
		base.MedicalContext = patch.MedicalContext
	}

	return s.UpsertTodaysReading(ownerID, base)
}

// ReadingsForOwner returns all of ownerID's readings in chronological order.
func (s *Service) ReadingsForOwner(ownerID string) ([]*models.Reading, error) {
	readings, err := s.repo.ListReadings(&ownerID)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	if readings == nil {
		readings = []*models.Reading{}
	}
	return readings, nil
}

// LatestReading returns ownerID's most recent reading, or nil when there is none.
func (s *Service) LatestReading(ownerID string) (*models.Reading, error) {
	readings, err := s.ReadingsForOwner(ownerID)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, nil
	}
	return readings[len(readings)-1], nil
}

// TodaysReading returns ownerID's reading for today, or nil.
func (s *Service) TodaysReading(ownerID string) (*models.Reading, error) {
	r, err := s.repo.GetReadingForDay(ownerID, s.Today())
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get today's reading: %w", err)
	}
	return r, nil
}

// ReadingsInRange returns ownerID's readings whose calendar day falls within
// [startDay, endDay], both YYYY-MM-DD.
func (s *Service) ReadingsInRange(ownerID, startDay, endDay string) ([]*models.Reading, error) {
	var v ValidationError
	for field, day := range map[string]string{"start": startDay, "end": endDay} {
		if _, err := time.Parse(models.DayLayout, day); err != nil {
			v.add(field, fmt.Sprintf("%s must be a YYYY-MM-DD date", field))
		}
	}
	if err := v.orNil(); err != nil {
		return nil, err
	}

	readings, err := s.ReadingsForOwner(ownerID)
	if err != nil {
		return nil, err
	}
	inRange := []*models.Reading{}
	for _, r := range readings {
		if r.CalendarDay >= startDay && r.CalendarDay <= endDay {
			inRange = append(inRange, r)
		}
	}
	return inRange, nil
}
