// ABOUTME: Demo data: the default dashboard users, correlated reading history and medical records.
// ABOUTME: Seeding is idempotent and skips any collection that already has data.
package demo

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/harperreed/cortitrack/internal/models"
	"github.com/harperreed/cortitrack/internal/wellness"
)

// NewAthleteStress is the "today" stress used when generating history for a new athlete.
const NewAthleteStress = 50

const defaultPassword = "12345678"

// Users are the default accounts, keyed by their fixed ids.
var Users = []wellness.NewUserInput{
	{ID: "1", Name: "Admin", Email: "admin@mail.com", Password: defaultPassword, Role: models.RoleAdmin,
		Team: "admin", DateOfBirth: "1990-01-01", Sex: "male"},
	{ID: "2", Name: "Sarah Johnson", Email: "sarah@mail.com", Password: defaultPassword, Role: models.RoleCoach,
		Team: "Team Alpha", DateOfBirth: "1985-05-15", Sex: "female"},
	{ID: "3", Name: "Mike Chen", Email: "mike@mail.com", Password: defaultPassword, Role: models.RoleAthlete,
		Team: "Team Alpha", DateOfBirth: "1995-08-22", Sex: "male"},
	{ID: "4", Name: "Emma Wilson", Email: "emma@mail.com", Password: defaultPassword, Role: models.RoleAthlete,
		Team: "Team Alpha", DateOfBirth: "1997-03-10", Sex: "female"},
	{ID: "5", Name: "Dr. Sam Patel", Email: "provider1@mail.com", Password: "Abc12345678", Role: models.RoleHealthcareProvider,
		Team: "Team Alpha", DateOfBirth: "1985-07-22", Sex: "male"},
}

// AthleteStress is today's stress for each seeded athlete.
var AthleteStress = map[string]int{
	"3": 45,
	"4": 82,
}

// MedicalRecords returns the default medical history.
func MedicalRecords() []*models.MedicalRecord {
	rec := func(id, owner, condition, date, notes string) *models.MedicalRecord {
		created, _ := time.Parse(models.DayLayout, date)
		return &models.MedicalRecord{
			ID:            id,
			OwnerID:       owner,
			Condition:     condition,
			DiagnosisDate: date,
			Notes:         notes,
			CreatedAt:     created,
		}
	}
	return []*models.MedicalRecord{
		rec("1", "3", "Previous Concussion", "2023-03-15",
			"Mild concussion from training incident. Fully recovered. Monitor for stress-related symptoms."),
		rec("2", "3", "Seasonal Allergies", "2022-04-10",
			"Mild seasonal allergies affecting spring training. Managed with antihistamines."),
		rec("3", "4", "Asthma", "2020-01-20",
			"Exercise-induced asthma. Uses rescue inhaler as needed. Monitor stress levels as trigger."),
		rec("4", "4", "Ankle Sprain", "2024-01-05",
			"Grade 2 ankle sprain. Completed physical therapy. Cleared for full activity."),
	}
}

// History generates seven daily readings ending at now. Today's stress is
// todayStress; earlier days vary around it, and heart rate, blood oxygen
// and sleep are correlated with stress.
func History(ownerID string, todayStress int, now time.Time, rng *rand.Rand) []*models.Reading {
	jitter := func(spread float64) float64 { return (rng.Float64() - 0.5) * spread }
	bound := func(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

	readings := make([]*models.Reading, 0, 7)
	for i := 6; i >= 0; i-- {
		at := now.AddDate(0, 0, -i)

		stress := float64(todayStress)
		if i > 0 {
			stress = bound(float64(todayStress)+jitter(40)-float64(i*2), 0, 100)
		}

		hrBase := 68.0
		switch {
		case stress > 70:
			hrBase = 85
		case stress > 50:
			hrBase = 75
		}
		o2Base := 97.0
		if stress > 80 {
			o2Base = 94
		}
		sleepBase := 85.0
		switch {
		case stress > 70:
			sleepBase = 60
		case stress > 50:
			sleepBase = 75
		}

		m := models.Metrics{
			StressLevel:  int(math.Round(stress)),
			HeartRate:    int(math.Round(bound(hrBase+jitter(20), 50, 120))),
			BloodOxygen:  int(math.Round(bound(o2Base+jitter(4), 90, 100))),
			SleepQuality: int(math.Round(bound(sleepBase+jitter(20), 30, 100))),
		}
		if stress > 80 {
			note := "Elevated stress levels noted. Monitor closely."
			m.MedicalContext = &note
		}
		readings = append(readings, models.NewReading(ownerID, m, at))
	}
	return readings
}

// Summary counts what Seed wrote.
type Summary struct {
	Users          int
	Readings       int
	MedicalRecords int
}

// Seed writes the demo dataset through svc. Collections that already hold
// data are left alone, so running it twice is harmless.
func Seed(svc *wellness.Service, rng *rand.Rand) (*Summary, error) {
	repo := svc.Repository()
	summary := &Summary{}
	now := svc.Now()

	users, err := svc.ListUsers()
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		for _, in := range Users {
			if _, err := svc.CreateUser(in); err != nil {
				return nil, fmt.Errorf("seed user %s: %w", in.ID, err)
			}
			summary.Users++
		}
		if err := repo.SaveGaugeSettings(models.DefaultGaugeSettings()); err != nil {
			return nil, fmt.Errorf("seed gauge settings: %w", err)
		}
	}

	readings, err := repo.ListReadings(nil)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	if len(readings) == 0 {
		for _, owner := range []string{"3", "4"} {
			n, err := SeedAthlete(svc, owner, AthleteStress[owner], now, rng)
			if err != nil {
				return nil, err
			}
			summary.Readings += n
		}
	}

	records, err := repo.ListMedicalRecords(nil)
	if err != nil {
		return nil, fmt.Errorf("list medical history: %w", err)
	}
	if len(records) == 0 {
		for _, rec := range MedicalRecords() {
			if err := repo.CreateMedicalRecord(rec); err != nil {
				return nil, fmt.Errorf("seed medical record %s: %w", rec.ID, err)
			}
			summary.MedicalRecords++
		}
	}

	return summary, nil
}

// SeedAthlete stores a generated week of history for ownerID.
func SeedAthlete(svc *wellness.Service, ownerID string, todayStress int, now time.Time, rng *rand.Rand) (int, error) {
	history := History(ownerID, todayStress, now, rng)
	for _, r := range history {
		if _, err := svc.Repository().UpsertReading(r); err != nil {
			return 0, fmt.Errorf("seed reading for %s: %w", ownerID, err)
		}
	}
	return len(history), nil
}

// NewRand returns a generator seeded from the clock, or from seed when it is non-zero.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}
