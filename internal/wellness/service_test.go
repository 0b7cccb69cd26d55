// ABOUTME: Tests for the daily-reading upsert and reading queries.
// ABOUTME: Uses a fixed clock so calendar-day decisions are deterministic.
package wellness

import (
	"errors"
	"testing"
	"time"

	"github.com/harperreed/cortitrack/internal/models"
)

func TestUpsertClampsAndAmendsSameDay(t *testing.T) {
	s, clock := newTestService(t)

	first := mustUpsert(t, s, "3", 45)

	clock.Advance(3 * time.Hour)
	second, err := s.UpsertTodaysReading("3", models.Metrics{StressLevel: 999, HeartRate: 70, BloodOxygen: 98, SleepQuality: 80})
	if err != nil {
		t.Fatalf("UpsertTodaysReading failed: %v", err)
	}

	if second.StressLevel != 100 {
		t.Errorf("StressLevel = %d, want 100", second.StressLevel)
	}
	if second.ID != first.ID {
		t.Errorf("ID changed on same-day upsert: %s -> %s", first.ID, second.ID)
	}
	if !second.CapturedAt.Equal(clock.Now()) {
		t.Errorf("CapturedAt = %v, want %v", second.CapturedAt, clock.Now())
	}

	readings, err := s.ReadingsForOwner("3")
	if err != nil {
		t.Fatalf("ReadingsForOwner failed: %v", err)
	}
	if len(readings) != 1 {
		t.Errorf("reading count = %d, want 1", len(readings))
	}
}

func TestUpsertNextDayCreatesNewReading(t *testing.T) {
	s, clock := newTestService(t)

	first := mustUpsert(t, s, "3", 45)
	clock.Advance(24 * time.Hour)
	second := mustUpsert(t, s, "3", 50)

	if second.ID == first.ID {
		t.Error("next-day upsert should create a new reading")
	}
	if second.CalendarDay != "2025-03-15" {
		t.Errorf("CalendarDay = %s, want 2025-03-15", second.CalendarDay)
	}
	readings, _ := s.ReadingsForOwner("3")
	if len(readings) != 2 {
		t.Errorf("reading count = %d, want 2", len(readings))
	}
}

func TestUpsertUsesServiceLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	s, clock := newTestService(t, WithLocation(tokyo))
	clock.t = time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC)

	r := mustUpsert(t, s, "3", 45)
	if r.CalendarDay != "2025-03-15" {
		t.Errorf("CalendarDay = %s, want 2025-03-15 in JST", r.CalendarDay)
	}
}

func TestUpsertRequiresOwner(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.UpsertTodaysReading("", models.Metrics{})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestUpsertHookReportsCreated(t *testing.T) {
	var created []bool
	s, clock := newTestService(t, WithUpsertHook(func(_ *models.Reading, c bool) {
		created = append(created, c)
	}))

	mustUpsert(t, s, "3", 45)
	clock.Advance(time.Minute)
	mustUpsert(t, s, "3", 50)

	if len(created) != 2 || !created[0] || created[1] {
		t.Errorf("created flags = %v, want [true false]", created)
	}
}

func TestEditLatestReadingUsesFallbacks(t *testing.T) {
	s, _ := newTestService(t)

	r, err := s.EditLatestReading("3", models.MetricsPatch{StressLevel: intPtr(60)})
	if err != nil {
		t.Fatalf("EditLatestReading failed: %v", err)
	}
	if r.StressLevel != 60 || r.HeartRate != FallbackHeartRate ||
		r.BloodOxygen != FallbackBloodOxygen || r.SleepQuality != FallbackSleepQuality {
		t.Errorf("unexpected values: %+v", r)
	}
}

func TestEditLatestReadingKeepsTodaysValues(t *testing.T) {
	s, clock := newTestService(t)

	note := "sore calf"
	first, err := s.UpsertTodaysReading("3", models.Metrics{StressLevel: 45, HeartRate: 64, BloodOxygen: 96, SleepQuality: 70, MedicalContext: &note})
	if err != nil {
		t.Fatalf("UpsertTodaysReading failed: %v", err)
	}

	clock.Advance(time.Hour)
	r, err := s.EditLatestReading("3", models.MetricsPatch{SleepQuality: intPtr(90)})
	if err != nil {
		t.Fatalf("EditLatestReading failed: %v", err)
	}
	if r.ID != first.ID {
		t.Errorf("ID changed: %s -> %s", first.ID, r.ID)
	}
	if r.StressLevel != 45 || r.HeartRate != 64 || r.BloodOxygen != 96 || r.SleepQuality != 90 {
		t.Errorf("unexpected values: %+v", r)
	}
	if r.MedicalContext == nil || *r.MedicalContext != note {
		t.Errorf("medical context should be kept, got %v", r.MedicalContext)
	}
}

func TestEditLatestReadingEmptyPatch(t *testing.T) {
	s, _ := newTestService(t)
	note := "context only"
	if _, err := s.EditLatestReading("3", models.MetricsPatch{MedicalContext: &note}); !errors.Is(err, ErrEmptyPatch) {
		t.Errorf("expected ErrEmptyPatch, got %v", err)
	}
}

func TestLatestAndTodaysReadingAbsent(t *testing.T) {
	s, clock := newTestService(t)

	latest, err := s.LatestReading("3")
	if err != nil || latest != nil {
		t.Errorf("LatestReading = %v, %v; want nil, nil", latest, err)
	}

	mustUpsert(t, s, "3", 45)
	clock.Advance(24 * time.Hour)

	today, err := s.TodaysReading("3")
	if err != nil || today != nil {
		t.Errorf("TodaysReading = %v, %v; want nil, nil on a new day", today, err)
	}
	latest, _ = s.LatestReading("3")
	if latest == nil || latest.StressLevel != 45 {
		t.Errorf("LatestReading should return yesterday's reading, got %v", latest)
	}
}

func TestReadingsInRange(t *testing.T) {
	s, clock := newTestService(t)
	for i := 0; i < 5; i++ {
		mustUpsert(t, s, "3", 40+i)
		clock.Advance(24 * time.Hour)
	}

	got, err := s.ReadingsInRange("3", "2025-03-15", "2025-03-17")
	if err != nil {
		t.Fatalf("ReadingsInRange failed: %v", err)
	}
	if len(got) != 3 || got[0].CalendarDay != "2025-03-15" || got[2].CalendarDay != "2025-03-17" {
		t.Errorf("unexpected range result: %d readings", len(got))
	}

	if _, err := s.ReadingsInRange("3", "15/03/2025", "2025-03-17"); err == nil {
		t.Error("expected validation error for malformed start day")
	}
}
