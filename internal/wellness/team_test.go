// ABOUTME: Tests for team stress comparison and team overview.
package wellness

import (
	"math"
	"testing"

	"github.com/harperreed/cortitrack/internal/models"
)

func TestTeamAverageCountsMissingReadingsAsZero(t *testing.T) {
	s, _ := newTestService(t)
	mustUpsert(t, s, "3", 45)

	c, err := s.TeamStressComparison("3", []string{"3", "4"})
	if err != nil {
		t.Fatalf("TeamStressComparison failed: %v", err)
	}
	if c.TeamAverage != 22.5 {
		t.Errorf("TeamAverage = %v, want 22.5", c.TeamAverage)
	}
	if c.SubjectValue != 45 || c.Delta != 22.5 {
		t.Errorf("SubjectValue/Delta = %d/%v, want 45/22.5", c.SubjectValue, c.Delta)
	}
	if c.DeltaPercent != 100 {
		t.Errorf("DeltaPercent = %v, want 100", c.DeltaPercent)
	}
	if !c.AtOrAbove() {
		t.Error("subject above average should report AtOrAbove")
	}
}

func TestTeamAverageZeroGuard(t *testing.T) {
	s, _ := newTestService(t)

	tests := []struct {
		name    string
		members []string
	}{
		{"no members", nil},
		{"members without readings", []string{"3", "4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := s.TeamStressComparison("3", tt.members)
			if err != nil {
				t.Fatalf("TeamStressComparison failed: %v", err)
			}
			if c.TeamAverage != 0 || c.DeltaPercent != 0 {
				t.Errorf("TeamAverage/DeltaPercent = %v/%v, want 0/0", c.TeamAverage, c.DeltaPercent)
			}
			if math.IsNaN(c.DeltaPercent) || math.IsInf(c.DeltaPercent, 0) {
				t.Error("DeltaPercent must be finite")
			}
			if !c.AtOrAbove() {
				t.Error("zero delta counts as at-or-above")
			}
		})
	}
}

func TestCompareWithTeamBelowAverage(t *testing.T) {
	s, _ := newTestService(t)
	mustCreateUser(t, s, "3", "Mike", models.RoleAthlete, "Team Alpha")
	mustCreateUser(t, s, "4", "Emma", models.RoleAthlete, "Team Alpha")
	mustCreateUser(t, s, "2", "Sarah", models.RoleCoach, "Team Alpha")
	mustCreateUser(t, s, "9", "Other", models.RoleAthlete, "Team Beta")
	mustUpsert(t, s, "3", 40)
	mustUpsert(t, s, "4", 80)
	mustUpsert(t, s, "9", 100)

	c, err := s.CompareWithTeam("3")
	if err != nil {
		t.Fatalf("CompareWithTeam failed: %v", err)
	}
	if c.MemberCount != 2 {
		t.Errorf("MemberCount = %d, want 2 (athletes on Team Alpha only)", c.MemberCount)
	}
	if c.TeamAverage != 60 || c.Delta != -20 {
		t.Errorf("TeamAverage/Delta = %v/%v, want 60/-20", c.TeamAverage, c.Delta)
	}
	if c.AtOrAbove() {
		t.Error("subject below average should not report AtOrAbove")
	}
	if got := c.Summary(); got != "33% below team average (60.0)" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestTeamMembersEmptyLabel(t *testing.T) {
	s, _ := newTestService(t)
	mustCreateUser(t, s, "3", "Mike", models.RoleAthlete, "")

	members, err := s.TeamMembers("")
	if err != nil {
		t.Fatalf("TeamMembers failed: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("empty team label should match nobody, got %d", len(members))
	}
}

func TestTeamOverview(t *testing.T) {
	s, _ := newTestService(t)
	mustCreateUser(t, s, "3", "Mike", models.RoleAthlete, "Team Alpha")
	mustCreateUser(t, s, "4", "Emma", models.RoleAthlete, "Team Alpha")
	mustUpsert(t, s, "4", 82)

	rows, err := s.TeamOverview("Team Alpha", models.Principal{ID: "1", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("TeamOverview failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}

	byID := map[string]TeamMemberRow{}
	for _, r := range rows {
		byID[r.User.ID] = r
	}
	emma := byID["4"]
	if emma.Status != StatusAlert || emma.Risk != "High Risk" {
		t.Errorf("Emma status/risk = %s/%s, want alert/High Risk", emma.Status, emma.Risk)
	}
	if emma.Comparison.TeamAverage != 41 {
		t.Errorf("TeamAverage = %v, want 41", emma.Comparison.TeamAverage)
	}
	if emma.User.PasswordHash != "" {
		t.Error("overview rows should not carry password hashes")
	}
	mike := byID["3"]
	if mike.Latest != nil || mike.Status != StatusGood {
		t.Errorf("Mike should have no reading and good status, got %+v", mike)
	}
}

func TestTeamOverviewHidesContextFromCoach(t *testing.T) {
	s, _ := newTestService(t)
	mustCreateUser(t, s, "4", "Emma", models.RoleAthlete, "Team Alpha")
	note := "Dizzy after practice"
	if _, err := s.UpsertTodaysReading("4", models.Metrics{StressLevel: 82, HeartRate: 85, BloodOxygen: 94, SleepQuality: 60, MedicalContext: &note}); err != nil {
		t.Fatalf("UpsertTodaysReading failed: %v", err)
	}

	coach := models.Principal{ID: "2", Role: models.RoleCoach, Team: "Team Alpha"}
	rows, err := s.TeamOverview("Team Alpha", coach)
	if err != nil {
		t.Fatalf("TeamOverview failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Latest == nil {
		t.Fatalf("expected one row with a reading, got %+v", rows)
	}
	if rows[0].Latest.MedicalContext != nil {
		t.Errorf("coach should not see medical context, got %q", *rows[0].Latest.MedicalContext)
	}
	if rows[0].Latest.StressLevel != 82 {
		t.Errorf("StressLevel = %d, want 82", rows[0].Latest.StressLevel)
	}
}
