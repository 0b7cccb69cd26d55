// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Covers NewServer, tool handlers, and resource handlers over seeded demo data.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/cortitrack/internal/demo"
	"github.com/harperreed/cortitrack/internal/models"
	"github.com/harperreed/cortitrack/internal/storage"
	"github.com/harperreed/cortitrack/internal/wellness"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

// setupTestService creates a service over a temp SQLite database.
func setupTestService(t *testing.T) *wellness.Service {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "cortitrack.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return wellness.NewService(db,
		wellness.WithClock(func() time.Time { return testNow }),
		wellness.WithPasswordCost(bcrypt.MinCost),
	)
}

// setupSeededServer returns a server over the demo dataset.
func setupSeededServer(t *testing.T) *Server {
	t.Helper()

	svc := setupTestService(t)
	if _, err := demo.Seed(svc, demo.NewRand(7)); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	server, err := NewServer(svc, nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server
}

func TestNewServer(t *testing.T) {
	server, err := NewServer(setupTestService(t), nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.svc == nil {
		t.Error("Expected non-nil service")
	}
}

func TestNewServerNilService(t *testing.T) {
	if _, err := NewServer(nil, nil); err == nil {
		t.Error("Expected error for nil service")
	}
}

func TestHandleSaveReading(t *testing.T) {
	server := setupSeededServer(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		input      saveReadingInput
		wantStress int
		wantHR     int
		wantStatus string
		wantErr    bool
	}{
		{
			name:       "in range",
			input:      saveReadingInput{UserID: "3", StressLevel: 45, HeartRate: 70, BloodOxygen: 98, SleepQuality: 80},
			wantStress: 45,
			wantHR:     70,
			wantStatus: "good",
		},
		{
			name:       "out of range is clamped",
			input:      saveReadingInput{UserID: "3", StressLevel: 999, HeartRate: 5, BloodOxygen: 98, SleepQuality: 80},
			wantStress: 100,
			wantHR:     30,
			wantStatus: "alert",
		},
		{
			name:    "missing user",
			input:   saveReadingInput{StressLevel: 10, HeartRate: 70, BloodOxygen: 98, SleepQuality: 80},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleSaveReading(ctx, &mcp.CallToolRequest{}, tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if output.StressLevel != tt.wantStress {
				t.Errorf("StressLevel = %d, want %d", output.StressLevel, tt.wantStress)
			}
			if output.HeartRate != tt.wantHR {
				t.Errorf("HeartRate = %d, want %d", output.HeartRate, tt.wantHR)
			}
			if output.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", output.Status, tt.wantStatus)
			}
			if output.Date != "2025-03-14" {
				t.Errorf("Date = %s, want 2025-03-14", output.Date)
			}
			if output.Message == "" {
				t.Error("Expected non-empty Message")
			}
		})
	}
}

func TestHandleSaveReadingAmendsToday(t *testing.T) {
	server := setupSeededServer(t)
	ctx := context.Background()

	before, err := server.svc.ReadingsForOwner("3")
	if err != nil {
		t.Fatalf("ReadingsForOwner failed: %v", err)
	}
	today, _ := server.svc.TodaysReading("3")

	_, output, err := server.handleSaveReading(ctx, &mcp.CallToolRequest{},
		saveReadingInput{UserID: "3", StressLevel: 999, HeartRate: 70, BloodOxygen: 98, SleepQuality: 80, MedicalContext: "  tired  "})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if output.ID != today.ID {
		t.Errorf("ID = %s, want existing %s", output.ID, today.ID)
	}
	if output.MedicalContext != "tired" {
		t.Errorf("MedicalContext = %q, want tired", output.MedicalContext)
	}
	after, _ := server.svc.ReadingsForOwner("3")
	if len(after) != len(before) {
		t.Errorf("reading count changed from %d to %d", len(before), len(after))
	}
}

func TestHandleEditReading(t *testing.T) {
	server := setupSeededServer(t)
	ctx := context.Background()

	sleep := 40
	_, output, err := server.handleEditReading(ctx, &mcp.CallToolRequest{},
		editReadingInput{UserID: "4", SleepQuality: &sleep})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output.SleepQuality != 40 {
		t.Errorf("SleepQuality = %d, want 40", output.SleepQuality)
	}
	if output.StressLevel != 82 {
		t.Errorf("StressLevel = %d, want today's 82", output.StressLevel)
	}

	_, _, err = server.handleEditReading(ctx, &mcp.CallToolRequest{}, editReadingInput{UserID: "4"})
	if !errors.Is(err, wellness.ErrEmptyPatch) {
		t.Errorf("Expected empty patch error, got %v", err)
	}
}

func TestHandleGetToday(t *testing.T) {
	server := setupSeededServer(t)
	ctx := context.Background()

	_, output, err := server.handleGetToday(ctx, &mcp.CallToolRequest{}, todayInput{UserID: "4"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	r, ok := output.(readingOutput)
	if !ok {
		t.Fatalf("output type = %T, want readingOutput", output)
	}
	if r.StressLevel != 82 || r.Advice != wellness.StressAdvice(82) || r.Risk != "High Risk" {
		t.Errorf("unexpected reading output: %+v", r)
	}

	_, output, err = server.handleGetToday(ctx, &mcp.CallToolRequest{}, todayInput{UserID: "2"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := output.(simpleOutput); !ok {
		t.Errorf("output type = %T, want simpleOutput for user without reading", output)
	}
}

func TestHandleListReadings(t *testing.T) {
	server := setupSeededServer(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   listReadingsInput
		wantLen int
	}{
		{"all", listReadingsInput{UserID: "3"}, 7},
		{"limit", listReadingsInput{UserID: "3", Limit: 3}, 3},
		{"today only", listReadingsInput{UserID: "3", Start: "2025-03-14", End: "2025-03-14"}, 1},
		{"open start", listReadingsInput{UserID: "3", End: "2025-03-09"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleListReadings(ctx, &mcp.CallToolRequest{}, tt.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			readings, ok := output.([]*models.Reading)
			if !ok {
				t.Fatalf("output type = %T, want []*models.Reading", output)
			}
			if len(readings) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(readings), tt.wantLen)
			}
		})
	}
}

func TestReadingToolsMedicalContext(t *testing.T) {
	server := setupSeededServer(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		acting   string
		wantNote bool
	}{
		{"no acting user", "", false},
		{"teammate", "3", false},
		{"coach", "2", false},
		{"owner", "4", true},
		{"provider on team", "5", true},
		{"admin", "1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleGetToday(ctx, &mcp.CallToolRequest{}, todayInput{UserID: "4", ActingUserID: tt.acting})
			if err != nil {
				t.Fatalf("get_today: %v", err)
			}
			today := output.(readingOutput)
			if got := today.MedicalContext != ""; got != tt.wantNote {
				t.Errorf("get_today context = %q, want visible=%v", today.MedicalContext, tt.wantNote)
			}
			if today.StressLevel != 82 {
				t.Errorf("get_today stress = %d, want 82", today.StressLevel)
			}

			_, output, err = server.handleListReadings(ctx, &mcp.CallToolRequest{}, listReadingsInput{UserID: "4", ActingUserID: tt.acting, Limit: 1})
			if err != nil {
				t.Fatalf("list_readings: %v", err)
			}
			readings := output.([]*models.Reading)
			if got := readings[0].MedicalContext != nil; got != tt.wantNote {
				t.Errorf("list_readings context = %v, want visible=%v", readings[0].MedicalContext, tt.wantNote)
			}

			_, output, err = server.handleTeamOverview(ctx, &mcp.CallToolRequest{}, teamInput{Team: "Team Alpha", ActingUserID: tt.acting})
			if err != nil {
				t.Fatalf("team_overview: %v", err)
			}
			for _, row := range output.([]wellness.TeamMemberRow) {
				if row.User.ID != "4" {
					continue
				}
				if got := row.Latest.MedicalContext != nil; got != tt.wantNote {
					t.Errorf("team_overview context = %v, want visible=%v", row.Latest.MedicalContext, tt.wantNote)
				}
			}
		})
	}

	if _, _, err := server.handleGetToday(ctx, &mcp.CallToolRequest{}, todayInput{UserID: "4", ActingUserID: "nobody"}); err == nil {
		t.Error("Expected error for unknown acting user")
	}
}

func TestHandleEditReadingEchoesOnlySuppliedContext(t *testing.T) {
	server := setupSeededServer(t)
	ctx := context.Background()

	stress := 81
	_, out, err := server.handleEditReading(ctx, &mcp.CallToolRequest{}, editReadingInput{UserID: "4", StressLevel: &stress})
	if err != nil {
		t.Fatalf("edit_reading: %v", err)
	}
	if out.MedicalContext != "" {
		t.Errorf("MedicalContext = %q, want it withheld when not edited", out.MedicalContext)
	}

	note := "Cleared by physio"
	_, out, err = server.handleEditReading(ctx, &mcp.CallToolRequest{}, editReadingInput{UserID: "4", MedicalContext: &note})
	if err != nil {
		t.Fatalf("edit_reading: %v", err)
	}
	if out.MedicalContext != note {
		t.Errorf("MedicalContext = %q, want %q", out.MedicalContext, note)
	}
}

func TestHandleListReadingsEmptyAndInvalid(t *testing.T) {
	server := setupSeededServer(t)
	ctx := context.Background()

	_, output, err := server.handleListReadings(ctx, &mcp.CallToolRequest{}, listReadingsInput{UserID: "2"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := output.(map[string]any); !ok {
		t.Errorf("output type = %T, want message map", output)
	}

	_, _, err = server.handleListReadings(ctx, &mcp.CallToolRequest{}, listReadingsInput{UserID: "3", Start: "14/03/2025"})
	if err == nil {
		t.Error("Expected error for malformed start date")
	}
}

func TestHandleGetTrend(t *testing.T) {
	server := setupSeededServer(t)
	ctx := context.Background()

	_, output, err := server.handleGetTrend(ctx, &mcp.CallToolRequest{}, userInput{UserID: "2"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	points := output.(map[string]any)["trend"].([]wellness.TrendPoint)
	if len(points) != 7 {
		t.Fatalf("len(trend) = %d, want 7", len(points))
	}
	for _, p := range points {
		if p.StressLevel != 0 {
			t.Errorf("%s stress = %d, want 0 for user without readings", p.Date, p.StressLevel)
		}
	}
	if points[6].DayLabel != "Today" {
		t.Errorf("last label = %s, want Today", points[6].DayLabel)
	}
}

func TestHandleCompareTeam(t *testing.T) {
	server := setupSeededServer(t)
	ctx := context.Background()

	_, output, err := server.handleCompareTeam(ctx, &mcp.CallToolRequest{}, userInput{UserID: "3"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output.TeamAverage != 63.5 {
		t.Errorf("TeamAverage = %v, want 63.5", output.TeamAverage)
	}
	if output.MemberCount != 2 {
		t.Errorf("MemberCount = %d, want 2", output.MemberCount)
	}
	if !strings.Contains(output.Summary, "below team average") {
		t.Errorf("Summary = %q, want below", output.Summary)
	}

	if _, _, err := server.handleCompareTeam(ctx, &mcp.CallToolRequest{}, userInput{UserID: "nobody"}); err == nil {
		t.Error("Expected error for unknown user")
	}
}

func TestHandleTeamOverview(t *testing.T) {
	server := setupSeededServer(t)
	ctx := context.Background()

	_, output, err := server.handleTeamOverview(ctx, &mcp.CallToolRequest{}, teamInput{Team: "Team Alpha"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	rows, ok := output.([]wellness.TeamMemberRow)
	if !ok {
		t.Fatalf("output type = %T, want []wellness.TeamMemberRow", output)
	}
	if len(rows) != 2 {
		t.Errorf("len(rows) = %d, want 2 athletes", len(rows))
	}

	_, output, err = server.handleTeamOverview(ctx, &mcp.CallToolRequest{}, teamInput{Team: "Team Omega"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := output.(map[string]any); !ok {
		t.Errorf("output type = %T, want message map", output)
	}
}

func TestHandleMedicalHistory(t *testing.T) {
	server := setupSeededServer(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		acting  string
		target  string
		wantLen int
	}{
		{"admin sees all", "1", "3", 2},
		{"provider on same team", "5", "4", 2},
		{"coach sees nothing", "2", "3", 0},
		{"athlete sees nothing, even own", "3", "3", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleMedicalHistory(ctx, &mcp.CallToolRequest{},
				medicalHistoryInput{UserID: tt.target, ActingUserID: tt.acting})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			records := output.(map[string]any)["records"].([]*models.MedicalRecord)
			if len(records) != tt.wantLen {
				t.Errorf("len(records) = %d, want %d", len(records), tt.wantLen)
			}
		})
	}

	_, _, err := server.handleMedicalHistory(ctx, &mcp.CallToolRequest{},
		medicalHistoryInput{UserID: "3", ActingUserID: "ghost"})
	if err == nil {
		t.Error("Expected error for unknown acting user")
	}
}

func TestHandleAddMedicalRecord(t *testing.T) {
	server := setupSeededServer(t)
	ctx := context.Background()

	input := addMedicalRecordInput{
		UserID:        "3",
		Condition:     "Shin Splints",
		DiagnosisDate: "2025-02-01",
		Notes:         "Reduce mileage",
	}

	input.ActingUserID = "2"
	if _, _, err := server.handleAddMedicalRecord(ctx, &mcp.CallToolRequest{}, input); err == nil {
		t.Error("Expected coach to be refused")
	}

	input.ActingUserID = "5"
	_, output, err := server.handleAddMedicalRecord(ctx, &mcp.CallToolRequest{}, input)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(output.Message, "Shin Splints") {
		t.Errorf("Message = %q", output.Message)
	}

	admin, _ := server.svc.Principal("1")
	records, _ := server.svc.VisibleMedicalHistory("3", admin)
	if len(records) != 3 {
		t.Errorf("len(records) = %d, want 3", len(records))
	}
}

func TestHandleListUsers(t *testing.T) {
	server := setupSeededServer(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   listUsersInput
		wantLen int
	}{
		{"all", listUsersInput{}, 5},
		{"athletes", listUsersInput{Role: "athlete"}, 2},
		{"team", listUsersInput{Team: "admin"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleListUsers(ctx, &mcp.CallToolRequest{}, tt.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			users := output.([]*models.User)
			if len(users) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(users), tt.wantLen)
			}
			for _, u := range users {
				if u.PasswordHash != "" {
					t.Errorf("user %s exposes password hash", u.ID)
				}
			}
		})
	}

	if _, _, err := server.handleListUsers(ctx, &mcp.CallToolRequest{}, listUsersInput{Role: "owner"}); err == nil {
		t.Error("Expected error for invalid role")
	}
}

func readResource(t *testing.T, result *mcp.ReadResourceResult, err error, uri string) map[string]any {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Contents) != 1 {
		t.Fatalf("len(Contents) = %d, want 1", len(result.Contents))
	}
	c := result.Contents[0]
	if c.URI != uri {
		t.Errorf("URI = %s, want %s", c.URI, uri)
	}
	if c.MIMEType != "application/json" {
		t.Errorf("MIMEType = %s, want application/json", c.MIMEType)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(c.Text), &out); err != nil {
		t.Fatalf("resource text is not JSON: %v", err)
	}
	return out
}

func TestHandleUsersResource(t *testing.T) {
	server := setupSeededServer(t)
	result, err := server.handleUsersResource(context.Background(), &mcp.ReadResourceRequest{})
	out := readResource(t, result, err, usersURI)

	if out["count"].(float64) != 5 {
		t.Errorf("count = %v, want 5", out["count"])
	}
	if strings.Contains(result.Contents[0].Text, "password_hash") {
		t.Error("users resource exposes password hashes")
	}
}

func TestHandleTodayResource(t *testing.T) {
	server := setupSeededServer(t)
	result, err := server.handleTodayResource(context.Background(), &mcp.ReadResourceRequest{})
	out := readResource(t, result, err, todayURI)

	if out["date"] != "2025-03-14" {
		t.Errorf("date = %v, want 2025-03-14", out["date"])
	}
	if got := len(out["readings"].([]any)); got != 2 {
		t.Errorf("len(readings) = %d, want 2", got)
	}
}

func TestHandleTodayResourceEmpty(t *testing.T) {
	server, _ := NewServer(setupTestService(t), nil)
	result, err := server.handleTodayResource(context.Background(), &mcp.ReadResourceRequest{})
	out := readResource(t, result, err, todayURI)

	if got := len(out["readings"].([]any)); got != 0 {
		t.Errorf("len(readings) = %d, want 0", got)
	}
}

func TestHandleSummaryResource(t *testing.T) {
	server := setupSeededServer(t)
	result, err := server.handleSummaryResource(context.Background(), &mcp.ReadResourceRequest{})
	out := readResource(t, result, err, summaryURI)

	teams := out["teams"].([]any)
	if len(teams) != 1 {
		t.Fatalf("len(teams) = %d, want 1", len(teams))
	}
	alpha := teams[0].(map[string]any)
	if alpha["team"] != "Team Alpha" || alpha["team_average"].(float64) != 63.5 {
		t.Errorf("unexpected team summary: %v", alpha)
	}
	attention := out["needs_attention"].([]any)
	if len(attention) != 1 || attention[0].(map[string]any)["user_id"] != "4" {
		t.Errorf("needs_attention = %v, want only user 4", attention)
	}
}

func TestHandleGaugesResource(t *testing.T) {
	server := setupSeededServer(t)
	result, err := server.handleGaugesResource(context.Background(), &mcp.ReadResourceRequest{})
	out := readResource(t, result, err, gaugesURI)

	hr := out["heart_rate"].(map[string]any)
	if hr["min"].(float64) != 40 || hr["max"].(float64) != 180 {
		t.Errorf("heart_rate gauge = %v, want 40-180", hr)
	}
}
