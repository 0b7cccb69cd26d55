// ABOUTME: MCP tool implementations for the wellness tracker.
// ABOUTME: Readings, trends, team comparison and access-filtered medical history.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/cortitrack/internal/models"
	"github.com/harperreed/cortitrack/internal/wellness"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// save_reading
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "save_reading",
		Description: "Record today's stress, heart rate, blood oxygen and sleep quality for a user. Out-of-range values are clamped.",
	}, s.handleSaveReading)

	// edit_reading
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "edit_reading",
		Description: "Change some of today's values for a user; unset values keep today's reading",
	}, s.handleEditReading)

	// get_today
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_today",
		Description: "Get a user's reading for today with stress status and advice",
	}, s.handleGetToday)

	// list_readings
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_readings",
		Description: "List a user's readings, optionally limited to a date range or the most recent N",
	}, s.handleListReadings)

	// get_trend
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_trend",
		Description: "Get a user's stress level for each of the last 7 days (0 for days without a reading)",
	}, s.handleGetTrend)

	// compare_team
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "compare_team",
		Description: "Compare a user's latest stress level with the average of their team's athletes",
	}, s.handleCompareTeam)

	// team_overview
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "team_overview",
		Description: "List every athlete on a team with latest reading, status and risk",
	}, s.handleTeamOverview)

	// medical_history
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "medical_history",
		Description: "List a user's medical history as seen by the acting user; unauthorized callers get an empty list",
	}, s.handleMedicalHistory)

	// add_medical_record
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_medical_record",
		Description: "Add a condition to a user's medical history (admins, or providers on the same team)",
	}, s.handleAddMedicalRecord)

	// list_users
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_users",
		Description: "List users, optionally filtered by role or team",
	}, s.handleListUsers)
}

type saveReadingInput struct {
	UserID         string `json:"user_id" jsonschema:"ID of the user the reading belongs to"`
	StressLevel    int    `json:"stress_level" jsonschema:"Stress level 0-100"`
	HeartRate      int    `json:"heart_rate" jsonschema:"Heart rate 30-220 bpm"`
	BloodOxygen    int    `json:"blood_oxygen_lv" jsonschema:"Blood oxygen 70-100 percent"`
	SleepQuality   int    `json:"sleep_quality" jsonschema:"Sleep quality 0-100"`
	MedicalContext string `json:"medical_context,omitempty" jsonschema:"Optional free-text context for the day"`
}

type editReadingInput struct {
	UserID         string  `json:"user_id" jsonschema:"ID of the user whose reading is edited"`
	StressLevel    *int    `json:"stress_level,omitempty" jsonschema:"New stress level 0-100"`
	HeartRate      *int    `json:"heart_rate,omitempty" jsonschema:"New heart rate 30-220 bpm"`
	BloodOxygen    *int    `json:"blood_oxygen_lv,omitempty" jsonschema:"New blood oxygen 70-100 percent"`
	SleepQuality   *int    `json:"sleep_quality,omitempty" jsonschema:"New sleep quality 0-100"`
	MedicalContext *string `json:"medical_context,omitempty" jsonschema:"Replacement context note"`
}

type userInput struct {
	UserID string `json:"user_id" jsonschema:"ID of the user"`
}

type todayInput struct {
	UserID       string `json:"user_id" jsonschema:"ID of the user"`
	ActingUserID string `json:"acting_user_id,omitempty" jsonschema:"ID of the user viewing; medical context is hidden unless they may see it"`
}

type listReadingsInput struct {
	UserID       string `json:"user_id" jsonschema:"ID of the user"`
	ActingUserID string `json:"acting_user_id,omitempty" jsonschema:"ID of the user viewing; medical context is hidden unless they may see it"`
	Start        string `json:"start,omitempty" jsonschema:"First day to include (YYYY-MM-DD)"`
	End          string `json:"end,omitempty" jsonschema:"Last day to include (YYYY-MM-DD)"`
	Limit        int    `json:"limit,omitempty" jsonschema:"Only return the most recent N readings"`
}

type teamInput struct {
	Team         string `json:"team" jsonschema:"Team label"`
	ActingUserID string `json:"acting_user_id,omitempty" jsonschema:"ID of the user viewing; medical context is hidden unless they may see it"`
}

type medicalHistoryInput struct {
	UserID       string `json:"user_id" jsonschema:"ID of the user whose history is requested"`
	ActingUserID string `json:"acting_user_id" jsonschema:"ID of the user making the request"`
}

type addMedicalRecordInput struct {
	UserID        string `json:"user_id" jsonschema:"ID of the user the record belongs to"`
	ActingUserID  string `json:"acting_user_id" jsonschema:"ID of the user making the request"`
	Condition     string `json:"condition" jsonschema:"Condition name"`
	DiagnosisDate string `json:"diagnosis_date" jsonschema:"Diagnosis date (YYYY-MM-DD)"`
	Notes         string `json:"notes,omitempty" jsonschema:"Free-text notes"`
}

type listUsersInput struct {
	Role string `json:"role,omitempty" jsonschema:"Filter by role (athlete, coach, admin, healthcare_provider)"`
	Team string `json:"team,omitempty" jsonschema:"Filter by team label"`
}

type readingOutput struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	Date           string `json:"date"`
	StressLevel    int    `json:"stress_level"`
	HeartRate      int    `json:"heart_rate"`
	BloodOxygen    int    `json:"blood_oxygen_lv"`
	SleepQuality   int    `json:"sleep_quality"`
	MedicalContext string `json:"medical_context,omitempty"`
	Status         string `json:"status"`
	Advice         string `json:"advice"`
	Risk           string `json:"risk"`
	Message        string `json:"message"`
}

type comparisonOutput struct {
	UserID       string  `json:"user_id"`
	StressLevel  int     `json:"stress_level"`
	TeamAverage  float64 `json:"team_average"`
	Delta        float64 `json:"delta"`
	DeltaPercent float64 `json:"delta_percent"`
	MemberCount  int     `json:"member_count"`
	Summary      string  `json:"summary"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

func toReadingOutput(r *models.Reading, message string) readingOutput {
	out := readingOutput{
		ID:           r.ID,
		UserID:       r.OwnerID,
		Date:         r.CalendarDay,
		StressLevel:  r.StressLevel,
		HeartRate:    r.HeartRate,
		BloodOxygen:  r.BloodOxygen,
		SleepQuality: r.SleepQuality,
		Status:       string(wellness.StressStatus(r.StressLevel)),
		Advice:       wellness.StressAdvice(r.StressLevel),
		Risk:         wellness.RiskLevel(r.StressLevel),
		Message:      message,
	}
	if r.MedicalContext != nil {
		out.MedicalContext = *r.MedicalContext
	}
	return out
}

// viewer resolves an optional acting user. Without one the caller sees
// readings without medical context.
func (s *Server) viewer(actingUserID string) (models.Principal, error) {
	if actingUserID == "" {
		return models.Principal{}, nil
	}
	p, err := s.svc.Principal(actingUserID)
	if err != nil {
		return models.Principal{}, fmt.Errorf("unknown acting user %s: %w", actingUserID, err)
	}
	return p, nil
}

func (s *Server) handleSaveReading(ctx context.Context, req *mcp.CallToolRequest, input saveReadingInput) (*mcp.CallToolResult, readingOutput, error) {
	m := models.Metrics{
		StressLevel:  input.StressLevel,
		HeartRate:    input.HeartRate,
		BloodOxygen:  input.BloodOxygen,
		SleepQuality: input.SleepQuality,
	}
	if note := strings.TrimSpace(input.MedicalContext); note != "" {
		m.MedicalContext = &note
	}

	r, err := s.svc.UpsertTodaysReading(input.UserID, m)
	if err != nil {
		return nil, readingOutput{}, fmt.Errorf("failed to save reading: %w", err)
	}

	return nil, toReadingOutput(r, fmt.Sprintf("Saved reading for %s on %s", r.OwnerID, r.CalendarDay)), nil
}

func (s *Server) handleEditReading(ctx context.Context, req *mcp.CallToolRequest, input editReadingInput) (*mcp.CallToolResult, readingOutput, error) {
	patch := models.MetricsPatch{
		StressLevel:    input.StressLevel,
		HeartRate:      input.HeartRate,
		BloodOxygen:    input.BloodOxygen,
		SleepQuality:   input.SleepQuality,
		MedicalContext: input.MedicalContext,
	}

	r, err := s.svc.EditLatestReading(input.UserID, patch)
	if err != nil {
		return nil, readingOutput{}, fmt.Errorf("failed to edit reading: %w", err)
	}

	out := toReadingOutput(r, fmt.Sprintf("Updated reading for %s on %s", r.OwnerID, r.CalendarDay))
	if input.MedicalContext == nil {
		// Only echo context the caller supplied.
		out.MedicalContext = ""
	}
	return nil, out, nil
}

func (s *Server) handleGetToday(ctx context.Context, req *mcp.CallToolRequest, input todayInput) (*mcp.CallToolResult, any, error) {
	p, err := s.viewer(input.ActingUserID)
	if err != nil {
		return nil, nil, err
	}
	r, err := s.svc.TodaysReading(input.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get today's reading: %w", err)
	}
	if r, err = s.svc.VisibleReading(p, r); err != nil {
		return nil, nil, fmt.Errorf("failed to get today's reading: %w", err)
	}
	if r == nil {
		return nil, simpleOutput{Message: fmt.Sprintf("No reading for %s today (%s).", input.UserID, s.svc.Today())}, nil
	}
	return nil, toReadingOutput(r, "Today's reading"), nil
}

func (s *Server) handleListReadings(ctx context.Context, req *mcp.CallToolRequest, input listReadingsInput) (*mcp.CallToolResult, any, error) {
	p, err := s.viewer(input.ActingUserID)
	if err != nil {
		return nil, nil, err
	}

	var readings []*models.Reading
	switch {
	case input.Start != "" || input.End != "":
		start, end := input.Start, input.End
		if start == "" {
			start = "0000-01-01"
		}
		if end == "" {
			end = s.svc.Today()
		}
		readings, err = s.svc.ReadingsInRange(input.UserID, start, end)
	case input.Limit > 0:
		readings, err = s.svc.RecentTrend(input.UserID, input.Limit)
	default:
		readings, err = s.svc.ReadingsForOwner(input.UserID)
	}
	if err == nil {
		readings, err = s.svc.VisibleReadings(p, readings)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list readings: %w", err)
	}

	if len(readings) == 0 {
		return nil, map[string]any{"message": "No readings found."}, nil
	}
	return nil, readings, nil
}

func (s *Server) handleGetTrend(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, any, error) {
	points, err := s.svc.Last7Days(input.UserID, s.svc.Now())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build trend: %w", err)
	}
	return nil, map[string]any{"user_id": input.UserID, "trend": points}, nil
}

func (s *Server) handleCompareTeam(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, comparisonOutput, error) {
	c, err := s.svc.CompareWithTeam(input.UserID)
	if err != nil {
		return nil, comparisonOutput{}, fmt.Errorf("failed to compare with team: %w", err)
	}
	return nil, comparisonOutput{
		UserID:       c.SubjectID,
		StressLevel:  c.SubjectValue,
		TeamAverage:  c.TeamAverage,
		Delta:        c.Delta,
		DeltaPercent: c.DeltaPercent,
		MemberCount:  c.MemberCount,
		Summary:      c.Summary(),
	}, nil
}

func (s *Server) handleTeamOverview(ctx context.Context, req *mcp.CallToolRequest, input teamInput) (*mcp.CallToolResult, any, error) {
	p, err := s.viewer(input.ActingUserID)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.svc.TeamOverview(input.Team, p)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build team overview: %w", err)
	}
	if len(rows) == 0 {
		return nil, map[string]any{"message": fmt.Sprintf("No athletes on team %q.", input.Team)}, nil
	}
	return nil, rows, nil
}

func (s *Server) handleMedicalHistory(ctx context.Context, req *mcp.CallToolRequest, input medicalHistoryInput) (*mcp.CallToolResult, any, error) {
	requester, err := s.svc.Principal(input.ActingUserID)
	if err != nil {
		return nil, nil, fmt.Errorf("unknown acting user %s: %w", input.ActingUserID, err)
	}

	records, err := s.svc.VisibleMedicalHistory(input.UserID, requester)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list medical history: %w", err)
	}
	return nil, map[string]any{"user_id": input.UserID, "records": records}, nil
}

func (s *Server) handleAddMedicalRecord(ctx context.Context, req *mcp.CallToolRequest, input addMedicalRecordInput) (*mcp.CallToolResult, simpleOutput, error) {
	requester, err := s.svc.Principal(input.ActingUserID)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("unknown acting user %s: %w", input.ActingUserID, err)
	}

	rec := models.NewMedicalRecord(input.UserID, input.Condition, input.DiagnosisDate, input.Notes).WithCreatedAt(s.svc.Now())
	if err := s.svc.AddMedicalRecord(requester, rec); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to add medical record: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Added %s to %s's medical history (ID: %s)", rec.Condition, rec.OwnerID, rec.ID),
	}, nil
}

func (s *Server) handleListUsers(ctx context.Context, req *mcp.CallToolRequest, input listUsersInput) (*mcp.CallToolResult, any, error) {
	if input.Role != "" && !models.IsValidRole(input.Role) {
		return nil, nil, fmt.Errorf("invalid role: %s", input.Role)
	}

	users, err := s.svc.ListUsers()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list users: %w", err)
	}

	filtered := make([]*models.User, 0, len(users))
	for _, u := range users {
		if input.Role != "" && string(u.Role) != input.Role {
			continue
		}
		if input.Team != "" && u.Team != input.Team {
			continue
		}
		filtered = append(filtered, u.Public())
	}

	if len(filtered) == 0 {
		return nil, map[string]any{"message": "No users found."}, nil
	}
	return nil, filtered, nil
}

