// ABOUTME: MCP resource implementations for the wellness tracker.
// ABOUTME: Provides cortitrack://users, today, summary and gauges resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/harperreed/cortitrack/internal/models"
	"github.com/harperreed/cortitrack/internal/wellness"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	usersURI   = "cortitrack://users"
	todayURI   = "cortitrack://today"
	summaryURI = "cortitrack://summary"
	gaugesURI  = "cortitrack://gauges"
)

func (s *Server) registerResources() {
	// cortitrack://users - Everyone on the dashboard
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         usersURI,
		Name:        "Users",
		Description: "All users with role and team",
		MIMEType:    "application/json",
	}, s.handleUsersResource)

	// cortitrack://today - Readings captured today
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         todayURI,
		Name:        "Today's Readings",
		Description: "Every user's reading for today with stress status",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	// cortitrack://summary - Per-team averages and athletes needing attention
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Team Summary",
		Description: "Average latest stress per team plus athletes in the alert band",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)

	// cortitrack://gauges - Display configuration
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         gaugesURI,
		Name:        "Gauge Settings",
		Description: "Display range and color bands for each metric",
		MIMEType:    "application/json",
	}, s.handleGaugesResource)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// Resource handlers

func (s *Server) handleUsersResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	users, err := s.svc.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	public := make([]*models.User, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}
	return jsonResource(usersURI, map[string]any{
		"users": public,
		"count": len(public),
	})
}

type todayEntry struct {
	UserID  string          `json:"user_id"`
	Name    string          `json:"name"`
	Reading *models.Reading `json:"reading"`
	Status  wellness.Status `json:"status"`
	Advice  string          `json:"advice"`
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	users, err := s.svc.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	entries := []todayEntry{}
	for _, u := range users {
		r, err := s.svc.TodaysReading(u.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get today's reading: %w", err)
		}
		if r == nil {
			continue
		}
		// Resources have no viewer, so medical context is never included.
		if r, err = s.svc.VisibleReading(models.Principal{}, r); err != nil {
			return nil, fmt.Errorf("failed to get today's reading: %w", err)
		}
		entries = append(entries, todayEntry{
			UserID:  u.ID,
			Name:    u.Name,
			Reading: r,
			Status:  wellness.StressStatus(r.StressLevel),
			Advice:  wellness.StressAdvice(r.StressLevel),
		})
	}

	return jsonResource(todayURI, map[string]any{
		"date":     s.svc.Today(),
		"readings": entries,
	})
}

type teamSummary struct {
	Team        string  `json:"team"`
	Athletes    int     `json:"athletes"`
	TeamAverage float64 `json:"team_average"`
}

type attentionEntry struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Team        string `json:"team"`
	StressLevel int    `json:"stress_level"`
	Risk        string `json:"risk"`
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	users, err := s.svc.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	seen := map[string]bool{}
	var labels []string
	for _, u := range users {
		if u.Role == models.RoleAthlete && u.Team != "" && !seen[u.Team] {
			seen[u.Team] = true
			labels = append(labels, u.Team)
		}
	}
	sort.Strings(labels)

	teams := []teamSummary{}
	attention := []attentionEntry{}
	for _, label := range labels {
		rows, err := s.svc.TeamOverview(label, models.Principal{})
		if err != nil {
			return nil, fmt.Errorf("failed to build team overview: %w", err)
		}
		summary := teamSummary{Team: label, Athletes: len(rows)}
		for _, row := range rows {
			summary.TeamAverage = row.Comparison.TeamAverage
			if row.Status == wellness.StatusAlert {
				attention = append(attention, attentionEntry{
					UserID:      row.User.ID,
					Name:        row.User.Name,
					Team:        label,
					StressLevel: row.Comparison.SubjectValue,
					Risk:        row.Risk,
				})
			}
		}
		teams = append(teams, summary)
	}

	return jsonResource(summaryURI, map[string]any{
		"generated_at":    s.svc.Now(),
		"teams":           teams,
		"needs_attention": attention,
	})
}

func (s *Server) handleGaugesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	g, err := s.svc.GaugeSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get gauge settings: %w", err)
	}
	return jsonResource(gaugesURI, g)
}
