// ABOUTME: Route handlers for readings, trends, teams, medical history and admin data.
// ABOUTME: Readings submitted over HTTP are validated, not clamped.
package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/harperreed/cortitrack/internal/demo"
	"github.com/harperreed/cortitrack/internal/logging"
	"github.com/harperreed/cortitrack/internal/models"
	"github.com/harperreed/cortitrack/internal/wellness"
)

type readingResponse struct {
	*models.Reading
	Status wellness.Status `json:"status"`
	Advice string          `json:"advice"`
	Risk   string          `json:"risk"`
}

func newReadingResponse(r *models.Reading) readingResponse {
	return readingResponse{
		Reading: r,
		Status:  wellness.StressStatus(r.StressLevel),
		Advice:  wellness.StressAdvice(r.StressLevel),
		Risk:    wellness.RiskLevel(r.StressLevel),
	}
}

// ownerFor picks the reading owner: the acting user unless an admin or coach
// names someone else.
func ownerFor(p models.Principal, requested string) (string, error) {
	if requested == "" || requested == p.ID {
		return p.ID, nil
	}
	if p.Role != models.RoleAdmin && p.Role != models.RoleCoach {
		return "", wellness.ErrUnauthorized
	}
	return requested, nil
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.GetUser(principalFrom(r.Context()).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u.Public())
}

func (s *Server) handleSaveReading(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		models.Metrics
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	owner, err := ownerFor(principalFrom(r.Context()), req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := wellness.Validate(req.Metrics); err != nil {
		writeError(w, r, err)
		return
	}

	reading, err := s.svc.UpsertTodaysReading(owner, req.Metrics)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logging.FromContext(r.Context(), s.logger).Info("reading saved", "owner", owner, "day", reading.CalendarDay)
	s.writeReading(w, r, reading)
}

func (s *Server) handleEditReading(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		models.MetricsPatch
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	owner, err := ownerFor(principalFrom(r.Context()), req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := wellness.ValidatePatch(req.MetricsPatch); err != nil {
		writeError(w, r, err)
		return
	}

	reading, err := s.svc.EditLatestReading(owner, req.MetricsPatch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeReading(w, r, reading)
}

func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()

	var (
		readings []*models.Reading
		err      error
	)
	switch {
	case q.Get("start") != "" || q.Get("end") != "":
		start, end := q.Get("start"), q.Get("end")
		if start == "" {
			start = "0000-01-01"
		}
		if end == "" {
			end = s.svc.Today()
		}
		readings, err = s.svc.ReadingsInRange(id, start, end)
	case q.Get("limit") != "":
		n, convErr := strconv.Atoi(q.Get("limit"))
		if convErr != nil || n <= 0 {
			writeError(w, r, &wellness.ValidationError{FieldErrors: map[string]string{"limit": "limit must be a positive integer"}})
			return
		}
		readings, err = s.svc.RecentTrend(id, n)
	default:
		readings, err = s.svc.ReadingsForOwner(id)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	visible, err := s.svc.VisibleReadings(principalFrom(r.Context()), readings)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, visible)
}

func (s *Server) handleTodaysReading(w http.ResponseWriter, r *http.Request) {
	reading, err := s.svc.TodaysReading(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if reading == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeReading(w, r, reading)
}

// writeReading responds with reading as the caller may see it.
func (s *Server) writeReading(w http.ResponseWriter, r *http.Request, reading *models.Reading) {
	visible, err := s.svc.VisibleReading(principalFrom(r.Context()), reading)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newReadingResponse(visible))
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	points, err := s.svc.Last7Days(chi.URLParam(r, "id"), s.svc.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, err := s.svc.GetUser(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.svc.CompareWithTeam(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.metrics.ObserveTeamAverage(u.Team, c.TeamAverage)

	writeJSON(w, http.StatusOK, struct {
		wellness.TeamComparison
		Team    string `json:"team"`
		Summary string `json:"summary"`
	}{c, u.Team, c.Summary()})
}

func (s *Server) handleTeamOverview(w http.ResponseWriter, r *http.Request) {
	team := chi.URLParam(r, "team")
	rows, err := s.svc.TeamOverview(team, principalFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(rows) > 0 {
		s.metrics.ObserveTeamAverage(team, rows[0].Comparison.TeamAverage)
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleMedicalHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.svc.VisibleMedicalHistory(chi.URLParam(r, "id"), principalFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleAddMedicalRecord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Condition     string `json:"condition"`
		DiagnosisDate string `json:"diagnosis_date"`
		Notes         string `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rec := models.NewMedicalRecord(chi.URLParam(r, "id"), req.Condition, req.DiagnosisDate, req.Notes).
		WithCreatedAt(s.svc.Now())
	if err := s.svc.AddMedicalRecord(principalFrom(r.Context()), rec); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.ListUsers()
	if err != nil {
		writeError(w, r, err)
		return
	}
	role, team := r.URL.Query().Get("role"), r.URL.Query().Get("team")
	out := make([]*models.User, 0, len(users))
	for _, u := range users {
		if role != "" && string(u.Role) != role {
			continue
		}
		if team != "" && u.Team != team {
			continue
		}
		out = append(out, u.Public())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.GetUser(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u.Public())
}

type userRequest struct {
	ID          string       `json:"id"`
	Name        *string      `json:"name"`
	Email       *string      `json:"email"`
	Password    *string      `json:"password"`
	Role        *models.Role `json:"role"`
	Team        *string      `json:"team"`
	DateOfBirth *string      `json:"dob"`
	Sex         *string      `json:"sex"`
	Picture     *string      `json:"picture"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// handleCreateUser is admin only. New athletes get a generated week of
// history so their dashboard is not empty.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if principalFrom(r.Context()).Role != models.RoleAdmin {
		writeError(w, r, wellness.ErrUnauthorized)
		return
	}
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := s.svc.CreateUser(wellness.NewUserInput{
		ID:          req.ID,
		Name:        deref(req.Name),
		Email:       deref(req.Email),
		Password:    deref(req.Password),
		Role:        deref(req.Role),
		Team:        deref(req.Team),
		DateOfBirth: deref(req.DateOfBirth),
		Sex:         deref(req.Sex),
		Picture:     deref(req.Picture),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	if u.Role == models.RoleAthlete {
		if _, err := demo.SeedAthlete(s.svc, u.ID, demo.NewAthleteStress, s.svc.Now(), demo.NewRand(0)); err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, u.Public())
}

// handleUpdateUser lets users edit themselves; admins may edit anyone and
// are the only ones who can change a role.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	id := chi.URLParam(r, "id")

	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if p.Role != models.RoleAdmin && (p.ID != id || req.Role != nil) {
		writeError(w, r, wellness.ErrUnauthorized)
		return
	}

	u, err := s.svc.UpdateUser(id, wellness.UserPatch{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		Team:        req.Team,
		DateOfBirth: req.DateOfBirth,
		Sex:         req.Sex,
		Picture:     req.Picture,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u.Public())
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if principalFrom(r.Context()).Role != models.RoleAdmin {
		writeError(w, r, wellness.ErrUnauthorized)
		return
	}
	if err := s.svc.DeleteUser(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetGauges(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.GaugeSettings()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handlePutGauges(w http.ResponseWriter, r *http.Request) {
	g := models.DefaultGaugeSettings()
	if err := decodeJSON(r, g); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.UpdateGaugeSettings(principalFrom(r.Context()), g); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	us, err := s.svc.UserSettings(principalFrom(r.Context()).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, us)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	id := principalFrom(r.Context()).ID
	us, err := s.svc.UserSettings(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := decodeJSON(r, us); err != nil {
		writeError(w, r, err)
		return
	}
	us.UserID = id
	if err := s.svc.UpdateUserSettings(us); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, us)
}
