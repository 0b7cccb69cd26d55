package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/cortitrack/internal/demo"
	"github.com/harperreed/cortitrack/internal/httpapi"
	"github.com/harperreed/cortitrack/internal/models"
	"github.com/harperreed/cortitrack/internal/storage"
	"github.com/harperreed/cortitrack/internal/wellness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

// newTestServer builds a server over an in-memory store seeded with the demo data.
func newTestServer(t *testing.T) (*httpapi.Server, *wellness.Service) {
	t.Helper()

	kv, err := storage.OpenBadgerInMemory()
	require.NoError(t, err)
	repo := storage.NewKVStore(kv, nil)
	t.Cleanup(func() { _ = repo.Close() })

	now := testNow
	metrics := httpapi.NewMetrics()
	svc := wellness.NewService(repo,
		wellness.WithClock(func() time.Time { return now }),
		wellness.WithPasswordCost(bcrypt.MinCost),
		wellness.WithUpsertHook(metrics.UpsertHook()),
	)
	_, err = demo.Seed(svc, demo.NewRand(42))
	require.NoError(t, err)
	now = now.Add(time.Hour)

	return httpapi.New(svc, metrics, nil), svc
}

func do(t *testing.T, h http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(httpapi.UserIDHeader, userID)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}

func TestPrincipalRequired(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("missing header", func(t *testing.T) {
		rr := do(t, srv, http.MethodGet, "/api/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		rr := do(t, srv, http.MethodGet, "/api/me", "ghost", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("known user", func(t *testing.T) {
		rr := do(t, srv, http.MethodGet, "/api/me", "3", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.NotContains(t, rr.Body.String(), "password_hash")
		u := decode[models.User](t, rr)
		assert.Equal(t, "Mike Chen", u.Name)
	})

	t.Run("healthz is public", func(t *testing.T) {
		rr := do(t, srv, http.MethodGet, "/healthz", "", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestSaveReading(t *testing.T) {
	t.Run("amends today's reading", func(t *testing.T) {
		srv, svc := newTestServer(t)
		before, err := svc.ReadingsForOwner("3")
		require.NoError(t, err)
		today, err := svc.TodaysReading("3")
		require.NoError(t, err)

		rr := do(t, srv, http.MethodPost, "/api/readings", "3", models.Metrics{
			StressLevel: 70, HeartRate: 80, BloodOxygen: 97, SleepQuality: 60,
		})
		require.Equal(t, http.StatusOK, rr.Code)

		var got struct {
			ID          string `json:"id"`
			StressLevel int    `json:"stress_level"`
			Status      string `json:"status"`
			Risk        string `json:"risk"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, today.ID, got.ID)
		assert.Equal(t, 70, got.StressLevel)
		assert.Equal(t, "warning", got.Status)
		assert.Equal(t, "Moderate Risk", got.Risk)

		after, err := svc.ReadingsForOwner("3")
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("out of range is rejected with field errors", func(t *testing.T) {
		srv, svc := newTestServer(t)
		rr := do(t, srv, http.MethodPost, "/api/readings", "3", models.Metrics{
			StressLevel: 999, HeartRate: 10, BloodOxygen: 97, SleepQuality: 60,
		})
		require.Equal(t, http.StatusBadRequest, rr.Code)

		resp := decode[httpapi.ErrorResponse](t, rr)
		assert.Equal(t, "validation_error", resp.Error)
		assert.Contains(t, resp.Fields, "stress_level")
		assert.Equal(t, "Heart rate must be between 30-220 bpm", resp.Fields["heart_rate"])

		today, err := svc.TodaysReading("3")
		require.NoError(t, err)
		assert.Equal(t, 45, today.StressLevel)
	})

	t.Run("athlete cannot submit for someone else", func(t *testing.T) {
		srv, _ := newTestServer(t)
		rr := do(t, srv, http.MethodPost, "/api/readings", "3", map[string]any{
			"user_id": "4", "stress_level": 10, "heart_rate": 70, "blood_oxygen_lv": 98, "sleep_quality": 80,
		})
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("coach can submit for an athlete", func(t *testing.T) {
		srv, svc := newTestServer(t)
		rr := do(t, srv, http.MethodPost, "/api/readings", "2", map[string]any{
			"user_id": "4", "stress_level": 10, "heart_rate": 70, "blood_oxygen_lv": 98, "sleep_quality": 80,
		})
		require.Equal(t, http.StatusOK, rr.Code)
		today, err := svc.TodaysReading("4")
		require.NoError(t, err)
		assert.Equal(t, 10, today.StressLevel)
	})

	t.Run("bad json", func(t *testing.T) {
		srv, _ := newTestServer(t)
		rr := do(t, srv, http.MethodPost, "/api/readings", "3", `{"stress_level":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestEditReading(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodPatch, "/api/readings/today", "4", map[string]any{"sleep_quality": 40})
	require.Equal(t, http.StatusOK, rr.Code)
	var got struct {
		StressLevel  int `json:"stress_level"`
		SleepQuality int `json:"sleep_quality"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, 82, got.StressLevel)
	assert.Equal(t, 40, got.SleepQuality)

	rr = do(t, srv, http.MethodPatch, "/api/readings/today", "4", map[string]any{"medical_context": "note"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, srv, http.MethodPatch, "/api/readings/today", "4", map[string]any{"blood_oxygen_lv": 50})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReadingQueries(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name    string
		path    string
		wantLen int
	}{
		{"all", "/api/users/3/readings", 7},
		{"limit", "/api/users/3/readings?limit=2", 2},
		{"range", "/api/users/3/readings?start=2025-03-12&end=2025-03-13", 2},
		{"no readings", "/api/users/2/readings", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodGet, tt.path, "1", nil)
			require.Equal(t, http.StatusOK, rr.Code)
			readings := decode[[]models.Reading](t, rr)
			assert.Len(t, readings, tt.wantLen)
		})
	}

	rr := do(t, srv, http.MethodGet, "/api/users/3/readings?limit=abc", "1", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, srv, http.MethodGet, "/api/users/3/readings?start=yesterday", "1", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTodaysReading(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/users/4/readings/today", "4", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), wellness.StressAdvice(82))

	rr = do(t, srv, http.MethodGet, "/api/users/2/readings/today", "2", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestReadingMedicalContextVisibility(t *testing.T) {
	srv, _ := newTestServer(t)
	const note = "Elevated stress levels noted. Monitor closely."

	tests := []struct {
		name    string
		path    string
		userID  string
		visible bool
	}{
		{"owner today", "/api/users/4/readings/today", "4", true},
		{"admin today", "/api/users/4/readings/today", "1", true},
		{"provider on team today", "/api/users/4/readings/today", "5", true},
		{"teammate today", "/api/users/4/readings/today", "3", false},
		{"coach today", "/api/users/4/readings/today", "2", false},
		{"teammate latest", "/api/users/4/readings?limit=1", "3", false},
		{"provider latest", "/api/users/4/readings?limit=1", "5", true},
		{"coach overview", "/api/teams/Team%20Alpha/overview", "2", false},
		{"provider overview", "/api/teams/Team%20Alpha/overview", "5", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodGet, tt.path, tt.userID, nil)
			require.Equal(t, http.StatusOK, rr.Code)
			body := rr.Body.String()
			assert.Contains(t, body, `"stress_level":82`)
			if tt.visible {
				assert.Contains(t, body, note)
			} else {
				assert.NotContains(t, body, note)
				assert.NotContains(t, body, "medical_context")
			}
		})
	}
}

func TestTrend(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/users/4/trend", "4", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	points := decode[[]wellness.TrendPoint](t, rr)
	require.Len(t, points, 7)
	assert.Equal(t, "2025-03-08", points[0].Date)
	assert.Equal(t, "Today", points[6].DayLabel)
	assert.Equal(t, 82, points[6].StressLevel)
}

func TestCompareAndOverview(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/users/4/comparison", "4", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var c struct {
		Team        string  `json:"team"`
		TeamAverage float64 `json:"team_average"`
		Summary     string  `json:"summary"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&c))
	assert.Equal(t, "Team Alpha", c.Team)
	assert.InDelta(t, 63.5, c.TeamAverage, 0.001)
	assert.Contains(t, c.Summary, "above team average")

	rr = do(t, srv, http.MethodGet, "/api/users/nobody/comparison", "4", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, srv, http.MethodGet, "/api/teams/Team%20Alpha/overview", "2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rows := decode[[]wellness.TeamMemberRow](t, rr)
	assert.Len(t, rows, 2)
	for _, row := range rows {
		assert.Empty(t, row.User.PasswordHash)
	}
}

func TestMedicalHistoryAccess(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name    string
		acting  string
		target  string
		wantLen int
	}{
		{"admin", "1", "4", 2},
		{"provider on team", "5", "3", 2},
		{"coach", "2", "3", 0},
		{"athlete", "4", "4", 0},
		{"admin, unknown target", "1", "nobody", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodGet, "/api/users/"+tt.target+"/medical-history", tt.acting, nil)
			require.Equal(t, http.StatusOK, rr.Code)
			records := decode[[]models.MedicalRecord](t, rr)
			assert.Len(t, records, tt.wantLen)
		})
	}
}

func TestAddMedicalRecord(t *testing.T) {
	srv, _ := newTestServer(t)
	body := map[string]string{"condition": "Shin Splints", "diagnosis_date": "2025-02-01", "notes": "rest"}

	rr := do(t, srv, http.MethodPost, "/api/users/3/medical-history", "2", body)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, srv, http.MethodPost, "/api/users/3/medical-history", "5", body)
	require.Equal(t, http.StatusCreated, rr.Code)
	rec := decode[models.MedicalRecord](t, rr)
	assert.Equal(t, "3", rec.OwnerID)
	assert.NotEmpty(t, rec.ID)

	rr = do(t, srv, http.MethodPost, "/api/users/3/medical-history", "1", map[string]string{"diagnosis_date": "2025-02-01"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUserAdministration(t *testing.T) {
	srv, svc := newTestServer(t)
	newUser := map[string]string{
		"name": "Liam Ortiz", "email": "liam@mail.com", "password": "secret123",
		"role": "athlete", "team": "Team Alpha", "dob": "2000-02-02",
	}

	rr := do(t, srv, http.MethodPost, "/api/users", "2", newUser)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, srv, http.MethodPost, "/api/users", "1", newUser)
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decode[models.User](t, rr)
	assert.NotEmpty(t, created.ID)

	history, err := svc.ReadingsForOwner(created.ID)
	require.NoError(t, err)
	assert.Len(t, history, 7)
	today, err := svc.TodaysReading(created.ID)
	require.NoError(t, err)
	assert.Equal(t, demo.NewAthleteStress, today.StressLevel)

	rr = do(t, srv, http.MethodPost, "/api/users", "1", newUser)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "duplicate email is a field error")

	rr = do(t, srv, http.MethodGet, "/api/users?role=athlete", "1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]models.User](t, rr), 3)

	rr = do(t, srv, http.MethodPatch, "/api/users/"+created.ID, created.ID, map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, srv, http.MethodPatch, "/api/users/"+created.ID, created.ID, map[string]string{"email": "mike@mail.com"})
	require.Equal(t, http.StatusBadRequest, rr.Code, "taken email is a field error")
	assert.Contains(t, rr.Body.String(), `"email"`)

	rr = do(t, srv, http.MethodPatch, "/api/users/"+created.ID, created.ID, map[string]string{"name": "Liam O."})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Liam O.", decode[models.User](t, rr).Name)

	rr = do(t, srv, http.MethodDelete, "/api/users/"+created.ID, "1", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	history, err = svc.ReadingsForOwner(created.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	rr = do(t, srv, http.MethodGet, "/api/users/"+created.ID, "1", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGaugesAndSettings(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/gauges", "3", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	g := decode[models.GaugeSettings](t, rr)
	assert.Equal(t, 180.0, g.HeartRate.Max)

	update := map[string]any{"heart_rate": map[string]any{"min": 50, "max": 200}}
	rr = do(t, srv, http.MethodPut, "/api/gauges", "3", update)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, srv, http.MethodPut, "/api/gauges", "1", map[string]any{"heart_rate": map[string]any{"min": 200, "max": 50}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, srv, http.MethodPut, "/api/gauges", "1", update)
	require.Equal(t, http.StatusOK, rr.Code)
	g = decode[models.GaugeSettings](t, rr)
	assert.Equal(t, 200.0, g.HeartRate.Max)
	assert.Equal(t, 100.0, g.BloodOxygen.Max, "unspecified gauges keep defaults")

	rr = do(t, srv, http.MethodGet, "/api/settings", "3", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	us := decode[models.UserSettings](t, rr)
	assert.True(t, us.Notification)
	assert.True(t, us.Sound)

	rr = do(t, srv, http.MethodPut, "/api/settings", "3", map[string]bool{"sound": false})
	require.Equal(t, http.StatusOK, rr.Code)
	us = decode[models.UserSettings](t, rr)
	assert.Equal(t, "3", us.UserID)
	assert.True(t, us.Notification)
	assert.False(t, us.Sound)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/readings", "3", models.Metrics{
		StressLevel: 30, HeartRate: 65, BloodOxygen: 99, SleepQuality: 90,
	})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, srv, http.MethodGet, "/api/users/3/comparison", "3", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, srv, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()

	assert.Contains(t, body, `cortitrack_readings_saved_total{outcome="amended"} 1`)
	assert.Contains(t, body, `cortitrack_team_stress_average{team="Team Alpha"} 56`)
	assert.True(t, strings.Contains(body, `route="/api/readings"`), "request counter should carry the route pattern")
}
