// ABOUTME: Prometheus collectors for the HTTP surface.
// ABOUTME: Counts saved readings, tracks team stress averages and request outcomes.
package httpapi

import (
	"net/http"
	"strconv"

	"github.com/harperreed/cortitrack/internal/models"
	"github.com/harperreed/cortitrack/internal/wellness"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	registry        *prometheus.Registry
	readingsSaved   *prometheus.CounterVec
	teamStress      *prometheus.GaugeVec
	requestsHandled *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		readingsSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cortitrack",
			Name:      "readings_saved_total",
			Help:      "Daily readings saved, by whether the day's reading was created or amended.",
		}, []string{"outcome"}),
		teamStress: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "cortitrack",
			Name:      "team_stress_average",
			Help:      "Mean latest stress level of a team's athletes at the last comparison.",
		}, []string{"team"}),
		requestsHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cortitrack",
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, by method, route and status code.",
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(m.readingsSaved, m.teamStress, m.requestsHandled)
	return m
}

// UpsertHook returns a service hook that counts saved readings.
func (m *Metrics) UpsertHook() wellness.UpsertHook {
	return func(_ *models.Reading, created bool) {
		outcome := "amended"
		if created {
			outcome = "created"
		}
		m.readingsSaved.WithLabelValues(outcome).Inc()
	}
}

// ObserveTeamAverage records the latest computed average for team.
func (m *Metrics) ObserveTeamAverage(team string, avg float64) {
	if team == "" {
		return
	}
	m.teamStress.WithLabelValues(team).Set(avg)
}

func (m *Metrics) observeRequest(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	m.requestsHandled.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
