// ABOUTME: Clamping and range validation for reading metrics.
// ABOUTME: Storage paths clamp silently; interactive surfaces validate first.
package wellness

import (
	"fmt"

	"github.com/harperreed/cortitrack/internal/models"
)

// Clamp coerces every metric into its physiological bounds. It never fails
// and passes the medical context through unchanged.
func Clamp(m models.Metrics) models.Metrics {
	return models.Metrics{
		StressLevel:    models.MetricBounds[models.MetricStress].Clamp(m.StressLevel),
		HeartRate:      models.MetricBounds[models.MetricHeartRate].Clamp(m.HeartRate),
		BloodOxygen:    models.MetricBounds[models.MetricBloodOxygen].Clamp(m.BloodOxygen),
		SleepQuality:   models.MetricBounds[models.MetricSleepQuality].Clamp(m.SleepQuality),
		MedicalContext: m.MedicalContext,
	}
}

// Validate reports every out-of-range metric, keyed by metric name, e.g.
// "heart_rate": "Heart rate must be between 30-220 bpm". It returns nil when
// all values are in range.
func Validate(m models.Metrics) error {
	var v ValidationError
	for _, metric := range models.AllMetrics {
		checkRange(&v, metric, m.Value(metric))
	}
	return v.orNil()
}

// ValidatePatch checks only the fields a patch sets.
func ValidatePatch(p models.MetricsPatch) error {
	var v ValidationError
	fields := []struct {
		metric models.Metric
		value  *int
	}{
		{models.MetricStress, p.StressLevel},
		{models.MetricHeartRate, p.HeartRate},
		{models.MetricBloodOxygen, p.BloodOxygen},
		{models.MetricSleepQuality, p.SleepQuality},
	}
	for _, f := range fields {
		if f.value != nil {
			checkRange(&v, f.metric, *f.value)
		}
	}
	return v.orNil()
}

func checkRange(v *ValidationError, metric models.Metric, value int) {
	if !models.MetricBounds[metric].Contains(value) {
		v.add(string(metric), fmt.Sprintf("%s must be between %s", models.MetricLabels[metric], metric.RangeText()))
	}
}
