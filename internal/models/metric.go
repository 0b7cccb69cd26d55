// ABOUTME: Metric enum for the four physiological readings.
// ABOUTME: Defines labels, units, and fixed physiological bounds per metric.
package models

import "fmt"

// Metric identifies one of the physiological values carried by a Reading.
type Metric string

const (
	MetricStress       Metric = "stress_level"
	MetricHeartRate    Metric = "heart_rate"
	MetricBloodOxygen  Metric = "blood_oxygen_lv"
	MetricSleepQuality Metric = "sleep_quality"
)

// Bounds is an inclusive integer range.
type Bounds struct {
	Min int
	Max int
}

// Clamp coerces v into the range.
func (b Bounds) Clamp(v int) int {
	return max(b.Min, min(b.Max, v))
}

// Contains reports whether v lies inside the range.
func (b Bounds) Contains(v int) bool {
	return v >= b.Min && v <= b.Max
}

// MetricBounds are the physiological floor and ceiling for each metric.
// They are independent of the admin-configurable GaugeSettings display range.
var MetricBounds = map[Metric]Bounds{
	MetricStress:       {Min: 0, Max: 100},
	MetricHeartRate:    {Min: 30, Max: 220},
	MetricBloodOxygen:  {Min: 70, Max: 100},
	MetricSleepQuality: {Min: 0, Max: 100},
}

// MetricUnits maps metrics to their display units.
var MetricUnits = map[Metric]string{
	MetricStress:       "%",
	MetricHeartRate:    "bpm",
	MetricBloodOxygen:  "%",
	MetricSleepQuality: "%",
}

// MetricLabels maps metrics to human-readable names.
var MetricLabels = map[Metric]string{
	MetricStress:       "Stress level",
	MetricHeartRate:    "Heart rate",
	MetricBloodOxygen:  "Blood oxygen",
	MetricSleepQuality: "Sleep quality",
}

// AllMetrics returns the metrics in display order.
var AllMetrics = []Metric{MetricStress, MetricHeartRate, MetricBloodOxygen, MetricSleepQuality}

// IsValidMetric checks if a string names a known metric.
func IsValidMetric(s string) bool {
	for _, m := range AllMetrics {
		if string(m) == s {
			return true
		}
	}
	return false
}

// RangeText renders the valid range with its unit, e.g. "30-220 bpm" or "0-100%".
func (m Metric) RangeText() string {
	b := MetricBounds[m]
	unit := MetricUnits[m]
	if unit == "%" {
		return fmt.Sprintf("%d-%d%%", b.Min, b.Max)
	}
	return fmt.Sprintf("%d-%d %s", b.Min, b.Max, unit)
}

// Metrics is one set of values submitted for a reading.
type Metrics struct {
	StressLevel    int     `json:"stress_level"`
	HeartRate      int     `json:"heart_rate"`
	BloodOxygen    int     `json:"blood_oxygen_lv"`
	SleepQuality   int     `json:"sleep_quality"`
	MedicalContext *string `json:"medical_context,omitempty"`
}

// Value returns the value recorded for metric m.
func (m Metrics) Value(metric Metric) int {
	switch metric {
	case MetricStress:
		return m.StressLevel
	case MetricHeartRate:
		return m.HeartRate
	case MetricBloodOxygen:
		return m.BloodOxygen
	case MetricSleepQuality:
		return m.SleepQuality
	}
	return 0
}

// MetricsPatch is a partial edit. Nil fields keep their current value.
type MetricsPatch struct {
	StressLevel    *int    `json:"stress_level,omitempty"`
	HeartRate      *int    `json:"heart_rate,omitempty"`
	BloodOxygen    *int    `json:"blood_oxygen_lv,omitempty"`
	SleepQuality   *int    `json:"sleep_quality,omitempty"`
	MedicalContext *string `json:"medical_context,omitempty"`
}

// HasMetrics reports whether the patch touches at least one metric value.
// A patch carrying only a medical context does not count.
func (p MetricsPatch) HasMetrics() bool {
	return p.StressLevel != nil || p.HeartRate != nil || p.BloodOxygen != nil || p.SleepQuality != nil
}
