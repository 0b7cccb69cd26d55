// ABOUTME: GaugeSettings: admin-configurable display range and color bands per metric.
// ABOUTME: Stored settings are decoded over defaults and validated at load time.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// Default band colors.
const (
	DefaultColorLow    = "#10b981"
	DefaultColorMedium = "#f59e0b"
	DefaultColorHigh   = "#ef4444"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// GaugeColors are the colors for the low (<=33%), medium (<=66%) and high bands.
type GaugeColors struct {
	Low    string `json:"low" yaml:"low"`
	Medium string `json:"medium" yaml:"medium"`
	High   string `json:"high" yaml:"high"`
}

// Gauge is the display configuration for one metric.
type Gauge struct {
	Min    float64     `json:"min" yaml:"min"`
	Max    float64     `json:"max" yaml:"max"`
	Colors GaugeColors `json:"colors" yaml:"colors"`
}

// GaugeSettings holds one Gauge per metric.
type GaugeSettings struct {
	StressLevel  Gauge `json:"stress_level" yaml:"stress_level"`
	HeartRate    Gauge `json:"heart_rate" yaml:"heart_rate"`
	BloodOxygen  Gauge `json:"blood_oxygen_lv" yaml:"blood_oxygen_lv"`
	SleepQuality Gauge `json:"sleep_quality" yaml:"sleep_quality"`
}

func defaultGauge(lo, hi float64) Gauge {
	return Gauge{
		Min: lo,
		Max: hi,
		Colors: GaugeColors{
			Low:    DefaultColorLow,
			Medium: DefaultColorMedium,
			High:   DefaultColorHigh,
		},
	}
}

// DefaultGaugeSettings returns the factory gauge configuration.
func DefaultGaugeSettings() *GaugeSettings {
	return &GaugeSettings{
		StressLevel:  defaultGauge(0, 100),
		HeartRate:    defaultGauge(40, 180),
		BloodOxygen:  defaultGauge(90, 100),
		SleepQuality: defaultGauge(0, 100),
	}
}

// ParseGaugeSettings decodes stored settings over the defaults, so fields
// missing from data keep their default value, then validates the result.
func ParseGaugeSettings(data []byte) (*GaugeSettings, error) {
	s := DefaultGaugeSettings()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode gauge settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Gauge returns a pointer to the gauge for metric m, or nil for unknown metrics.
func (s *GaugeSettings) Gauge(m Metric) *Gauge {
	switch m {
	case MetricStress:
		return &s.StressLevel
	case MetricHeartRate:
		return &s.HeartRate
	case MetricBloodOxygen:
		return &s.BloodOxygen
	case MetricSleepQuality:
		return &s.SleepQuality
	}
	return nil
}

// Validate checks every gauge has min < max and #rrggbb colors.
func (s *GaugeSettings) Validate() error {
	var errs []error
	for _, m := range AllMetrics {
		g := s.Gauge(m)
		if g.Min >= g.Max {
			errs = append(errs, fmt.Errorf("%s: min %.0f must be below max %.0f", m, g.Min, g.Max))
		}
		bands := [][2]string{{"low", g.Colors.Low}, {"medium", g.Colors.Medium}, {"high", g.Colors.High}}
		for _, b := range bands {
			if !hexColor.MatchString(b[1]) {
				errs = append(errs, fmt.Errorf("%s: %s color %q is not #rrggbb", m, b[0], b[1]))
			}
		}
	}
	return errors.Join(errs...)
}

// Percent positions v inside the gauge range, clamped to [0,100].
func (g Gauge) Percent(v float64) float64 {
	if g.Max <= g.Min {
		return 0
	}
	return min(max((v-g.Min)/(g.Max-g.Min)*100, 0), 100)
}

// ColorFor returns the band color for value v.
func (g Gauge) ColorFor(v float64) string {
	p := g.Percent(v)
	switch {
	case p <= 33:
		return g.Colors.Low
	case p <= 66:
		return g.Colors.Medium
	default:
		return g.Colors.High
	}
}
