// ABOUTME: Stress banding shared by athlete, coach and provider views.
package wellness

// Status is a coarse stress classification.
type Status string

const (
	StatusGood    Status = "good"
	StatusWarning Status = "warning"
	StatusAlert   Status = "alert"
)

// StressStatus bands a stress level: good below 60, warning below 75, else alert.
func StressStatus(level int) Status {
	switch {
	case level < 60:
		return StatusGood
	case level < 75:
		return StatusWarning
	default:
		return StatusAlert
	}
}

// StressAdvice is the athlete-facing recommendation for a stress level.
func StressAdvice(level int) string {
	switch {
	case level < 60:
		return "All good! Keep up the great work."
	case level < 75:
		return "Need to take a break. Consider some relaxation."
	case level < 85:
		return "Need consultation. Please speak with your coach."
	default:
		return "Need counselling. Immediate attention required."
	}
}

// RiskLevel is the provider-facing risk label for a stress level.
func RiskLevel(level int) string {
	switch {
	case level < 60:
		return "Low Risk"
	case level < 75:
		return "Moderate Risk"
	case level < 85:
		return "High Risk"
	default:
		return "Critical Risk"
	}
}
