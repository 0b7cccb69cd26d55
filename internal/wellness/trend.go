// ABOUTME: Trend projection over stored readings.
// ABOUTME: Produces a zero-filled 7-day stress series and a recent-readings window.
package wellness

import (
	"fmt"
	"time"

	"github.com/harperreed/cortitrack/internal/models"
)

// DefaultRecentCount is the window RecentTrend uses when n is not positive.
const DefaultRecentCount = 10

// TrendPoint is one day of the 7-day stress chart.
type TrendPoint struct {
	Date        string `json:"date"`
	StressLevel int    `json:"stress_level"`
	DayLabel    string `json:"day"`
}

// Last7Days returns exactly seven points, today-6 through today, oldest
// first. Days without a reading have stress 0.
func (s *Service) Last7Days(ownerID string, today time.Time) ([]TrendPoint, error) {
	readings, err := s.ReadingsForOwner(ownerID)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]int, len(readings))
	for _, r := range readings {
		byDay[r.CalendarDay] = r.StressLevel
	}

	today = today.In(s.loc)
	points := make([]TrendPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		key := models.DayOf(d)
		points = append(points, TrendPoint{
			Date:        key,
			StressLevel: byDay[key],
			DayLabel:    dayLabel(d, i),
		})
	}
	return points, nil
}

func dayLabel(d time.Time, daysAgo int) string {
	switch daysAgo {
	case 0:
		return "Today"
	case 1:
		return "Yesterday"
	default:
		return fmt.Sprintf("%d/%d", int(d.Month()), d.Day())
	}
}

// RecentTrend returns the last n readings in chronological order.
func (s *Service) RecentTrend(ownerID string, n int) ([]*models.Reading, error) {
	if n <= 0 {
		n = DefaultRecentCount
	}
	readings, err := s.ReadingsForOwner(ownerID)
	if err != nil {
		return nil, err
	}
	if len(readings) > n {
		readings = readings[len(readings)-n:]
	}
	return readings, nil
}
