// ABOUTME: Team aggregation: a subject's latest stress against the team mean.
// ABOUTME: Every aggregate is total; absent readings count as zero.
package wellness

import (
	"fmt"
	"math"

	"github.com/harperreed/cortitrack/internal/models"
)

// TeamComparison compares one subject's latest stress with the mean latest
// stress of a member set.
type TeamComparison struct {
	SubjectID    string  `json:"subject_id"`
	SubjectValue int     `json:"subject_value"`
	TeamAverage  float64 `json:"team_average"`
	Delta        float64 `json:"delta"`
	DeltaPercent float64 `json:"delta_percent"`
	MemberCount  int     `json:"member_count"`
}

// AtOrAbove reports whether the subject is at or above the team average.
func (c TeamComparison) AtOrAbove() bool {
	return c.Delta >= 0
}

// Summary renders the comparison the way the dashboard phrases it.
func (c TeamComparison) Summary() string {
	direction := "below"
	if c.AtOrAbove() {
		direction = "above"
	}
	return fmt.Sprintf("%.0f%% %s team average (%.1f)", c.DeltaPercent, direction, c.TeamAverage)
}

func compare(subjectID string, subjectValue int, memberValues []int) TeamComparison {
	c := TeamComparison{SubjectID: subjectID, SubjectValue: subjectValue, MemberCount: len(memberValues)}
	if len(memberValues) > 0 {
		sum := 0
		for _, v := range memberValues {
			sum += v
		}
		c.TeamAverage = float64(sum) / float64(len(memberValues))
	}
	c.Delta = float64(subjectValue) - c.TeamAverage
	if c.TeamAverage != 0 {
		c.DeltaPercent = math.Abs(c.Delta) / c.TeamAverage * 100
	}
	return c
}

// latestStress returns ownerID's latest stress level, 0 when there is no reading.
func (s *Service) latestStress(ownerID string) (int, error) {
	r, err := s.LatestReading(ownerID)
	if err != nil {
		return 0, err
	}
	if r == nil {
		return 0, nil
	}
	return r.StressLevel, nil
}

// TeamStressComparison compares subjectID's latest stress with the mean of
// memberIDs' latest stress. Members without readings contribute 0; an empty
// member set averages to 0.
func (s *Service) TeamStressComparison(subjectID string, memberIDs []string) (TeamComparison, error) {
	subject, err := s.latestStress(subjectID)
	if err != nil {
		return TeamComparison{}, err
	}
	values := make([]int, 0, len(memberIDs))
	for _, id := range memberIDs {
		v, err := s.latestStress(id)
		if err != nil {
			return TeamComparison{}, err
		}
		values = append(values, v)
	}
	return compare(subjectID, subject, values), nil
}

// TeamMembers returns the athletes whose team label equals team. An empty
// label matches nobody.
func (s *Service) TeamMembers(team string) ([]*models.User, error) {
	members := []*models.User{}
	if team == "" {
		return members, nil
	}
	users, err := s.repo.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for _, u := range users {
		if u.Role == models.RoleAthlete && u.Team == team {
			members = append(members, u)
		}
	}
	return members, nil
}

// CompareWithTeam resolves subjectID's team and compares against its athletes.
func (s *Service) CompareWithTeam(subjectID string) (TeamComparison, error) {
	subject, err := s.GetUser(subjectID)
	if err != nil {
		return TeamComparison{}, err
	}
	members, err := s.TeamMembers(subject.Team)
	if err != nil {
		return TeamComparison{}, err
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return s.TeamStressComparison(subjectID, ids)
}

// TeamMemberRow is one athlete's line in a team overview.
type TeamMemberRow struct {
	User       *models.User    `json:"user"`
	Latest     *models.Reading `json:"latest,omitempty"`
	Status     Status          `json:"status"`
	Risk       string          `json:"risk"`
	Comparison TeamComparison  `json:"comparison"`
}

// TeamOverview lists every athlete on team with their latest reading and
// standing against the team average. Latest readings are shown as requester
// may see them.
func (s *Service) TeamOverview(team string, requester models.Principal) ([]TeamMemberRow, error) {
	members, err := s.TeamMembers(team)
	if err != nil {
		return nil, err
	}

	latest := make([]*models.Reading, len(members))
	values := make([]int, len(members))
	for i, m := range members {
		r, err := s.LatestReading(m.ID)
		if err != nil {
			return nil, err
		}
		if r != nil {
			values[i] = r.StressLevel
		}
		if latest[i], err = s.VisibleReading(requester, r); err != nil {
			return nil, err
		}
	}

	rows := make([]TeamMemberRow, 0, len(members))
	for i, m := range members {
		rows = append(rows, TeamMemberRow{
			User:       m.Public(),
			Latest:     latest[i],
			Status:     StressStatus(values[i]),
			Risk:       RiskLevel(values[i]),
			Comparison: compare(m.ID, values[i], values),
		})
	}
	return rows, nil
}
