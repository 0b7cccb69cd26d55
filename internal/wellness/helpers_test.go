// ABOUTME: Shared test helpers: a settable clock and an in-memory service.
package wellness

import (
	"testing"
	"time"

	"github.com/harperreed/cortitrack/internal/models"
	"github.com/harperreed/cortitrack/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

var day0 = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (*Service, *testClock) {
	t.Helper()
	kv, err := storage.OpenBadgerInMemory()
	if err != nil {
		t.Fatalf("OpenBadgerInMemory failed: %v", err)
	}
	repo := storage.NewKVStore(kv, nil)
	t.Cleanup(func() { _ = repo.Close() })

	clock := &testClock{t: day0}
	base := []Option{WithClock(clock.Now), WithPasswordCost(bcrypt.MinCost)}
	return NewService(repo, append(base, opts...)...), clock
}

func mustCreateUser(t *testing.T, s *Service, id, name string, role models.Role, team string) *models.User {
	t.Helper()
	u, err := s.CreateUser(NewUserInput{
		ID:       id,
		Name:     name,
		Email:    id + "@example.com",
		Password: "12345678",
		Role:     role,
		Team:     team,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", id, err)
	}
	return u
}

func mustUpsert(t *testing.T, s *Service, owner string, stress int) *models.Reading {
	t.Helper()
	r, err := s.UpsertTodaysReading(owner, models.Metrics{StressLevel: stress, HeartRate: 70, BloodOxygen: 98, SleepQuality: 80})
	if err != nil {
		t.Fatalf("UpsertTodaysReading(%s) failed: %v", owner, err)
	}
	return r
}

func intPtr(v int) *int { return &v }
