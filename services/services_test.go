package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Sarthaklad1034/HackMatrix/database"
	"github.com/Sarthaklad1034/HackMatrix/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const testSecret = "test-secret-that-is-at-least-32-characters"

// registration opens at base, the event runs from day 10 to day 12
var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db    *gorm.DB
	now   time.Time
	cache *memoryCache

	users      *UserService
	hackathons *HackathonService
	teams      *TeamService
	projects   *ProjectService
	scoring    *ScoringService

	seq int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error = %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	f := &fixture{db: db, now: base.Add(24 * time.Hour), cache: newMemoryCache()}
	clock := func() time.Time { return f.now }

	f.users = NewUserService(db, NewTokenIssuer(testSecret, time.Hour))
	f.hackathons = NewHackathonService(db, clock, f.cache)
	f.teams = NewTeamService(db, clock, f.cache)
	f.projects = NewProjectService(db, clock, f.cache)
	f.scoring = NewScoringService(db, clock, f.cache)
	return f
}

func (f *fixture) user(t *testing.T, role models.Role) *models.User {
	t.Helper()
	f.seq++
	u := &models.User{
		Name:     fmt.Sprintf("%s %d", role, f.seq),
		Email:    fmt.Sprintf("%s%d@example.com", role, f.seq),
		Password: "unused",
		Role:     role,
	}
	if err := f.db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) hackathon(t *testing.T, organizer *models.User, maxTeamSize int) *models.Hackathon {
	t.Helper()
	f.seq++
	h, err := f.hackathons.Create(context.Background(), organizer, HackathonInput{
		Name:                  ptr(fmt.Sprintf("Hack %d", f.seq)),
		Theme:                 ptr("Climate"),
		Tags:                  &[]string{"ai", "green"},
		RegistrationStartDate: ptr(base),
		RegistrationEndDate:   ptr(base.Add(7 * 24 * time.Hour)),
		StartDate:             ptr(base.Add(10 * 24 * time.Hour)),
		EndDate:               ptr(base.Add(12 * 24 * time.Hour)),
		MaxTeamSize:           ptr(maxTeamSize),
	})
	if err != nil {
		t.Fatalf("create hackathon: %v", err)
	}
	return h
}

func (f *fixture) team(t *testing.T, leader *models.User, h *models.Hackathon) *models.Team {
	t.Helper()
	f.seq++
	team, err := f.teams.CreateTeam(context.Background(), leader, CreateTeamInput{
		Name:        fmt.Sprintf("Team %d", f.seq),
		HackathonID: h.ID,
	})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	return team
}

// join invites the user into the team and accepts on their behalf.
func (f *fixture) join(t *testing.T, leader *models.User, team *models.Team, member *models.User) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.teams.InviteMember(ctx, leader, team.ID, member.ID); err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := f.teams.AcceptInvite(ctx, member, team.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
}

func (f *fixture) project(t *testing.T, leader *models.User, team *models.Team) *models.Project {
	t.Helper()
	saved := f.now
	f.now = base.Add(10*24*time.Hour + time.Hour)
	defer func() { f.now = saved }()

	p, err := f.projects.Create(context.Background(), leader, completeProjectInput(team))
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func completeProjectInput(team *models.Team) ProjectInput {
	return ProjectInput{
		TeamID:        team.ID,
		HackathonID:   team.HackathonID,
		Title:         ptr("Carbon Lens"),
		Description:   ptr("Tracks emissions"),
		Technologies:  &[]string{"go"},
		GithubRepoURL: ptr("https://github.com/acme/carbon-lens"),
		DemoVideoURL:  ptr("https://youtu.be/abc123"),
	}
}

func ptr[T any](v T) *T {
	return &v
}

func wantKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("err = %v, want %v", err, kind)
	}
}

func count(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}

type memoryCache struct {
	mu          sync.Mutex
	data        map[uuid.UUID][]byte
	invalidated int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[uuid.UUID][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, id uuid.UUID) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[id]
	return d, ok, nil
}

func (c *memoryCache) Set(_ context.Context, id uuid.UUID, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[id] = data
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, id)
	c.invalidated++
	return nil
}
