package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/Sarthaklad1034/HackMatrix/models"
	"github.com/google/uuid"
)

func weight(w float64) *float64 {
	return &w
}

func TestWeightedMean(t *testing.T) {
	tests := []struct {
		name     string
		criteria []models.ScoreCriterion
		want     float64
	}{
		{"weighted", []models.ScoreCriterion{{Score: 8, Weight: weight(2)}, {Score: 6, Weight: weight(1)}}, 22.0 / 3.0},
		{"empty", nil, 0},
		{"default weight", []models.ScoreCriterion{{Score: 4}, {Score: 8}}, 6},
		{"zero weights", []models.ScoreCriterion{{Score: 9, Weight: weight(0)}}, 0},
	}
	for _, tt := range tests {
		if got := WeightedMean(tt.criteria); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: WeightedMean() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMean(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Fatalf("Mean(nil) = %v, want 0", got)
	}
	if got := Mean([]float64{9, 6, 0}); got != 5 {
		t.Fatalf("Mean() = %v, want 5", got)
	}
}

func TestRankProjects(t *testing.T) {
	a := models.Project{ID: uuid.New(), FinalScore: 90}
	b := models.Project{ID: uuid.New(), FinalScore: 70}
	c := models.Project{ID: uuid.New(), FinalScore: 95}
	projects := []models.Project{a, b, c}

	RankProjects(projects)

	want := map[uuid.UUID]int{a.ID: 2, b.ID: 3, c.ID: 1}
	for _, p := range projects {
		if p.Rank != want[p.ID] {
			t.Errorf("project with score %v rank = %d, want %d", p.FinalScore, p.Rank, want[p.ID])
		}
	}

	// a second pass over already-ranked input gives the same answer
	RankProjects(projects)
	for _, p := range projects {
		if p.Rank != want[p.ID] {
			t.Fatalf("re-rank changed %v to %d", p.FinalScore, p.Rank)
		}
	}
}

func TestRankProjectsTieBreak(t *testing.T) {
	early := base
	late := base.Add(time.Hour)
	first := models.Project{ID: uuid.New(), FinalScore: 8, SubmissionDate: &early}
	second := models.Project{ID: uuid.New(), FinalScore: 8, SubmissionDate: &late}
	unsubmitted := models.Project{ID: uuid.New(), FinalScore: 8}
	banned := models.Project{ID: uuid.New(), FinalScore: 10, Team: &models.Team{Disqualified: true}}

	projects := []models.Project{unsubmitted, banned, second, first}
	RankProjects(projects)

	order := []uuid.UUID{first.ID, second.ID, unsubmitted.ID, banned.ID}
	for i, id := range order {
		if projects[i].ID != id {
			t.Fatalf("position %d = %s, want %s", i, projects[i].ID, id)
		}
	}
	if projects[3].Rank != 0 {
		t.Fatalf("disqualified rank = %d, want 0", projects[3].Rank)
	}
	if projects[2].Rank != 3 {
		t.Fatalf("unsubmitted rank = %d, want 3", projects[2].Rank)
	}
}

type scoringSetup struct {
	org, judge, judge2 *models.User
	leader             *models.User
	h                  *models.Hackathon
	team               *models.Team
	project            *models.Project
}

func setupScoring(t *testing.T, f *fixture) scoringSetup {
	t.Helper()
	ctx := context.Background()
	s := scoringSetup{
		org:    f.user(t, models.RoleOrganizer),
		judge:  f.user(t, models.RoleJudge),
		judge2: f.user(t, models.RoleJudge),
	}
	s.h = f.hackathon(t, s.org, 4)
	for _, j := range []*models.User{s.judge, s.judge2} {
		if _, err := f.hackathons.AddJudge(ctx, s.org, s.h.ID, j.ID); err != nil {
			t.Fatal(err)
		}
	}
	s.leader = f.user(t, models.RoleParticipant)
	s.team = f.team(t, s.leader, s.h)
	s.project = f.project(t, s.leader, s.team)
	return s
}

func TestSubmitScoreUpserts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := setupScoring(t, f)

	first := SubmitScoreInput{
		HackathonID:   s.h.ID,
		ScoreCriteria: []models.ScoreCriterion{{Name: "Innovation", Score: 8, Weight: weight(2)}, {Name: "Design", Score: 6, Weight: weight(1)}},
	}
	got, err := f.scoring.SubmitScore(ctx, s.judge, s.project.ID, first)
	if err != nil {
		t.Fatalf("SubmitScore() error = %v", err)
	}
	if math.Abs(got.TotalScore-22.0/3.0) > 1e-9 {
		t.Fatalf("total = %v, want 22/3", got.TotalScore)
	}

	second := SubmitScoreInput{
		HackathonID:     s.h.ID,
		ScoreCriteria:   []models.ScoreCriterion{{Name: "Innovation", Score: 4}},
		OverallComments: "changed my mind",
	}
	got, err = f.scoring.SubmitScore(ctx, s.judge, s.project.ID, second)
	if err != nil {
		t.Fatalf("re-submit error = %v", err)
	}
	if got.TotalScore != 4 || got.OverallComments != "changed my mind" || len(got.Criteria) != 1 {
		t.Fatalf("score after re-submit = %+v", got)
	}

	if n := count(t, f.db, &models.Score{}, "project_id = ? AND judge_id = ?", s.project.ID, s.judge.ID); n != 1 {
		t.Fatalf("score rows = %d, want 1", n)
	}

	p, err := f.projects.Get(ctx, s.project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.FinalScore != 4 || len(p.Scores) != 1 {
		t.Fatalf("final score = %v with %d scores, want 4 with 1", p.FinalScore, len(p.Scores))
	}
}

func TestFinalScoreAveragesJudges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := setupScoring(t, f)

	if _, err := f.scoring.SubmitScore(ctx, s.judge, s.project.ID, SubmitScoreInput{
		HackathonID:   s.h.ID,
		ScoreCriteria: []models.ScoreCriterion{{Name: "Innovation", Score: 9}},
	}); err != nil {
		t.Fatal(err)
	}
	// no criteria scores 0 and still counts
	if _, err := f.scoring.SubmitScore(ctx, s.judge2, s.project.ID, SubmitScoreInput{HackathonID: s.h.ID}); err != nil {
		t.Fatal(err)
	}

	p, err := f.projects.Get(ctx, s.project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.FinalScore != 4.5 {
		t.Fatalf("final score = %v, want 4.5", p.FinalScore)
	}
}

func TestSubmitScoreChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := setupScoring(t, f)
	stranger := f.user(t, models.RoleJudge)

	_, err := f.scoring.SubmitScore(ctx, stranger, s.project.ID, SubmitScoreInput{HackathonID: s.h.ID})
	wantKind(t, err, ErrForbidden)

	_, err = f.scoring.SubmitScore(ctx, s.judge, s.project.ID, SubmitScoreInput{
		HackathonID:   s.h.ID,
		ScoreCriteria: []models.ScoreCriterion{{Name: "Innovation", Score: 11}, {Name: "Design", Score: 5, Weight: weight(-1)}},
	})
	wantKind(t, err, ErrValidation)
	if fields := FieldsOf(err); len(fields) != 2 {
		t.Fatalf("fields = %+v, want score and weight failures", fields)
	}

	_, err = f.scoring.SubmitScore(ctx, s.judge, uuid.New(), SubmitScoreInput{HackathonID: s.h.ID})
	wantKind(t, err, ErrNotFound)

	other := f.hackathon(t, s.org, 4)
	if _, err := f.hackathons.AddJudge(ctx, s.org, other.ID, s.judge.ID); err != nil {
		t.Fatal(err)
	}
	_, err = f.scoring.SubmitScore(ctx, s.judge, s.project.ID, SubmitScoreInput{HackathonID: other.ID})
	wantKind(t, err, ErrValidation)
}

type recordingPublisher struct {
	calls []uuid.UUID
}

func (p *recordingPublisher) Publish(id uuid.UUID, _ any) {
	p.calls = append(p.calls, id)
}

func TestFinalizeRankings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := setupScoring(t, f)
	pub := &recordingPublisher{}
	f.scoring.WithPublisher(pub)

	scores := []float64{9, 7}
	projects := []*models.Project{s.project}
	second := f.user(t, models.RoleParticipant)
	projects = append(projects, f.project(t, second, f.team(t, second, s.h)))
	for i, p := range projects {
		if _, err := f.scoring.SubmitScore(ctx, s.judge, p.ID, SubmitScoreInput{
			HackathonID:   s.h.ID,
			ScoreCriteria: []models.ScoreCriterion{{Name: "Innovation", Score: scores[i]}},
		}); err != nil {
			t.Fatal(err)
		}
	}

	_, err := f.scoring.FinalizeRankings(ctx, s.judge, s.h.ID)
	wantKind(t, err, ErrForbidden)

	for run := 0; run < 2; run++ {
		entries, err := f.scoring.FinalizeRankings(ctx, s.org, s.h.ID)
		if err != nil {
			t.Fatalf("FinalizeRankings() run %d error = %v", run, err)
		}
		if len(entries) != 2 || entries[0].ProjectID != s.project.ID || entries[0].Rank != 1 || entries[1].Rank != 2 {
			t.Fatalf("run %d entries = %+v", run, entries)
		}
		if entries[0].JudgeCount != 1 {
			t.Fatalf("judge count = %d, want 1", entries[0].JudgeCount)
		}
	}

	var stored models.Project
	if err := f.db.First(&stored, "id = ?", projects[1].ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Rank != 2 {
		t.Fatalf("persisted rank = %d, want 2", stored.Rank)
	}
	if len(pub.calls) != 2 {
		t.Fatalf("publisher calls = %d, want 2", len(pub.calls))
	}
}

func TestLeaderboardIsCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := setupScoring(t, f)

	if _, err := f.scoring.SubmitScore(ctx, s.judge, s.project.ID, SubmitScoreInput{
		HackathonID:   s.h.ID,
		ScoreCriteria: []models.ScoreCriterion{{Name: "Innovation", Score: 6}},
	}); err != nil {
		t.Fatal(err)
	}

	entries, err := f.scoring.Leaderboard(ctx, s.h.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].FinalScore != 6 {
		t.Fatalf("entries = %+v", entries)
	}
	if _, ok, _ := f.cache.Get(ctx, s.h.ID); !ok {
		t.Fatal("leaderboard not cached")
	}

	// a new score drops the cached copy
	if _, err := f.scoring.SubmitScore(ctx, s.judge2, s.project.ID, SubmitScoreInput{
		HackathonID:   s.h.ID,
		ScoreCriteria: []models.ScoreCriterion{{Name: "Innovation", Score: 8}},
	}); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := f.cache.Get(ctx, s.h.ID); ok {
		t.Fatal("cache still holds the stale leaderboard")
	}
	entries, err = f.scoring.Leaderboard(ctx, s.h.ID)
	if err != nil || entries[0].FinalScore != 7 {
		t.Fatalf("fresh leaderboard = %+v, %v", entries, err)
	}
}

func TestLeaderboardFollowsProjectAndTeamEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := setupScoring(t, f)

	cached := func() {
		t.Helper()
		if _, err := f.scoring.Leaderboard(ctx, s.h.ID); err != nil {
			t.Fatal(err)
		}
		if _, ok, _ := f.cache.Get(ctx, s.h.ID); !ok {
			t.Fatal("leaderboard not cached")
		}
	}
	entryFor := func(projectID uuid.UUID) *LeaderboardEntry {
		t.Helper()
		entries, err := f.scoring.Leaderboard(ctx, s.h.ID)
		if err != nil {
			t.Fatal(err)
		}
		for i := range entries {
			if entries[i].ProjectID == projectID {
				return &entries[i]
			}
		}
		return nil
	}

	cached()
	other := f.user(t, models.RoleParticipant)
	late := f.project(t, other, f.team(t, other, s.h))
	if entryFor(late.ID) == nil {
		t.Fatal("new project missing from leaderboard")
	}

	cached()
	if _, err := f.teams.UpdateTeam(ctx, s.leader, s.team.ID, TeamUpdate{Name: ptr("Brand New Name")}); err != nil {
		t.Fatal(err)
	}
	if got := entryFor(s.project.ID); got == nil || got.TeamName != "Brand New Name" {
		t.Fatalf("entry after rename = %+v", got)
	}

	cached()
	if _, err := f.projects.Update(ctx, s.leader, s.project.ID, ProjectInput{Title: ptr("Retitled")}); err != nil {
		t.Fatal(err)
	}
	if got := entryFor(s.project.ID); got == nil || got.Title != "Retitled" {
		t.Fatalf("entry after retitle = %+v", got)
	}
}

func TestJudgeScores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := setupScoring(t, f)

	if _, err := f.scoring.SubmitScore(ctx, s.judge, s.project.ID, SubmitScoreInput{HackathonID: s.h.ID}); err != nil {
		t.Fatal(err)
	}
	mine, err := f.scoring.JudgeScores(ctx, s.judge, s.h.ID)
	if err != nil || len(mine) != 1 {
		t.Fatalf("JudgeScores() = %d, %v; want 1", len(mine), err)
	}
	theirs, err := f.scoring.JudgeScores(ctx, s.judge2, s.h.ID)
	if err != nil || len(theirs) != 0 {
		t.Fatalf("other judge scores = %d, %v; want 0", len(theirs), err)
	}
}

func TestDefaultCriteria(t *testing.T) {
	var total float64
	for _, c := range DefaultCriteria() {
		total += c.EffectiveWeight()
	}
	if total != 10 {
		t.Fatalf("default weights sum to %v, want 10", total)
	}
}
