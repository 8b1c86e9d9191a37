package services

import (
	"context"
	"testing"
	"time"

	"github.com/Sarthaklad1034/HackMatrix/models"
)

func TestCreateProjectWindowAndOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.user(t, models.RoleOrganizer)
	b := f.user(t, models.RoleParticipant)
	c := f.user(t, models.RoleParticipant)
	h := f.hackathon(t, org, 4)
	team := f.team(t, b, h)
	f.join(t, b, team, c)

	// registration is open, the event has not started
	_, err := f.projects.Create(ctx, b, completeProjectInput(team))
	wantKind(t, err, ErrWindowClosed)

	f.now = h.StartDate
	_, err = f.projects.Create(ctx, c, completeProjectInput(team))
	wantKind(t, err, ErrForbidden)

	p, err := f.projects.Create(ctx, b, completeProjectInput(team))
	if err != nil {
		t.Fatalf("Create() at start date error = %v", err)
	}
	if p.TeamID != team.ID || p.HackathonID != h.ID {
		t.Fatalf("project = %+v", p)
	}

	_, err = f.projects.Create(ctx, b, completeProjectInput(team))
	wantKind(t, err, ErrConflict)

	f.now = h.EndDate.Add(time.Second)
	other := f.team(t, c, h)
	_, err = f.projects.Create(ctx, c, completeProjectInput(other))
	wantKind(t, err, ErrWindowClosed)
}

func TestCreateProjectValidatesLinks(t *testing.T) {
	f := newFixture(t)
	org := f.user(t, models.RoleOrganizer)
	b := f.user(t, models.RoleParticipant)
	h := f.hackathon(t, org, 4)
	team := f.team(t, b, h)
	f.now = h.StartDate.Add(time.Hour)

	in := completeProjectInput(team)
	in.GithubRepoURL = ptr("https://gitlab.com/acme/repo")
	in.DemoVideoURL = ptr("https://example.com/video")
	in.PresentationURL = ptr("https://example.com/deck.docx")

	_, err := f.projects.Create(context.Background(), b, in)
	wantKind(t, err, ErrValidation)
	fields := FieldsOf(err)
	if len(fields) != 3 {
		t.Fatalf("fields = %+v, want 3 link failures", fields)
	}

	in = completeProjectInput(team)
	in.Title = nil
	_, err = f.projects.Create(context.Background(), b, in)
	wantKind(t, err, ErrValidation)
}

func TestSubmissionStatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.user(t, models.RoleOrganizer)
	b := f.user(t, models.RoleParticipant)
	h := f.hackathon(t, org, 4)
	team := f.team(t, b, h)
	f.now = h.StartDate.Add(time.Hour)

	in := completeProjectInput(team)
	in.DemoVideoURL = nil
	p, err := f.projects.Create(ctx, b, in)
	if err != nil {
		t.Fatal(err)
	}
	if p.SubmissionStatus != models.SubmissionDraft || p.SubmissionDate != nil {
		t.Fatalf("without demo: status = %s, date = %v; want draft, nil", p.SubmissionStatus, p.SubmissionDate)
	}

	f.now = h.StartDate.Add(2 * time.Hour)
	p, err = f.projects.Update(ctx, b, p.ID, ProjectInput{DemoVideoURL: ptr("https://vimeo.com/1234")})
	if err != nil {
		t.Fatal(err)
	}
	if p.SubmissionStatus != models.SubmissionSubmitted || p.SubmissionDate == nil {
		t.Fatalf("complete: status = %s, date = %v; want submitted", p.SubmissionStatus, p.SubmissionDate)
	}
	submittedAt := *p.SubmissionDate

	f.now = h.StartDate.Add(3 * time.Hour)
	p, err = f.projects.Update(ctx, b, p.ID, ProjectInput{GithubRepoURL: ptr("")})
	if err != nil {
		t.Fatal(err)
	}
	if p.SubmissionStatus != models.SubmissionIncomplete {
		t.Fatalf("cleared repo: status = %s, want incomplete", p.SubmissionStatus)
	}

	p, err = f.projects.Update(ctx, b, p.ID, ProjectInput{GithubRepoURL: ptr("github.com/acme/carbon-lens")})
	if err != nil {
		t.Fatal(err)
	}
	if p.SubmissionStatus != models.SubmissionSubmitted {
		t.Fatalf("restored repo: status = %s, want submitted", p.SubmissionStatus)
	}
	if !p.SubmissionDate.Equal(submittedAt) {
		t.Fatalf("submission date = %v, want original %v", p.SubmissionDate, submittedAt)
	}

	stored, err := f.projects.Get(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.SubmissionStatus != models.SubmissionSubmitted || stored.GithubRepoURL != "github.com/acme/carbon-lens" {
		t.Fatalf("stored project = %+v", stored)
	}
}

func TestUpdateProjectLeaderOnly(t *testing.T) {
	f := newFixture(t)
	org := f.user(t, models.RoleOrganizer)
	b := f.user(t, models.RoleParticipant)
	c := f.user(t, models.RoleParticipant)
	team := f.team(t, b, f.hackathon(t, org, 4))
	f.join(t, b, team, c)
	p := f.project(t, b, team)

	_, err := f.projects.Update(context.Background(), c, p.ID, ProjectInput{Title: ptr("Mine now")})
	wantKind(t, err, ErrForbidden)
}

func TestSubmittedForJudging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.user(t, models.RoleOrganizer)
	judge := f.user(t, models.RoleJudge)
	outsider := f.user(t, models.RoleJudge)
	h := f.hackathon(t, org, 4)
	if _, err := f.hackathons.AddJudge(ctx, org, h.ID, judge.ID); err != nil {
		t.Fatal(err)
	}

	b := f.user(t, models.RoleParticipant)
	f.project(t, b, f.team(t, b, h))

	c := f.user(t, models.RoleParticipant)
	draftTeam := f.team(t, c, h)
	f.now = h.StartDate.Add(time.Hour)
	in := completeProjectInput(draftTeam)
	in.Technologies = &[]string{}
	if _, err := f.projects.Create(ctx, c, in); err != nil {
		t.Fatal(err)
	}

	_, err := f.projects.SubmittedForJudging(ctx, outsider, h.ID)
	wantKind(t, err, ErrForbidden)

	projects, err := f.projects.SubmittedForJudging(ctx, judge, h.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 1 {
		t.Fatalf("got %d submitted projects, want 1", len(projects))
	}

	all, err := f.projects.ListByHackathon(ctx, h.ID)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListByHackathon() = %d, %v; want 2", len(all), err)
	}
}
