package services

import (
	"context"
	"testing"

	"github.com/Sarthaklad1034/HackMatrix/models"
	"github.com/google/uuid"
)

func TestCreateTeamMakesCreatorLeaderAndMember(t *testing.T) {
	f := newFixture(t)
	org := f.user(t, models.RoleOrganizer)
	leader := f.user(t, models.RoleParticipant)
	h := f.hackathon(t, org, 3)

	team := f.team(t, leader, h)

	if team.LeaderID != leader.ID {
		t.Fatalf("leader = %s, want %s", team.LeaderID, leader.ID)
	}
	if len(team.Members) != 1 || team.Members[0].UserID != leader.ID {
		t.Fatalf("members = %+v, want only the leader", team.Members)
	}
	if team.Status != models.TeamForming {
		t.Fatalf("status = %s, want forming", team.Status)
	}
	if team.Version != 1 {
		t.Fatalf("version = %d, want 1", team.Version)
	}
}

func TestCreateTeamRejectsDuplicateName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.user(t, models.RoleOrganizer)
	h := f.hackathon(t, org, 3)
	a := f.user(t, models.RoleParticipant)
	b := f.user(t, models.RoleParticipant)

	if _, err := f.teams.CreateTeam(ctx, a, CreateTeamInput{Name: "Foo", HackathonID: h.ID}); err != nil {
		t.Fatal(err)
	}
	_, err := f.teams.CreateTeam(ctx, b, CreateTeamInput{Name: "Foo", HackathonID: h.ID})
	wantKind(t, err, ErrConflict)

	if n := count(t, f.db, &models.Team{}, "name = ?", "Foo"); n != 1 {
		t.Fatalf("teams named Foo = %d, want 1", n)
	}
	var team models.Team
	f.db.Where("name = ?", "Foo").First(&team)
	if team.LeaderID != a.ID {
		t.Fatal("duplicate create overwrote the original team")
	}
}

func TestCreateTeamValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.user(t, models.RoleParticipant)

	_, err := f.teams.CreateTeam(ctx, p, CreateTeamInput{Name: "Ghost", HackathonID: uuid.New()})
	wantKind(t, err, ErrNotFound)

	_, err = f.teams.CreateTeam(ctx, p, CreateTeamInput{Name: "  ", HackathonID: uuid.New()})
	wantKind(t, err, ErrValidation)
	if fields := FieldsOf(err); len(fields) == 0 || fields[0].Field != "name" {
		t.Fatalf("fields = %+v, want name failure", fields)
	}
}

func TestInviteAndAccept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.user(t, models.RoleOrganizer)
	b := f.user(t, models.RoleParticipant)
	c := f.user(t, models.RoleParticipant)
	h := f.hackathon(t, org, 3)
	team := f.team(t, b, h)

	inv, err := f.teams.InviteMember(ctx, b, team.ID, c.ID)
	if err != nil {
		t.Fatalf("InviteMember() error = %v", err)
	}
	if inv.Token == "" || inv.Status != models.InvitationPending {
		t.Fatalf("invitation = %+v", inv)
	}

	pending, err := f.teams.PendingInvitations(ctx, c.ID)
	if err != nil || len(pending) != 1 {
		t.Fatalf("PendingInvitations() = %d, %v; want 1", len(pending), err)
	}

	got, err := f.teams.AcceptInvite(ctx, c, team.ID)
	if err != nil {
		t.Fatalf("AcceptInvite() error = %v", err)
	}
	if len(got.Members) != 2 || !got.HasMember(c.ID) {
		t.Fatalf("members = %+v, want leader and invitee", got.Members)
	}
	if got.Status != models.TeamForming {
		t.Fatalf("status = %s, want forming", got.Status)
	}
	if len(got.Invitations) != 0 {
		t.Fatalf("pending invitations = %d, want 0", len(got.Invitations))
	}
	if got.Version != 3 {
		t.Fatalf("version = %d, want 3", got.Version)
	}
}

func TestTeamCompleteAtCapacity(t *testing.T) {
	f := newFixture(t)
	org := f.user(t, models.RoleOrganizer)
	b := f.user(t, models.RoleParticipant)
	c := f.user(t, models.RoleParticipant)
	h := f.hackathon(t, org, 2)
	team := f.team(t, b, h)

	f.join(t, b, team, c)

	got, err := f.teams.GetTeam(context.Background(), team.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.TeamComplete {
		t.Fatalf("status = %s, want complete", got.Status)
	}

	// membership is reported before capacity
	_, err = f.teams.InviteMember(context.Background(), b, team.ID, c.ID)
	wantKind(t, err, ErrConflict)
	_, err = f.teams.InviteMember(context.Background(), b, team.ID, f.user(t, models.RoleParticipant).ID)
	wantKind(t, err, ErrCapacityExceeded)
}

func TestCapacityIsRecheckedOnAccept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.user(t, models.RoleOrganizer)
	b := f.user(t, models.RoleParticipant)
	c := f.user(t, models.RoleParticipant)
	d := f.user(t, models.RoleParticipant)
	e := f.user(t, models.RoleParticipant)
	h := f.hackathon(t, org, 2)
	team := f.team(t, b, h)

	for _, u := range []*models.User{c, d} {
		if _, err := f.teams.InviteMember(ctx, b, team.ID, u.ID); err != nil {
			t.Fatalf("invite %s: %v", u.Email, err)
		}
	}
	if _, err := f.teams.AcceptInvite(ctx, c, team.ID); err != nil {
		t.Fatal(err)
	}

	_, err := f.teams.AcceptInvite(ctx, d, team.ID)
	wantKind(t, err, ErrCapacityExceeded)

	_, err = f.teams.InviteMember(ctx, b, team.ID, e.ID)
	wantKind(t, err, ErrCapacityExceeded)

	if n := count(t, f.db, &models.TeamMember{}, "team_id = ?", team.ID); n != 2 {
		t.Fatalf("members = %d, want 2", n)
	}
}

func TestInviteConflictsAndAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.user(t, models.RoleOrganizer)
	b := f.user(t, models.RoleParticipant)
	c := f.user(t, models.RoleParticipant)
	h := f.hackathon(t, org, 4)
	team := f.team(t, b, h)

	_, err := f.teams.InviteMember(ctx, c, team.ID, c.ID)
	wantKind(t, err, ErrForbidden)

	_, err = f.teams.InviteMember(ctx, b, team.ID, uuid.New())
	wantKind(t, err, ErrNotFound)

	_, err = f.teams.InviteMember(ctx, b, uuid.New(), c.ID)
	wantKind(t, err, ErrNotFound)

	_, err = f.teams.InviteMember(ctx, b, team.ID, b.ID)
	wantKind(t, err, ErrConflict)

	if _, err := f.teams.InviteMember(ctx, b, team.ID, c.ID); err != nil {
		t.Fatal(err)
	}
	_, err = f.teams.InviteMember(ctx, b, team.ID, c.ID)
	wantKind(t, err, ErrConflict)
}

func TestAcceptWithoutInvitation(t *testing.T) {
	f := newFixture(t)
	org := f.user(t, models.RoleOrganizer)
	b := f.user(t, models.RoleParticipant)
	c := f.user(t, models.RoleParticipant)
	team := f.team(t, b, f.hackathon(t, org, 4))

	_, err := f.teams.AcceptInvite(context.Background(), c, team.ID)
	wantKind(t, err, ErrNotFound)
}

func TestAcceptInviteByToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.user(t, models.RoleOrganizer)
	b := f.user(t, models.RoleParticipant)
	c := f.user(t, models.RoleParticipant)
	stranger := f.user(t, models.RoleParticipant)
	team := f.team(t, b, f.hackathon(t, org, 4))

	inv, err := f.teams.InviteMember(ctx, b, team.ID, c.ID)
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.teams.AcceptInviteByToken(ctx, stranger, inv.Token)
	wantKind(t, err, ErrNotFound)

	got, err := f.teams.AcceptInviteByToken(ctx, c, inv.Token)
	if err != nil {
		t.Fatalf("AcceptInviteByToken() error = %v", err)
	}
	if !got.HasMember(c.ID) {
		t.Fatal("invitee not added to the team")
	}

	// a consumed token cannot be replayed
	_, err = f.teams.AcceptInviteByToken(ctx, c, inv.Token)
	wantKind(t, err, ErrNotFound)
}

func TestDeclineInvite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.user(t, models.RoleOrganizer)
	b := f.user(t, models.RoleParticipant)
	c := f.user(t, models.RoleParticipant)
	team := f.team(t, b, f.hackathon(t, org, 4))

	if _, err := f.teams.InviteMember(ctx, b, team.ID, c.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.teams.DeclineInvite(ctx, c, team.ID); err != nil {
		t.Fatalf("DeclineInvite() error = %v", err)
	}
	wantKind(t, f.teams.DeclineInvite(ctx, c, team.ID), ErrNotFound)

	_, err := f.teams.AcceptInvite(ctx, c, team.ID)
	wantKind(t, err, ErrNotFound)

	// a declined user can be invited again
	if _, err := f.teams.InviteMember(ctx, b, team.ID, c.ID); err != nil {
		t.Fatalf("re-invite after decline: %v", err)
	}
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.user(t, models.RoleOrganizer)
	b := f.user(t, models.RoleParticipant)
	c := f.user(t, models.RoleParticipant)
	d := f.user(t, models.RoleParticipant)
	team := f.team(t, b, f.hackathon(t, org, 4))
	f.join(t, b, team, c)
	f.join(t, b, team, d)

	_, err := f.teams.RemoveMember(ctx, c, team.ID, d.ID)
	wantKind(t, err, ErrForbidden)

	_, err = f.teams.RemoveMember(ctx, b, team.ID, b.ID)
	wantKind(t, err, ErrConflict)

	got, err := f.teams.RemoveMember(ctx, b, team.ID, d.ID)
	if err != nil {
		t.Fatalf("RemoveMember() error = %v", err)
	}
	if got.HasMember(d.ID) || len(got.Members) != 2 {
		t.Fatalf("members = %+v after removing d", got.Members)
	}

	// members may leave on their own
	got, err = f.teams.RemoveMember(ctx, c, team.ID, c.ID)
	if err != nil {
		t.Fatalf("self removal error = %v", err)
	}
	if got.HasMember(c.ID) {
		t.Fatal("c still a member after leaving")
	}

	_, err = f.teams.RemoveMember(ctx, b, team.ID, c.ID)
	wantKind(t, err, ErrNotFound)
}

func TestStaleRosterWriteConflicts(t *testing.T) {
	f := newFixture(t)
	org := f.user(t, models.RoleOrganizer)
	b := f.user(t, models.RoleParticipant)
	team := f.team(t, b, f.hackathon(t, org, 4))

	first, err := loadTeam(f.db, team.ID)
	if err != nil {
		t.Fatal(err)
	}
	second, err := loadTeam(f.db, team.ID)
	if err != nil {
		t.Fatal(err)
	}

	if err := bumpTeamVersion(f.db, first); err != nil {
		t.Fatalf("first write: %v", err)
	}
	wantKind(t, bumpTeamVersion(f.db, second), ErrConflict)
}

func TestUpdateTeam(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.user(t, models.RoleOrganizer)
	b := f.user(t, models.RoleParticipant)
	c := f.user(t, models.RoleParticipant)
	h := f.hackathon(t, org, 4)
	team := f.team(t, b, h)
	other := f.team(t, c, h)

	_, err := f.teams.UpdateTeam(ctx, c, team.ID, TeamUpdate{Description: ptr("hijack")})
	wantKind(t, err, ErrForbidden)

	_, err = f.teams.UpdateTeam(ctx, b, team.ID, TeamUpdate{Name: ptr(other.Name)})
	wantKind(t, err, ErrConflict)

	got, err := f.teams.UpdateTeam(ctx, b, team.ID, TeamUpdate{
		Name:        ptr("Renamed"),
		Description: ptr("Builders"),
		Skills:      &[]string{"go", " ", "react"},
	})
	if err != nil {
		t.Fatalf("UpdateTeam() error = %v", err)
	}
	if got.Name != "Renamed" || got.Description != "Builders" || len(got.Skills) != 2 {
		t.Fatalf("team = %+v", got)
	}
	if got.LeaderID != b.ID {
		t.Fatal("update changed the leader")
	}
}

func TestTransferLeadership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.user(t, models.RoleOrganizer)
	b := f.user(t, models.RoleParticipant)
	c := f.user(t, models.RoleParticipant)
	outsider := f.user(t, models.RoleParticipant)
	team := f.team(t, b, f.hackathon(t, org, 4))
	f.join(t, b, team, c)

	_, err := f.teams.TransferLeadership(ctx, b, team.ID, outsider.ID)
	wantKind(t, err, ErrValidation)

	got, err := f.teams.TransferLeadership(ctx, b, team.ID, c.ID)
	if err != nil {
		t.Fatalf("TransferLeadership() error = %v", err)
	}
	if got.LeaderID != c.ID {
		t.Fatalf("leader = %s, want %s", got.LeaderID, c.ID)
	}

	// the former leader is an ordinary member now
	if _, err := f.teams.RemoveMember(ctx, c, team.ID, b.ID); err != nil {
		t.Fatalf("new leader removing old leader: %v", err)
	}
}

func TestSetDisqualified(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.user(t, models.RoleOrganizer)
	otherOrg := f.user(t, models.RoleOrganizer)
	b := f.user(t, models.RoleParticipant)
	c := f.user(t, models.RoleParticipant)
	team := f.team(t, b, f.hackathon(t, org, 4))

	_, err := f.teams.SetDisqualified(ctx, otherOrg, team.ID, true)
	wantKind(t, err, ErrForbidden)

	got, err := f.teams.SetDisqualified(ctx, org, team.ID, true)
	if err != nil {
		t.Fatalf("SetDisqualified() error = %v", err)
	}
	if got.Status != models.TeamDisqualified {
		t.Fatalf("status = %s, want disqualified", got.Status)
	}

	_, err = f.teams.InviteMember(ctx, b, team.ID, c.ID)
	wantKind(t, err, ErrConflict)
}

func TestListByHackathon(t *testing.T) {
	f := newFixture(t)
	org := f.user(t, models.RoleOrganizer)
	h := f.hackathon(t, org, 4)
	other := f.hackathon(t, org, 4)
	f.team(t, f.user(t, models.RoleParticipant), h)
	f.team(t, f.user(t, models.RoleParticipant), h)
	f.team(t, f.user(t, models.RoleParticipant), other)

	teams, err := f.teams.ListByHackathon(context.Background(), h.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(teams) != 2 {
		t.Fatalf("got %d teams, want 2", len(teams))
	}
	for _, team := range teams {
		if team.Status != models.TeamForming {
			t.Fatalf("status = %s, want forming", team.Status)
		}
	}
}
