// services/team_service.go - Team formation: rosters, invitations, leadership
package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Sarthaklad1034/HackMatrix/metrics"
	"github.com/Sarthaklad1034/HackMatrix/models"
	"github.com/Sarthaklad1034/HackMatrix/utils"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TeamService struct {
	db    *gorm.DB
	now   func() time.Time
	cache LeaderboardCache
}

func NewTeamService(db *gorm.DB, now func() time.Time, cache LeaderboardCache) *TeamService {
	if now == nil {
		now = time.Now
	}
	if cache == nil {
		cache = NopCache{}
	}
	return &TeamService{db: db, now: now, cache: cache}
}

type CreateTeamInput struct {
	Name        string    `json:"name"`
	HackathonID uuid.UUID `json:"hackathonId"`
	Description string    `json:"description"`
	Skills      []string  `json:"skills"`
}

// TeamUpdate whitelists the fields a leader may change.
type TeamUpdate struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Skills      *[]string `json:"skills"`
}

// ================== TEAM CRUD OPERATIONS ==================

// CreateTeam creates a new team led by the requesting user, who becomes its first member.
func (s *TeamService) CreateTeam(ctx context.Context, actor *models.User, in CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(in.Name)

	var v Validation
	v.Check(name != "", "name", "Team name is required")
	v.Check(utils.MaxLen(name, 50), "name", "Team name cannot be more than 50 characters")
	v.Check(utils.MaxLen(in.Description, 500), "description", "Description cannot be more than 500 characters")
	v.Check(in.HackathonID != uuid.Nil, "hackathonId", "Hackathon is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	team := &models.Team{
		Name:        name,
		Description: in.Description,
		Skills:      datatypes.JSONSlice[string](utils.CleanList(in.Skills)),
		HackathonID: in.HackathonID,
		LeaderID:    actor.ID,
		Version:     1,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadHackathon(tx, in.HackathonID); err != nil {
			return err
		}
		if err := ensureTeamNameFree(tx, name, uuid.Nil); err != nil {
			return err
		}
		if err := tx.Create(team).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflict("Team name already exists")
			}
			return err
		}

		// Add creator as team leader and first member
		leader := &models.TeamMember{TeamID: team.ID, UserID: actor.ID, JoinedAt: s.now().UTC()}
		return tx.Create(leader).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("👥 Team %q created by %s", team.Name, actor.Email)
	return s.GetTeam(ctx, team.ID)
}

// GetTeam loads a team with its roster, pending invitations and project.
func (s *TeamService) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := s.db.WithContext(ctx).
		Preload("Leader").
		Preload("Hackathon").
		Preload("Members.User").
		Preload("Invitations", "status = ?", models.InvitationPending).
		Preload("Invitations.User").
		Preload("Project").
		First(&team, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Team")
	}
	if err != nil {
		return nil, err
	}
	decorateTeam(&team)
	return &team, nil
}

func (s *TeamService) ListByHackathon(ctx context.Context, hackathonID uuid.UUID) ([]models.Team, error) {
	h, err := loadHackathon(s.db.WithContext(ctx), hackathonID)
	if err != nil {
		return nil, err
	}
	var teams []models.Team
	err = s.db.WithContext(ctx).
		Preload("Members.User").
		Where("hackathon_id = ?", hackathonID).
		Order("name ASC").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	for i := range teams {
		teams[i].Status = teams[i].DeriveStatus(h.MaxTeamSize)
	}
	return teams, nil
}

// UpdateTeam updates name, description and skills (leader only)
func (s *TeamService) UpdateTeam(ctx context.Context, actor *models.User, id uuid.UUID, in TeamUpdate) (*models.Team, error) {
	var renamed *models.Team
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, err := loadTeam(tx, id)
		if err != nil {
			return err
		}
		if !team.IsLeader(actor.ID) {
			return forbidden("Only team leader can update team")
		}

		updates := map[string]any{}
		var v Validation
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			v.Check(name != "", "name", "Team name is required")
			v.Check(utils.MaxLen(name, 50), "name", "Team name cannot be more than 50 characters")
			updates["name"] = name
		}
		if in.Description != nil {
			v.Check(utils.MaxLen(*in.Description, 500), "description", "Description cannot be more than 500 characters")
			updates["description"] = *in.Description
		}
		if in.Skills != nil {
			updates["skills"] = datatypes.JSONSlice[string](utils.CleanList(*in.Skills))
		}
		if err := v.Err(); err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}

		if name, ok := updates["name"].(string); ok && name != team.Name {
			if err := ensureTeamNameFree(tx, name, team.ID); err != nil {
				return err
			}
			renamed = team
		}
		if err := tx.Model(team).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflict("Team name already exists")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// leaderboard entries carry the team name
	if renamed != nil {
		dropLeaderboard(ctx, s.cache, renamed.HackathonID)
	}
	return s.GetTeam(ctx, id)
}

// ================== TEAM MEMBERSHIP OPERATIONS ==================

// InviteMember creates a pending invitation (leader only).
func (s *TeamService) InviteMember(ctx context.Context, actor *models.User, teamID, userID uuid.UUID) (*models.TeamInvitation, error) {
	var invitation *models.TeamInvitation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, err := loadRoster(tx, teamID)
		if err != nil {
			return err
		}
		if !team.IsLeader(actor.ID) {
			return forbidden("Only team leader can invite members")
		}
		if team.Disqualified {
			return conflict("Team has been disqualified")
		}

		var invitee models.User
		err = tx.First(&invitee, "id = ?", userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("User")
		}
		if err != nil {
			return err
		}

		if team.HasMember(userID) {
			return conflict("User is already a member of this team")
		}
		if len(team.Members) >= team.Hackathon.MaxTeamSize {
			return newError(ErrCapacityExceeded, "Team is already full")
		}

		var pending int64
		if err := tx.Model(&models.TeamInvitation{}).
			Where("team_id = ? AND user_id = ? AND status = ?", teamID, userID, models.InvitationPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return conflict("User already invited")
		}

		invitation = &models.TeamInvitation{
			TeamID:      teamID,
			UserID:      userID,
			InvitedByID: actor.ID,
			Status:      models.InvitationPending,
		}
		if err := tx.Create(invitation).Error; err != nil {
			return err
		}
		return bumpTeamVersion(tx, team)
	})
	if err != nil {
		return nil, err
	}

	metrics.TeamInvitations.WithLabelValues("sent").Inc()
	log.Printf("✉️ User %s invited to team %s", userID, teamID)
	return invitation, nil
}

// AcceptInvite moves the requesting user from the pending invitations into the roster.
// Capacity is checked again because the team may have filled since the invite was sent.
func (s *TeamService) AcceptInvite(ctx context.Context, actor *models.User, teamID uuid.UUID) (*models.Team, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.acceptInvite(tx, actor, teamID)
	})
	if err != nil {
		if errors.Is(err, ErrCapacityExceeded) {
			metrics.TeamInvitations.WithLabelValues("rejected_full").Inc()
		}
		return nil, err
	}

	metrics.TeamInvitations.WithLabelValues("accepted").Inc()
	return s.GetTeam(ctx, teamID)
}

// AcceptInviteByToken resolves an invitation token and accepts it for the requesting user.
func (s *TeamService) AcceptInviteByToken(ctx context.Context, actor *models.User, token string) (*models.Team, error) {
	var invitation models.TeamInvitation
	err := s.db.WithContext(ctx).
		Where("token = ? AND user_id = ? AND status = ?", token, actor.ID, models.InvitationPending).
		First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Invitation")
	}
	if err != nil {
		return nil, err
	}
	return s.AcceptInvite(ctx, actor, invitation.TeamID)
}

func (s *TeamService) acceptInvite(tx *gorm.DB, actor *models.User, teamID uuid.UUID) error {
	team, err := loadRoster(tx, teamID)
	if err != nil {
		return err
	}

	var invitation models.TeamInvitation
	err = tx.Where("team_id = ? AND user_id = ? AND status = ?", teamID, actor.ID, models.InvitationPending).
		First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("Invitation")
	}
	if err != nil {
		return err
	}

	if team.Disqualified {
		return conflict("Team has been disqualified")
	}
	if team.HasMember(actor.ID) {
		return conflict("You are already a member of this team")
	}
	if len(team.Members) >= team.Hackathon.MaxTeamSize {
		return newError(ErrCapacityExceeded, "Team is already full")
	}

	member := &models.TeamMember{TeamID: teamID, UserID: actor.ID, JoinedAt: s.now().UTC()}
	if err := tx.Create(member).Error; err != nil {
		return err
	}
	if err := tx.Delete(&invitation).Error; err != nil {
		return err
	}
	return bumpTeamVersion(tx, team)
}

// DeclineInvite marks the requesting user's pending invitation as rejected.
func (s *TeamService) DeclineInvite(ctx context.Context, actor *models.User, teamID uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.TeamInvitation{}).
		Where("team_id = ? AND user_id = ? AND status = ?", teamID, actor.ID, models.InvitationPending).
		Update("status", models.InvitationRejected)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("Invitation")
	}
	metrics.TeamInvitations.WithLabelValues("declined").Inc()
	return nil
}

// PendingInvitations lists the invitations waiting on a user, with their teams.
func (s *TeamService) PendingInvitations(ctx context.Context, userID uuid.UUID) ([]models.TeamInvitation, error) {
	var invitations []models.TeamInvitation
	err := s.db.WithContext(ctx).
		Preload("Team.Hackathon").
		Where("user_id = ? AND status = ?", userID, models.InvitationPending).
		Order("created_at DESC").
		Find(&invitations).Error
	return invitations, err
}

// RemoveMember removes a member from the team. The leader may remove anyone but
// themself; any other member may only remove themself.
func (s *TeamService) RemoveMember(ctx context.Context, actor *models.User, teamID, memberID uuid.UUID) (*models.Team, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, err := loadRoster(tx, teamID)
		if err != nil {
			return err
		}
		if !team.IsLeader(actor.ID) && actor.ID != memberID {
			return forbidden("Only team leader can remove members")
		}
		if team.IsLeader(memberID) {
			return conflict("Team leader cannot be removed; transfer leadership first")
		}
		if !team.HasMember(memberID) {
			return notFound("Member")
		}

		if err := tx.Where("team_id = ? AND user_id = ?", teamID, memberID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		return bumpTeamVersion(tx, team)
	})
	if err != nil {
		return nil, err
	}
	return s.GetTeam(ctx, teamID)
}

// TransferLeadership hands the team over to another member (current leader only).
func (s *TeamService) TransferLeadership(ctx context.Context, actor *models.User, teamID, newLeaderID uuid.UUID) (*models.Team, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, err := loadRoster(tx, teamID)
		if err != nil {
			return err
		}
		if !team.IsLeader(actor.ID) {
			return forbidden("Only team leader can transfer leadership")
		}
		if !team.HasMember(newLeaderID) {
			return newError(ErrValidation, "New leader must be a member of the team")
		}
		if err := tx.Model(&models.Team{}).Where("id = ?", teamID).Update("leader_id", newLeaderID).Error; err != nil {
			return err
		}
		return bumpTeamVersion(tx, team)
	})
	if err != nil {
		return nil, err
	}
	return s.GetTeam(ctx, teamID)
}

// SetDisqualified flags or clears a team's disqualification (hackathon organizer or admin).
func (s *TeamService) SetDisqualified(ctx context.Context, actor *models.User, teamID uuid.UUID, disqualified bool) (*models.Team, error) {
	db := s.db.WithContext(ctx)
	team, err := loadRoster(db, teamID)
	if err != nil {
		return nil, err
	}
	if !canManageHackathon(actor, team.Hackathon) {
		return nil, forbidden("Not authorized to disqualify teams in this hackathon")
	}
	if err := db.Model(&models.Team{}).Where("id = ?", teamID).Update("disqualified", disqualified).Error; err != nil {
		return nil, err
	}
	dropLeaderboard(ctx, s.cache, team.HackathonID)
	log.Printf("🚫 Team %q disqualified=%v by %s", team.Name, disqualified, actor.Email)
	return s.GetTeam(ctx, teamID)
}

// ================== HELPER FUNCTIONS ==================

func decorateTeam(team *models.Team) {
	maxSize := models.DefaultMaxTeamSize
	if team.Hackathon != nil {
		maxSize = team.Hackathon.MaxTeamSize
	}
	team.Status = team.DeriveStatus(maxSize)
}

func loadTeam(db *gorm.DB, id uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := db.First(&team, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Team")
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// loadRoster loads a team with its members and owning hackathon.
func loadRoster(db *gorm.DB, id uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := db.Preload("Hackathon").Preload("Members").First(&team, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Team")
	}
	if err != nil {
		return nil, err
	}
	if team.Hackathon == nil {
		return nil, notFound("Hackathon")
	}
	return &team, nil
}

func ensureTeamNameFree(db *gorm.DB, name string, except uuid.UUID) error {
	q := db.Model(&models.Team{}).Where("name = ?", name)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return conflict("Team name already exists")
	}
	return nil
}

// bumpTeamVersion advances the roster version only if nobody else did since the team was read.
func bumpTeamVersion(tx *gorm.DB, team *models.Team) error {
	res := tx.Model(&models.Team{}).
		Where("id = ? AND version = ?", team.ID, team.Version).
		Update("version", gorm.Expr("version + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return conflict("Team was modified by another request, please retry")
	}
	team.Version++
	return nil
}
