// handlers/teams.go - Team formation HTTP handlers
package handlers

import (
	"github.com/Sarthaklad1034/HackMatrix/middleware"
	"github.com/Sarthaklad1034/HackMatrix/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TeamHandler struct {
	Teams *services.TeamService
}

type userRef struct {
	UserID uuid.UUID `json:"userId"`
}

// ================== TEAM CRUD ENDPOINTS ==================

// CreateTeam creates a team led by the caller
// POST /api/teams
func (h *TeamHandler) CreateTeam(c *fiber.Ctx) error {
	var req services.CreateTeamInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	team, err := h.Teams.CreateTeam(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, team)
}

// GET /api/teams/:id
func (h *TeamHandler) GetTeam(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "Team")
	if err != nil {
		return err
	}
	team, err := h.Teams.GetTeam(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, team)
}

// GET /api/teams/hackathon/:hackathonId
func (h *TeamHandler) ListByHackathon(c *fiber.Ctx) error {
	id, err := paramID(c, "hackathonId", "Hackathon")
	if err != nil {
		return err
	}
	teams, err := h.Teams.ListByHackathon(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respondList(c, teams, len(teams))
}

// PUT /api/teams/:id
func (h *TeamHandler) UpdateTeam(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "Team")
	if err != nil {
		return err
	}
	var req services.TeamUpdate
	if err := parseBody(c, &req); err != nil {
		return err
	}
	team, err := h.Teams.UpdateTeam(c.UserContext(), middleware.CurrentUser(c), id, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, team)
}

// ================== MEMBERSHIP ENDPOINTS ==================

// InviteMember sends an invitation to a user
// POST /api/teams/:id/invite
func (h *TeamHandler) InviteMember(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "Team")
	if err != nil {
		return err
	}
	var req userRef
	if err := parseBody(c, &req); err != nil {
		return err
	}
	invite, err := h.Teams.InviteMember(c.UserContext(), middleware.CurrentUser(c), id, req.UserID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, invite)
}

// GET /api/teams/invitations
func (h *TeamHandler) Invitations(c *fiber.Ctx) error {
	invites, err := h.Teams.PendingInvitations(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return respondList(c, invites, len(invites))
}

// POST /api/teams/accept-invite/:inviteToken
func (h *TeamHandler) AcceptInviteByToken(c *fiber.Ctx) error {
	team, err := h.Teams.AcceptInviteByToken(c.UserContext(), middleware.CurrentUser(c), c.Params("inviteToken"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, team)
}

// PUT /api/teams/:id/accept-invite
func (h *TeamHandler) AcceptInvite(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "Team")
	if err != nil {
		return err
	}
	team, err := h.Teams.AcceptInvite(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, team)
}

// POST /api/teams/:id/decline-invite
func (h *TeamHandler) DeclineInvite(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "Team")
	if err != nil {
		return err
	}
	if err := h.Teams.DeclineInvite(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{})
}

// DELETE /api/teams/:teamId/members/:memberId
func (h *TeamHandler) RemoveMember(c *fiber.Ctx) error {
	teamID, err := paramID(c, "teamId", "Team")
	if err != nil {
		return err
	}
	memberID, err := paramID(c, "memberId", "Member")
	if err != nil {
		return err
	}
	team, err := h.Teams.RemoveMember(c.UserContext(), middleware.CurrentUser(c), teamID, memberID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, team)
}

// PUT /api/teams/:id/transfer-leadership
func (h *TeamHandler) TransferLeadership(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "Team")
	if err != nil {
		return err
	}
	var req userRef
	if err := parseBody(c, &req); err != nil {
		return err
	}
	team, err := h.Teams.TransferLeadership(c.UserContext(), middleware.CurrentUser(c), id, req.UserID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, team)
}

// Disqualify flags a team; {"disqualified": false} reinstates it
// POST /api/teams/:id/disqualify
func (h *TeamHandler) Disqualify(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "Team")
	if err != nil {
		return err
	}
	var req struct {
		Disqualified *bool `json:"disqualified"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	flag := req.Disqualified == nil || *req.Disqualified

	team, err := h.Teams.SetDisqualified(c.UserContext(), middleware.CurrentUser(c), id, flag)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, team)
}
