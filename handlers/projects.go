// handlers/projects.go - Project submission and scoring endpoints
package handlers

import (
	"github.com/Sarthaklad1034/HackMatrix/middleware"
	"github.com/Sarthaklad1034/HackMatrix/services"
	"github.com/gofiber/fiber/v2"
)

type ProjectHandler struct {
	Projects *services.ProjectService
	Scoring  *services.ScoringService
}

// POST /api/projects
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var req services.ProjectInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	project, err := h.Projects.Create(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, project)
}

// GET /api/projects/:id
func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "Project")
	if err != nil {
		return err
	}
	project, err := h.Projects.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, project)
}

// GET /api/projects/hackathon/:hackathonId
func (h *ProjectHandler) ListByHackathon(c *fiber.Ctx) error {
	id, err := paramID(c, "hackathonId", "Hackathon")
	if err != nil {
		return err
	}
	projects, err := h.Projects.ListByHackathon(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respondList(c, projects, len(projects))
}

// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "Project")
	if err != nil {
		return err
	}
	var req services.ProjectInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	project, err := h.Projects.Update(c.UserContext(), middleware.CurrentUser(c), id, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, project)
}

// ================== SCORING ENDPOINTS ==================

// SubmitScore records the caller's evaluation of a project
// POST /api/projects/:id/submit
// POST /api/judges/projects/:projectId/score
func (h *ProjectHandler) SubmitScore(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, param, "Project")
		if err != nil {
			return err
		}
		var req services.SubmitScoreInput
		if err := parseBody(c, &req); err != nil {
			return err
		}
		score, err := h.Scoring.SubmitScore(c.UserContext(), middleware.CurrentUser(c), id, req)
		if err != nil {
			return err
		}
		return respond(c, fiber.StatusOK, score)
	}
}

// FinalizeRankings ranks the hackathon's projects and publishes the leaderboard
// POST /api/projects/:id/judge
// POST /api/projects/hackathon/:hackathonId/rankings
func (h *ProjectHandler) FinalizeRankings(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, param, "Hackathon")
		if err != nil {
			return err
		}
		entries, err := h.Scoring.FinalizeRankings(c.UserContext(), middleware.CurrentUser(c), id)
		if err != nil {
			return err
		}
		return respondList(c, entries, len(entries))
	}
}
