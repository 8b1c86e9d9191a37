// handlers/judges.go - Judge dashboard endpoints
package handlers

import (
	"github.com/Sarthaklad1034/HackMatrix/middleware"
	"github.com/Sarthaklad1034/HackMatrix/services"
	"github.com/gofiber/fiber/v2"
)

type JudgeHandler struct {
	Hackathons *services.HackathonService
	Projects   *services.ProjectService
	Scoring    *services.ScoringService
}

// GET /api/judges/hackathons
func (h *JudgeHandler) ListHackathons(c *fiber.Ctx) error {
	hackathons, err := h.Hackathons.AssignedTo(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return respondList(c, hackathons, len(hackathons))
}

// GET /api/judges/hackathons/:hackathonId/projects
func (h *JudgeHandler) ListProjects(c *fiber.Ctx) error {
	id, err := paramID(c, "hackathonId", "Hackathon")
	if err != nil {
		return err
	}
	projects, err := h.Projects.SubmittedForJudging(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return respondList(c, projects, len(projects))
}

// GET /api/judges/hackathons/:hackathonId/scores
func (h *JudgeHandler) Scores(c *fiber.Ctx) error {
	id, err := paramID(c, "hackathonId", "Hackathon")
	if err != nil {
		return err
	}
	scores, err := h.Scoring.JudgeScores(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return respondList(c, scores, len(scores))
}

// GET /api/judges/hackathons/:hackathonId/scoring-criteria
func (h *JudgeHandler) Criteria(c *fiber.Ctx) error {
	if _, err := paramID(c, "hackathonId", "Hackathon"); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, services.DefaultCriteria())
}
