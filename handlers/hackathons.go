// handlers/hackathons.go - Hackathon registry endpoints
package handlers

import (
	"fmt"

	"github.com/Sarthaklad1034/HackMatrix/middleware"
	"github.com/Sarthaklad1034/HackMatrix/models"
	"github.com/Sarthaklad1034/HackMatrix/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type HackathonHandler struct {
	Hackathons *services.HackathonService
	Scoring    *services.ScoringService
}

// ================== HACKATHON CRUD ENDPOINTS ==================

// GET /api/hackathons?status=&theme=&tags=
func (h *HackathonHandler) List(c *fiber.Ctx) error {
	filter := services.HackathonFilter{
		Status: models.HackathonStatus(c.Query("status")),
		Theme:  c.Query("theme"),
		Tags:   splitCSV(c.Query("tags")),
	}
	hackathons, err := h.Hackathons.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return respondList(c, hackathons, len(hackathons))
}

// GET /api/hackathons/search?q=
func (h *HackathonHandler) Search(c *fiber.Ctx) error {
	hackathons, err := h.Hackathons.Search(c.UserContext(), c.Query("q"), c.QueryInt("limit", 20))
	if err != nil {
		return err
	}
	return respondList(c, hackathons, len(hackathons))
}

// GET /api/hackathons/:id
func (h *HackathonHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "Hackathon")
	if err != nil {
		return err
	}
	hackathon, err := h.Hackathons.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, hackathon)
}

// POST /api/hackathons
func (h *HackathonHandler) Create(c *fiber.Ctx) error {
	var req services.HackathonInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	hackathon, err := h.Hackathons.Create(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, hackathon)
}

// PUT /api/hackathons/:id
func (h *HackathonHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "Hackathon")
	if err != nil {
		return err
	}
	var req services.HackathonInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	hackathon, err := h.Hackathons.Update(c.UserContext(), middleware.CurrentUser(c), id, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, hackathon)
}

// DELETE /api/hackathons/:id
func (h *HackathonHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "Hackathon")
	if err != nil {
		return err
	}
	if err := h.Hackathons.Delete(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{})
}

// ================== REGISTRATION & JUDGES ==================

// POST /api/hackathons/:id/register-team
func (h *HackathonHandler) RegisterTeam(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "Hackathon")
	if err != nil {
		return err
	}
	var req struct {
		TeamID uuid.UUID `json:"teamId"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	hackathon, err := h.Hackathons.RegisterTeam(c.UserContext(), middleware.CurrentUser(c), id, req.TeamID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, hackathon)
}

// POST /api/hackathons/:id/add-judge
func (h *HackathonHandler) AddJudge(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "Hackathon")
	if err != nil {
		return err
	}
	var req struct {
		JudgeID uuid.UUID `json:"judgeId"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	hackathon, err := h.Hackathons.AddJudge(c.UserContext(), middleware.CurrentUser(c), id, req.JudgeID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, hackathon)
}

// ================== RANKINGS ==================

// GET /api/hackathons/:id/leaderboard
func (h *HackathonHandler) Leaderboard(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "Hackathon")
	if err != nil {
		return err
	}
	entries, err := h.Scoring.Leaderboard(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respondList(c, entries, len(entries))
}

// ExportRankings streams the ranking workbook
// GET /api/hackathons/:id/rankings/export
func (h *HackathonHandler) ExportRankings(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "Hackathon")
	if err != nil {
		return err
	}
	hackathon, projects, err := h.Scoring.RankedProjects(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return err
	}
	wb, err := services.BuildRankingWorkbook(hackathon, projects)
	if err != nil {
		return err
	}
	defer wb.Close()

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="rankings-%s.xlsx"`, id))
	return c.Send(buf.Bytes())
}
