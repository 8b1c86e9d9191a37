// routes/routes.go - HTTP route table
package routes

import (
	"github.com/Sarthaklad1034/HackMatrix/handlers"
	"github.com/Sarthaklad1034/HackMatrix/handlers/admin"
	"github.com/Sarthaklad1034/HackMatrix/middleware"
	"github.com/Sarthaklad1034/HackMatrix/models"
	"github.com/Sarthaklad1034/HackMatrix/realtime"
	"github.com/Sarthaklad1034/HackMatrix/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps is everything the route table needs. Nil limiters disable rate limiting
// and a nil Cleanup leaves the cleanup admin routes unregistered.
type Deps struct {
	DB          *gorm.DB
	Users       *services.UserService
	Hackathons  *services.HackathonService
	Teams       *services.TeamService
	Projects    *services.ProjectService
	Scoring     *services.ScoringService
	Hub         *realtime.Hub
	Cleanup     *services.CleanupService
	APILimiter  *middleware.RateLimiter
	AuthLimiter *middleware.RateLimiter
}

func Register(app *fiber.App, d Deps) {
	authH := &handlers.AuthHandler{Users: d.Users}
	hackH := &handlers.HackathonHandler{Hackathons: d.Hackathons, Scoring: d.Scoring}
	teamH := &handlers.TeamHandler{Teams: d.Teams}
	projH := &handlers.ProjectHandler{Projects: d.Projects, Scoring: d.Scoring}
	judgeH := &handlers.JudgeHandler{Hackathons: d.Hackathons, Projects: d.Projects, Scoring: d.Scoring}
	liveH := &handlers.RealtimeHandler{Hub: d.Hub, Hackathons: d.Hackathons, Scoring: d.Scoring}

	auth := middleware.Auth(d.Users)
	manager := middleware.RequireRoles(models.RoleOrganizer, models.RoleAdmin)

	app.Get("/health", handlers.Health(d.DB))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api", middleware.RateLimit(d.APILimiter, "Rate limit exceeded. Please try again later."))

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth", middleware.RateLimit(d.AuthLimiter, "Too many authentication attempts. Please try again later."))
	authGroup.Post("/register", authH.Register)
	authGroup.Post("/login", authH.Login)
	authGroup.Get("/profile", auth, authH.Profile)
	authGroup.Put("/profile", auth, authH.UpdateProfile)

	api.Get("/users/search", auth, authH.SearchUsers)

	// Hackathon routes
	hackathons := api.Group("/hackathons")
	hackathons.Get("/", hackH.List)
	hackathons.Get("/search", hackH.Search)
	hackathons.Post("/", auth, manager, hackH.Create)
	hackathons.Get("/:id", hackH.Get)
	hackathons.Put("/:id", auth, manager, hackH.Update)
	hackathons.Delete("/:id", auth, manager, hackH.Delete)
	hackathons.Post("/:id/register-team", auth, hackH.RegisterTeam)
	hackathons.Post("/:id/add-judge", auth, manager, hackH.AddJudge)
	hackathons.Get("/:id/leaderboard", hackH.Leaderboard)
	hackathons.Get("/:id/rankings/export", auth, hackH.ExportRankings)

	// Team routes
	teams := api.Group("/teams", auth)
	teams.Post("/", teamH.CreateTeam)
	teams.Get("/invitations", teamH.Invitations)
	teams.Post("/accept-invite/:inviteToken", teamH.AcceptInviteByToken)
	teams.Get("/hackathon/:hackathonId", teamH.ListByHackathon)
	teams.Get("/:id", teamH.GetTeam)
	teams.Put("/:id", teamH.UpdateTeam)
	teams.Post("/:id/invite", teamH.InviteMember)
	teams.Put("/:id/accept-invite", teamH.AcceptInvite)
	teams.Post("/:id/decline-invite", teamH.DeclineInvite)
	teams.Put("/:id/transfer-leadership", teamH.TransferLeadership)
	teams.Post("/:id/disqualify", teamH.Disqualify)
	teams.Delete("/:teamId/members/:memberId", teamH.RemoveMember)

	// Project routes
	projects := api.Group("/projects", auth)
	projects.Post("/", projH.Create)
	projects.Get("/hackathon/:hackathonId", projH.ListByHackathon)
	projects.Post("/hackathon/:hackathonId/rankings", projH.FinalizeRankings("hackathonId"))
	projects.Get("/:id", projH.Get)
	projects.Put("/:id", projH.Update)
	projects.Post("/:id/submit", projH.SubmitScore("id"))
	projects.Post("/:id/judge", projH.FinalizeRankings("id"))

	// Judge routes
	judges := api.Group("/judges", auth, middleware.RequireRoles(models.RoleJudge, models.RoleAdmin))
	judges.Get("/hackathons", judgeH.ListHackathons)
	judges.Get("/hackathons/:hackathonId/projects", judgeH.ListProjects)
	judges.Get("/hackathons/:hackathonId/scores", judgeH.Scores)
	judges.Get("/hackathons/:hackathonId/scoring-criteria", judgeH.Criteria)
	judges.Post("/projects/:projectId/score", projH.SubmitScore("projectId"))

	// Admin routes
	adminGroup := api.Group("/admin", auth, middleware.RequireRoles(models.RoleAdmin))
	userAdmin := &admin.UserAdmin{Users: d.Users}
	adminGroup.Get("/users", userAdmin.ListUsers)
	adminGroup.Put("/users/:id/role", userAdmin.SetRole)
	if d.Cleanup != nil {
		cleanupAdmin := &admin.CleanupAdmin{Cleanup: d.Cleanup}
		adminGroup.Post("/cleanup", cleanupAdmin.ManualCleanup)
		adminGroup.Get("/cleanup/stats", cleanupAdmin.CleanupStats)
	}

	app.Get("/ws/hackathons/:id/leaderboard", liveH.Upgrade, liveH.Leaderboard())
}
