// database/migrate.go - Database Migration Runner
package database

import (
	"fmt"
	"log"

	"github.com/Sarthaklad1034/HackMatrix/models"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the server uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Hackathon{},
		&models.HackathonJudge{},
		&models.HackathonRegistration{},
		&models.Team{},
		&models.TeamMember{},
		&models.TeamInvitation{},
		&models.Project{},
		&models.Score{},
	); err != nil {
		return fmt.Errorf("core migrations: %w", err)
	}

	if err := db.AutoMigrate(&models.OutboxEvent{}, &models.DeadLetter{}); err != nil {
		return fmt.Errorf("outbox migrations: %w", err)
	}

	return createIndexes(db)
}

var indexStatements = []string{
	// Hackathon listings
	"CREATE INDEX IF NOT EXISTS idx_hackathons_start_date ON hackathons(start_date)",
	"CREATE INDEX IF NOT EXISTS idx_hackathons_registration ON hackathons(registration_start_date, registration_end_date)",

	// Rankings
	"CREATE INDEX IF NOT EXISTS idx_projects_hackathon_score ON projects(hackathon_id, final_score DESC)",

	// Pending invitations per user
	"CREATE INDEX IF NOT EXISTS idx_team_invitations_user_status ON team_invitations(user_id, status)",

	// Outbox polling
	"CREATE INDEX IF NOT EXISTS idx_outbox_events_pending ON outbox_events(processed, id)",
}

func createIndexes(db *gorm.DB) error {
	for _, stmt := range indexStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	log.Println("✅ Database migrations completed")
	return nil
}
