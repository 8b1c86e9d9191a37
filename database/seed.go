// database/seed.go - Bootstrap data
package database

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Sarthaklad1034/HackMatrix/config"
	"github.com/Sarthaklad1034/HackMatrix/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin makes sure the configured administrator account exists.
// Admin is not a self-service role, so this is the only way one is created.
func SeedAdmin(db *gorm.DB, seed config.AdminSeed) error {
	email := strings.ToLower(strings.TrimSpace(seed.Email))
	if email == "" {
		return nil
	}
	if len(seed.Password) < 6 {
		return errors.New("ADMIN_PASSWORD must be at least 6 characters")
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		if existing.Role != models.RoleAdmin {
			return db.Model(&existing).Update("role", models.RoleAdmin).Error
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		Name:     seed.Name,
		Email:    email,
		Password: string(hash),
		Role:     models.RoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	log.Printf("👤 Seeded administrator %s", email)
	return nil
}
