// models/user.go
package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleParticipant Role = "participant"
	RoleOrganizer   Role = "organizer"
	RoleJudge       Role = "judge"
	RoleAdmin       Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleParticipant, RoleOrganizer, RoleJudge, RoleAdmin:
		return true
	}
	return false
}

// Profile is embedded into the users table with a profile_ column prefix.
type Profile struct {
	Bio         string                      `json:"bio" gorm:"size:500"`
	Skills      datatypes.JSONSlice[string] `json:"skills"`
	AvatarURL   string                      `json:"avatarUrl" gorm:"size:500"`
	GithubURL   string                      `json:"github" gorm:"size:255"`
	LinkedinURL string                      `json:"linkedin" gorm:"size:255"`
}

type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"size:50;not null"`
	Email     string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Role      Role      `json:"role" gorm:"size:20;not null;default:'participant';index"`
	Profile   Profile   `json:"profile" gorm:"embedded;embeddedPrefix:profile_"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Profile.Skills == nil {
		u.Profile.Skills = datatypes.JSONSlice[string]{}
	}
	return nil
}

// HasRole reports whether the user holds any of the given roles.
func (u *User) HasRole(roles ...Role) bool {
	return u != nil && slices.Contains(roles, u.Role)
}

// UserSummary is the public projection used when a user is embedded in another resource.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
