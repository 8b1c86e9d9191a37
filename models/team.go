// models/team.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TeamStatus string

const (
	TeamForming      TeamStatus = "forming"
	TeamComplete     TeamStatus = "complete"
	TeamDisqualified TeamStatus = "disqualified"
)

type Team struct {
	ID          uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string                      `json:"name" gorm:"size:50;not null;uniqueIndex"`
	Description string                      `json:"description" gorm:"size:500"`
	Skills      datatypes.JSONSlice[string] `json:"skills"`

	HackathonID uuid.UUID  `json:"hackathonId" gorm:"type:uuid;not null;index"`
	Hackathon   *Hackathon `json:"hackathon,omitempty" gorm:"foreignKey:HackathonID"`

	LeaderID uuid.UUID `json:"leaderId" gorm:"type:uuid;not null;index"`
	Leader   *User     `json:"leader,omitempty" gorm:"foreignKey:LeaderID"`

	Members     []TeamMember     `json:"members" gorm:"foreignKey:TeamID"`
	Invitations []TeamInvitation `json:"invitations,omitempty" gorm:"foreignKey:TeamID"`
	Project     *Project         `json:"project,omitempty" gorm:"foreignKey:TeamID"`

	Disqualified bool `json:"-" gorm:"not null;default:false"`
	// Version is bumped on every roster change and compared on write.
	Version int `json:"version" gorm:"not null;default:1"`

	Status TeamStatus `json:"status" gorm:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Team) TableName() string {
	return "teams"
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Version == 0 {
		t.Version = 1
	}
	t.Skills = nonNil(t.Skills)
	return nil
}

// DeriveStatus computes the roster status against the owning hackathon's size limit.
func (t *Team) DeriveStatus(maxTeamSize int) TeamStatus {
	if t.Disqualified {
		return TeamDisqualified
	}
	if maxTeamSize > 0 && len(t.Members) >= maxTeamSize {
		return TeamComplete
	}
	return TeamForming
}

func (t *Team) HasMember(userID uuid.UUID) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

func (t *Team) IsLeader(userID uuid.UUID) bool {
	return t.LeaderID == userID
}
