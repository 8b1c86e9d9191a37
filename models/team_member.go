// models/team_member.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeamMember struct {
	TeamID   uuid.UUID `json:"teamId" gorm:"type:uuid;primaryKey"`
	UserID   uuid.UUID `json:"userId" gorm:"type:uuid;primaryKey;index"`
	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	JoinedAt time.Time `json:"joinedAt" gorm:"not null"`
}

func (TeamMember) TableName() string {
	return "team_members"
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
)

type TeamInvitation struct {
	ID          uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	TeamID      uuid.UUID        `json:"teamId" gorm:"type:uuid;not null;index"`
	Team        *Team            `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	UserID      uuid.UUID        `json:"userId" gorm:"type:uuid;not null;index"`
	User        *User            `json:"user,omitempty" gorm:"foreignKey:UserID"`
	InvitedByID uuid.UUID        `json:"invitedBy" gorm:"type:uuid;not null"`
	Token       string           `json:"token,omitempty" gorm:"size:64;not null;uniqueIndex"`
	Status      InvitationStatus `json:"status" gorm:"size:20;not null;default:'pending';index"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func (TeamInvitation) TableName() string {
	return "team_invitations"
}

func (i *TeamInvitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Token == "" {
		i.Token = uuid.NewString()
	}
	if i.Status == "" {
		i.Status = InvitationPending
	}
	return nil
}
