// models/hackathon.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type HackathonStatus string

const (
	HackathonUpcoming  HackathonStatus = "upcoming"
	HackathonOngoing   HackathonStatus = "ongoing"
	HackathonCompleted HackathonStatus = "completed"
)

const DefaultMaxTeamSize = 4

type Prize struct {
	Place  int    `json:"place"`
	Title  string `json:"title"`
	Amount string `json:"amount"`
}

type Hackathon struct {
	ID          uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string                      `json:"name" gorm:"size:100;not null"`
	Description string                      `json:"description" gorm:"type:text"`
	Theme       string                      `json:"theme" gorm:"size:100;index"`
	Challenges  datatypes.JSONSlice[string] `json:"challenges"`
	Prizes      datatypes.JSONSlice[Prize]  `json:"prizes"`
	Sponsors    datatypes.JSONSlice[string] `json:"sponsors"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Location    string                      `json:"location" gorm:"size:255"`
	IsVirtual   bool                        `json:"isVirtual"`

	StartDate             time.Time `json:"startDate" gorm:"not null"`
	EndDate               time.Time `json:"endDate" gorm:"not null"`
	RegistrationStartDate time.Time `json:"registrationStartDate" gorm:"not null"`
	RegistrationEndDate   time.Time `json:"registrationEndDate" gorm:"not null"`
	MaxTeamSize           int       `json:"maxTeamSize" gorm:"not null;default:4"`

	OrganizerID uuid.UUID `json:"organizerId" gorm:"type:uuid;not null;index"`
	Organizer   *User     `json:"organizer,omitempty" gorm:"foreignKey:OrganizerID"`

	Judges        []HackathonJudge        `json:"judges,omitempty" gorm:"foreignKey:HackathonID"`
	Registrations []HackathonRegistration `json:"registeredTeams,omitempty" gorm:"foreignKey:HackathonID"`

	// Status is derived from the clock on every read.
	Status HackathonStatus `json:"status" gorm:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Hackathon) TableName() string {
	return "hackathons"
}

func (h *Hackathon) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.MaxTeamSize == 0 {
		h.MaxTeamSize = DefaultMaxTeamSize
	}
	h.Challenges = nonNil(h.Challenges)
	h.Sponsors = nonNil(h.Sponsors)
	h.Tags = nonNil(h.Tags)
	if h.Prizes == nil {
		h.Prizes = datatypes.JSONSlice[Prize]{}
	}
	return nil
}

// StatusAt derives the lifecycle status of the event at the given instant.
func (h *Hackathon) StatusAt(now time.Time) HackathonStatus {
	switch {
	case now.Before(h.StartDate):
		return HackathonUpcoming
	case now.After(h.EndDate):
		return HackathonCompleted
	default:
		return HackathonOngoing
	}
}

// RegistrationOpenAt reports whether now lies in [RegistrationStartDate, RegistrationEndDate].
func (h *Hackathon) RegistrationOpenAt(now time.Time) bool {
	return !now.Before(h.RegistrationStartDate) && !now.After(h.RegistrationEndDate)
}

// RunningAt reports whether now lies in [StartDate, EndDate].
func (h *Hackathon) RunningAt(now time.Time) bool {
	return !now.Before(h.StartDate) && !now.After(h.EndDate)
}

func (h *Hackathon) HasJudge(userID uuid.UUID) bool {
	for _, j := range h.Judges {
		if j.JudgeID == userID {
			return true
		}
	}
	return false
}

type HackathonJudge struct {
	HackathonID uuid.UUID `json:"hackathonId" gorm:"type:uuid;primaryKey"`
	JudgeID     uuid.UUID `json:"judgeId" gorm:"type:uuid;primaryKey;index"`
	Judge       *User     `json:"judge,omitempty" gorm:"foreignKey:JudgeID"`
	AddedAt     time.Time `json:"addedAt"`
}

func (HackathonJudge) TableName() string {
	return "hackathon_judges"
}

type HackathonRegistration struct {
	HackathonID  uuid.UUID `json:"hackathonId" gorm:"type:uuid;primaryKey"`
	TeamID       uuid.UUID `json:"teamId" gorm:"type:uuid;primaryKey;index"`
	Team         *Team     `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	RegisteredAt time.Time `json:"registeredAt"`
}

func (HackathonRegistration) TableName() string {
	return "hackathon_registrations"
}

func nonNil(s datatypes.JSONSlice[string]) datatypes.JSONSlice[string] {
	if s == nil {
		return datatypes.JSONSlice[string]{}
	}
	return s
}
