// models/project.go
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubmissionStatus string

const (
	SubmissionDraft      SubmissionStatus = "draft"
	SubmissionSubmitted  SubmissionStatus = "submitted"
	SubmissionIncomplete SubmissionStatus = "incomplete"
)

type Project struct {
	ID               uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	Title            string                      `json:"title" gorm:"size:100;not null"`
	Description      string                      `json:"description" gorm:"size:2000"`
	ProblemStatement string                      `json:"problemStatement" gorm:"size:500"`
	UniqueValue      string                      `json:"uniqueValue" gorm:"size:500"`
	Technologies     datatypes.JSONSlice[string] `json:"technologies"`
	GithubRepoURL    string                      `json:"githubRepoUrl" gorm:"size:500"`
	DemoVideoURL     string                      `json:"demoVideoUrl" gorm:"size:500"`
	PresentationURL  string                      `json:"presentationUrl" gorm:"size:500"`

	TeamID      uuid.UUID  `json:"teamId" gorm:"type:uuid;not null;uniqueIndex"`
	Team        *Team      `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	HackathonID uuid.UUID  `json:"hackathonId" gorm:"type:uuid;not null;index"`
	Hackathon   *Hackathon `json:"hackathon,omitempty" gorm:"foreignKey:HackathonID"`

	SubmissionStatus SubmissionStatus `json:"submissionStatus" gorm:"size:20;not null;default:'draft';index"`
	SubmissionDate   *time.Time       `json:"submissionDate"`

	FinalScore float64 `json:"finalScore" gorm:"not null;default:0"`
	Rank       int     `json:"rank,omitempty" gorm:"not null;default:0"`

	// Scores is loaded from the scores table; it is never written through the project.
	Scores []Score `json:"scores,omitempty" gorm:"foreignKey:ProjectID"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Project) TableName() string {
	return "projects"
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Technologies = nonNil(p.Technologies)
	return nil
}

// IsFullySubmitted holds when the project carries everything judges need.
func (p *Project) IsFullySubmitted() bool {
	return strings.TrimSpace(p.Description) != "" &&
		len(p.Technologies) > 0 &&
		strings.TrimSpace(p.GithubRepoURL) != "" &&
		strings.TrimSpace(p.DemoVideoURL) != ""
}

// ApplySubmissionState moves the project between draft, submitted and incomplete
// after its fields changed. The submission date is stamped once, on first submission.
func (p *Project) ApplySubmissionState(now time.Time) {
	if p.IsFullySubmitted() {
		p.SubmissionStatus = SubmissionSubmitted
		if p.SubmissionDate == nil {
			t := now
			p.SubmissionDate = &t
		}
		return
	}
	if p.SubmissionDate != nil {
		p.SubmissionStatus = SubmissionIncomplete
		return
	}
	p.SubmissionStatus = SubmissionDraft
}
