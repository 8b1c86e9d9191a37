// models/score.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ScoreCriterion struct {
	Name string `json:"name"`
	// Weight defaults to 1 when omitted.
	Weight   *float64 `json:"weight,omitempty"`
	Score    float64  `json:"score"`
	Comments string   `json:"comments,omitempty"`
}

func (c ScoreCriterion) EffectiveWeight() float64 {
	if c.Weight == nil {
		return 1
	}
	return *c.Weight
}

// Score is the single stored record of one judge's evaluation of one project.
type Score struct {
	ID              uuid.UUID                           `json:"id" gorm:"type:uuid;primaryKey"`
	ProjectID       uuid.UUID                           `json:"projectId" gorm:"type:uuid;not null;uniqueIndex:idx_scores_project_judge_hackathon"`
	Project         *Project                            `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	JudgeID         uuid.UUID                           `json:"judgeId" gorm:"type:uuid;not null;uniqueIndex:idx_scores_project_judge_hackathon;index"`
	Judge           *User                               `json:"judge,omitempty" gorm:"foreignKey:JudgeID"`
	HackathonID     uuid.UUID                           `json:"hackathonId" gorm:"type:uuid;not null;uniqueIndex:idx_scores_project_judge_hackathon;index"`
	Criteria        datatypes.JSONSlice[ScoreCriterion] `json:"scoreCriteria"`
	TotalScore      float64                             `json:"totalScore" gorm:"not null;default:0"`
	OverallComments string                              `json:"overallComments" gorm:"size:1000"`
	CreatedAt       time.Time                           `json:"createdAt"`
	UpdatedAt       time.Time                           `json:"updatedAt"`
}

func (Score) TableName() string {
	return "scores"
}

func (s *Score) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Criteria == nil {
		s.Criteria = datatypes.JSONSlice[ScoreCriterion]{}
	}
	return nil
}
