// services/project_service.go - Project submissions for registered teams
package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Sarthaklad1034/HackMatrix/models"
	"github.com/Sarthaklad1034/HackMatrix/utils"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectService struct {
	db    *gorm.DB
	now   func() time.Time
	cache LeaderboardCache
}

func NewProjectService(db *gorm.DB, now func() time.Time, cache LeaderboardCache) *ProjectService {
	if now == nil {
		now = time.Now
	}
	if cache == nil {
		cache = NopCache{}
	}
	return &ProjectService{db: db, now: now, cache: cache}
}

// ProjectInput is shared by create and update; nil fields are left untouched on update.
type ProjectInput struct {
	TeamID           uuid.UUID `json:"teamId"`
	HackathonID      uuid.UUID `json:"hackathonId"`
	Title            *string   `json:"title"`
	Description      *string   `json:"description"`
	ProblemStatement *string   `json:"problemStatement"`
	UniqueValue      *string   `json:"uniqueValue"`
	Technologies     *[]string `json:"technologies"`
	GithubRepoURL    *string   `json:"githubRepoUrl"`
	DemoVideoURL     *string   `json:"demoVideoUrl"`
	PresentationURL  *string   `json:"presentationUrl"`
}

// Create submits the team's project. Only the leader may do so, once per team,
// while the hackathon is running.
func (s *ProjectService) Create(ctx context.Context, actor *models.User, in ProjectInput) (*models.Project, error) {
	var project *models.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, err := loadTeam(tx, in.TeamID)
		if err != nil {
			return err
		}
		if !team.IsLeader(actor.ID) {
			return forbidden("Only team leader can submit project")
		}
		if in.HackathonID == uuid.Nil {
			in.HackathonID = team.HackathonID
		}
		if team.HackathonID != in.HackathonID {
			return newError(ErrValidation, "Team does not belong to this hackathon")
		}
		if team.Disqualified {
			return forbidden("Team has been disqualified")
		}

		h, err := loadHackathon(tx, in.HackathonID)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		if !h.RunningAt(now) {
			return newError(ErrWindowClosed, "Project submission is only allowed while the hackathon is running")
		}

		var existing int64
		if err := tx.Model(&models.Project{}).Where("team_id = ?", team.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return conflict("Team has already submitted a project")
		}

		project = &models.Project{TeamID: team.ID, HackathonID: h.ID}
		if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
			return invalid("title", "Project title is required")
		}
		if err := applyProjectInput(project, in); err != nil {
			return err
		}
		project.ApplySubmissionState(now)

		if err := tx.Create(project).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflict("Team has already submitted a project")
			}
			return err
		}
		return recordChange(tx, models.AggregateProject, project.ID, models.OutboxUpsert)
	})
	if err != nil {
		return nil, err
	}
	dropLeaderboard(ctx, s.cache, project.HackathonID)

	log.Printf("📦 Project %q created for team %s (%s)", project.Title, project.TeamID, project.SubmissionStatus)
	return project, nil
}

// Update changes whitelisted fields (leader only) and re-evaluates the submission state.
func (s *ProjectService) Update(ctx context.Context, actor *models.User, id uuid.UUID, in ProjectInput) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Team").First(&project, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Project")
		}
		if err != nil {
			return err
		}
		if project.Team == nil || !project.Team.IsLeader(actor.ID) {
			return forbidden("Only team leader can update project")
		}

		if err := applyProjectInput(&project, in); err != nil {
			return err
		}
		project.ApplySubmissionState(s.now().UTC())

		if err := tx.Omit("Team", "Hackathon", "Scores").Save(&project).Error; err != nil {
			return err
		}
		return recordChange(tx, models.AggregateProject, project.ID, models.OutboxUpsert)
	})
	if err != nil {
		return nil, err
	}
	dropLeaderboard(ctx, s.cache, project.HackathonID)
	return &project, nil
}

// Get loads a project with its team roster and every judge's score.
func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).
		Preload("Team.Members.User").
		Preload("Hackathon").
		Preload("Scores", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Scores.Judge").
		First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Project")
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) ListByHackathon(ctx context.Context, hackathonID uuid.UUID) ([]models.Project, error) {
	if _, err := loadHackathon(s.db.WithContext(ctx), hackathonID); err != nil {
		return nil, err
	}
	var projects []models.Project
	err := s.db.WithContext(ctx).
		Preload("Team").
		Where("hackathon_id = ?", hackathonID).
		Order("created_at ASC").
		Find(&projects).Error
	return projects, err
}

// SubmittedForJudging lists the submitted projects of a hackathon for one of its judges.
func (s *ProjectService) SubmittedForJudging(ctx context.Context, judge *models.User, hackathonID uuid.UUID) ([]models.Project, error) {
	db := s.db.WithContext(ctx)
	if err := ensureAssignedJudge(db, judge, hackathonID); err != nil {
		return nil, err
	}
	var projects []models.Project
	err := db.Preload("Team.Members.User").
		Where("hackathon_id = ? AND submission_status = ?", hackathonID, models.SubmissionSubmitted).
		Order("submission_date ASC").
		Find(&projects).Error
	return projects, err
}

// ================== HELPERS ==================

func applyProjectInput(p *models.Project, in ProjectInput) error {
	var v Validation
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		v.Check(title != "", "title", "Project title is required")
		v.Check(utils.MaxLen(title, 100), "title", "Title cannot be more than 100 characters")
		p.Title = title
	}
	if in.Description != nil {
		v.Check(utils.MaxLen(*in.Description, 2000), "description", "Description cannot be more than 2000 characters")
		p.Description = *in.Description
	}
	if in.ProblemStatement != nil {
		v.Check(utils.MaxLen(*in.ProblemStatement, 500), "problemStatement", "Problem statement cannot be more than 500 characters")
		p.ProblemStatement = *in.ProblemStatement
	}
	if in.UniqueValue != nil {
		v.Check(utils.MaxLen(*in.UniqueValue, 500), "uniqueValue", "Unique value cannot be more than 500 characters")
		p.UniqueValue = *in.UniqueValue
	}
	if in.Technologies != nil {
		p.Technologies = datatypes.JSONSlice[string](utils.CleanList(*in.Technologies))
	}
	if in.GithubRepoURL != nil {
		url := strings.TrimSpace(*in.GithubRepoURL)
		v.Check(url == "" || utils.IsGithubRepoURL(url), "githubRepoUrl", "Please provide a valid GitHub repository URL")
		p.GithubRepoURL = url
	}
	if in.DemoVideoURL != nil {
		url := strings.TrimSpace(*in.DemoVideoURL)
		v.Check(url == "" || utils.IsVideoURL(url), "demoVideoUrl", "Please provide a valid YouTube or Vimeo URL")
		p.DemoVideoURL = url
	}
	if in.PresentationURL != nil {
		url := strings.TrimSpace(*in.PresentationURL)
		v.Check(url == "" || utils.IsPresentationURL(url), "presentationUrl", "Please provide a valid presentation URL (PDF, PPT, PPTX, KEY)")
		p.PresentationURL = url
	}
	return v.Err()
}

// ensureAssignedJudge fails with Forbidden unless the user judges the hackathon.
func ensureAssignedJudge(db *gorm.DB, judge *models.User, hackathonID uuid.UUID) error {
	if _, err := loadHackathon(db, hackathonID); err != nil {
		return err
	}
	if judge == nil {
		return forbidden("Not authorized to judge this hackathon")
	}
	var count int64
	err := db.Model(&models.HackathonJudge{}).
		Where("hackathon_id = ? AND judge_id = ?", hackathonID, judge.ID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return forbidden("Not authorized to judge this hackathon")
	}
	return nil
}
