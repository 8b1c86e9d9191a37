// services/scoring_service.go - Judge scoring, final scores and rankings
package services

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/Sarthaklad1034/HackMatrix/metrics"
	"github.com/Sarthaklad1034/HackMatrix/models"
	"github.com/Sarthaklad1034/HackMatrix/utils"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	minCriterionValue = 0
	maxCriterionValue = 10
)

// LeaderboardPublisher pushes a freshly finalized leaderboard to live subscribers.
type LeaderboardPublisher interface {
	Publish(hackathonID uuid.UUID, payload any)
}

type ScoringService struct {
	db        *gorm.DB
	now       func() time.Time
	cache     LeaderboardCache
	publisher LeaderboardPublisher
}

func NewScoringService(db *gorm.DB, now func() time.Time, cache LeaderboardCache) *ScoringService {
	if now == nil {
		now = time.Now
	}
	if cache == nil {
		cache = NopCache{}
	}
	return &ScoringService{db: db, now: now, cache: cache}
}

func (s *ScoringService) WithPublisher(p LeaderboardPublisher) *ScoringService {
	s.publisher = p
	return s
}

type SubmitScoreInput struct {
	HackathonID     uuid.UUID               `json:"hackathonId"`
	ScoreCriteria   []models.ScoreCriterion `json:"scoreCriteria"`
	OverallComments string                  `json:"overallComments"`
}

// LeaderboardEntry is one ranked line of a hackathon's standings.
type LeaderboardEntry struct {
	Rank           int        `json:"rank"`
	ProjectID      uuid.UUID  `json:"projectId"`
	Title          string     `json:"title"`
	TeamID         uuid.UUID  `json:"teamId"`
	TeamName       string     `json:"teamName"`
	FinalScore     float64    `json:"finalScore"`
	JudgeCount     int        `json:"judgeCount"`
	SubmissionDate *time.Time `json:"submissionDate"`
	Disqualified   bool       `json:"disqualified,omitempty"`
}

// ================== SCORE COMPUTATION ==================

// WeightedMean returns Σ(score×weight)/Σ(weight). No criteria, or a zero total weight, yields 0.
func WeightedMean(criteria []models.ScoreCriterion) float64 {
	var sum, weights float64
	for _, c := range criteria {
		w := c.EffectiveWeight()
		sum += c.Score * w
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return sum / weights
}

// Mean is the unweighted average of the judges' totals.
func Mean(totals []float64) float64 {
	if len(totals) == 0 {
		return 0
	}
	var sum float64
	for _, t := range totals {
		sum += t
	}
	return sum / float64(len(totals))
}

// compareProjects orders by final score (desc), then earliest submission
// (unsubmitted last), then creation time, then id.
func compareProjects(a, b models.Project) int {
	if c := cmp.Compare(b.FinalScore, a.FinalScore); c != 0 {
		return c
	}
	switch {
	case a.SubmissionDate != nil && b.SubmissionDate == nil:
		return -1
	case a.SubmissionDate == nil && b.SubmissionDate != nil:
		return 1
	case a.SubmissionDate != nil && b.SubmissionDate != nil:
		if c := a.SubmissionDate.Compare(*b.SubmissionDate); c != 0 {
			return c
		}
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID.String(), b.ID.String())
}

func isDisqualified(p models.Project) bool {
	return p.Team != nil && p.Team.Disqualified
}

// RankProjects sorts projects into final order and assigns 1-based ranks.
// Projects of disqualified teams go last with rank 0.
func RankProjects(projects []models.Project) {
	slices.SortStableFunc(projects, func(a, b models.Project) int {
		qa, qb := isDisqualified(a), isDisqualified(b)
		if qa != qb {
			if qa {
				return 1
			}
			return -1
		}
		return compareProjects(a, b)
	})

	rank := 0
	for i := range projects {
		if isDisqualified(projects[i]) {
			projects[i].Rank = 0
			continue
		}
		rank++
		projects[i].Rank = rank
	}
}

// DefaultCriteria is the rubric offered to judges.
func DefaultCriteria() []models.ScoreCriterion {
	weight := func(w float64) *float64 { return &w }
	return []models.ScoreCriterion{
		{Name: "Innovation", Weight: weight(3)},
		{Name: "Technical Complexity", Weight: weight(3)},
		{Name: "Presentation", Weight: weight(2)},
		{Name: "Potential Impact", Weight: weight(2)},
	}
}

// ================== SCORE SUBMISSION ==================

// SubmitScore records a judge's evaluation of a project. Re-submitting replaces the judge's
// previous score; the project's final score is recomputed from all stored scores.
func (s *ScoringService) SubmitScore(ctx context.Context, judge *models.User, projectID uuid.UUID, in SubmitScoreInput) (*models.Score, error) {
	db := s.db.WithContext(ctx)
	if err := ensureAssignedJudge(db, judge, in.HackathonID); err != nil {
		return nil, err
	}
	if err := validateCriteria(in); err != nil {
		return nil, err
	}

	start := time.Now()
	var score models.Score
	err := db.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		err := tx.First(&project, "id = ?", projectID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Project")
		}
		if err != nil {
			return err
		}
		if project.HackathonID != in.HackathonID {
			return newError(ErrValidation, "Project does not belong to this hackathon")
		}

		upsert := models.Score{
			ProjectID:       projectID,
			JudgeID:         judge.ID,
			HackathonID:     in.HackathonID,
			Criteria:        datatypes.JSONSlice[models.ScoreCriterion](in.ScoreCriteria),
			TotalScore:      WeightedMean(in.ScoreCriteria),
			OverallComments: in.OverallComments,
		}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "judge_id"}, {Name: "hackathon_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"criteria", "total_score", "overall_comments", "updated_at"}),
		}).Create(&upsert).Error
		if err != nil {
			return err
		}

		// the generated id is discarded when the row already existed
		if err := tx.Where("project_id = ? AND judge_id = ? AND hackathon_id = ?", projectID, judge.ID, in.HackathonID).
			First(&score).Error; err != nil {
			return err
		}

		if err := refreshFinalScore(tx, projectID); err != nil {
			return err
		}
		return recordChange(tx, models.AggregateProject, projectID, models.OutboxUpsert)
	})
	metrics.RecordDBOperation("submit_score", start)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, in.HackathonID)
	metrics.ScoresSubmitted.Inc()
	log.Printf("⚖️ Judge %s scored project %s: %.2f", judge.Email, projectID, score.TotalScore)
	return &score, nil
}

func validateCriteria(in SubmitScoreInput) error {
	var v Validation
	v.Check(in.HackathonID != uuid.Nil, "hackathonId", "Hackathon is required")
	for _, c := range in.ScoreCriteria {
		v.Check(strings.TrimSpace(c.Name) != "", "scoreCriteria.name", "Criterion name is required")
		v.Check(utils.InRange(c.Score, minCriterionValue, maxCriterionValue), "scoreCriteria.score",
			"Score must be between 0 and 10")
		if c.Weight != nil {
			v.Check(utils.InRange(*c.Weight, minCriterionValue, maxCriterionValue), "scoreCriteria.weight",
				"Weight must be between 0 and 10")
		}
		v.Check(utils.MaxLen(c.Comments, 500), "scoreCriteria.comments", "Comments cannot be more than 500 characters")
	}
	v.Check(utils.MaxLen(in.OverallComments, 1000), "overallComments", "Overall comments cannot be more than 1000 characters")
	return v.Err()
}

func refreshFinalScore(tx *gorm.DB, projectID uuid.UUID) error {
	var totals []float64
	if err := tx.Model(&models.Score{}).
		Where("project_id = ?", projectID).
		Pluck("total_score", &totals).Error; err != nil {
		return err
	}
	return tx.Model(&models.Project{}).Where("id = ?", projectID).Update("final_score", Mean(totals)).Error
}

// JudgeScores lists the scores a judge has given in one hackathon.
func (s *ScoringService) JudgeScores(ctx context.Context, judge *models.User, hackathonID uuid.UUID) ([]models.Score, error) {
	db := s.db.WithContext(ctx)
	if err := ensureAssignedJudge(db, judge, hackathonID); err != nil {
		return nil, err
	}
	var scores []models.Score
	err := db.Preload("Project").
		Where("judge_id = ? AND hackathon_id = ?", judge.ID, hackathonID).
		Order("updated_at DESC").
		Find(&scores).Error
	return scores, err
}

// ================== RANKINGS ==================

// FinalizeRankings recomputes and persists the rank of every project in the hackathon.
// Calling it again with unchanged scores yields the same ranks.
func (s *ScoringService) FinalizeRankings(ctx context.Context, actor *models.User, hackathonID uuid.UUID) ([]LeaderboardEntry, error) {
	db := s.db.WithContext(ctx)
	h, err := loadHackathon(db, hackathonID)
	if err != nil {
		return nil, err
	}
	if !canManageHackathon(actor, h) {
		return nil, forbidden("Only the hackathon organizer can finalize rankings")
	}

	start := time.Now()
	var projects []models.Project
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Team").Where("hackathon_id = ?", hackathonID).Find(&projects).Error; err != nil {
			return err
		}
		RankProjects(projects)
		for _, p := range projects {
			if err := tx.Model(&models.Project{}).Where("id = ?", p.ID).Update("rank", p.Rank).Error; err != nil {
				return err
			}
			if err := recordChange(tx, models.AggregateProject, p.ID, models.OutboxUpsert); err != nil {
				return err
			}
		}
		return nil
	})
	metrics.RecordDBOperation("finalize_rankings", start)
	if err != nil {
		return nil, err
	}

	entries, err := s.entriesFor(ctx, projects)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, hackathonID)
	metrics.RankingsFinalized.Inc()
	if s.publisher != nil {
		s.publisher.Publish(hackathonID, entries)
	}
	log.Printf("🏆 Rankings finalized for %q (%d projects) by %s", h.Name, len(projects), actor.Email)
	return entries, nil
}

// Leaderboard returns the current standings, served from the cache when possible.
func (s *ScoringService) Leaderboard(ctx context.Context, hackathonID uuid.UUID) ([]LeaderboardEntry, error) {
	if data, ok, err := s.cache.Get(ctx, hackathonID); err != nil {
		log.Printf("⚠️ leaderboard cache read failed for %s: %v", hackathonID, err)
	} else if ok {
		var entries []LeaderboardEntry
		if err := json.Unmarshal(data, &entries); err == nil {
			return entries, nil
		}
	}

	db := s.db.WithContext(ctx)
	if _, err := loadHackathon(db, hackathonID); err != nil {
		return nil, err
	}
	var projects []models.Project
	if err := db.Preload("Team").Where("hackathon_id = ?", hackathonID).Find(&projects).Error; err != nil {
		return nil, err
	}
	RankProjects(projects)

	entries, err := s.entriesFor(ctx, projects)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(entries); err == nil {
		if err := s.cache.Set(ctx, hackathonID, data); err != nil {
			log.Printf("⚠️ leaderboard cache write failed for %s: %v", hackathonID, err)
		}
	}
	return entries, nil
}

// RankedProjects loads the projects of a hackathon in final order, for exports.
func (s *ScoringService) RankedProjects(ctx context.Context, actor *models.User, hackathonID uuid.UUID) (*models.Hackathon, []models.Project, error) {
	db := s.db.WithContext(ctx)
	h, err := loadHackathon(db, hackathonID)
	if err != nil {
		return nil, nil, err
	}
	if actor != nil && !canManageHackathon(actor, h) {
		return nil, nil, forbidden("Not authorized to export rankings for this hackathon")
	}
	var projects []models.Project
	if err := db.Preload("Team").Preload("Scores").Where("hackathon_id = ?", hackathonID).Find(&projects).Error; err != nil {
		return nil, nil, err
	}
	RankProjects(projects)
	return h, projects, nil
}

func (s *ScoringService) entriesFor(ctx context.Context, projects []models.Project) ([]LeaderboardEntry, error) {
	ids := make([]uuid.UUID, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}

	judgeCounts := map[uuid.UUID]int{}
	if len(ids) > 0 {
		var rows []struct {
			ProjectID uuid.UUID
			Judges    int
		}
		err := s.db.WithContext(ctx).Model(&models.Score{}).
			Select("project_id, COUNT(*) AS judges").
			Where("project_id IN ?", ids).
			Group("project_id").
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			judgeCounts[r.ProjectID] = r.Judges
		}
	}

	entries := make([]LeaderboardEntry, 0, len(projects))
	for _, p := range projects {
		entry := LeaderboardEntry{
			Rank:           p.Rank,
			ProjectID:      p.ID,
			Title:          p.Title,
			TeamID:         p.TeamID,
			FinalScore:     p.FinalScore,
			JudgeCount:     judgeCounts[p.ID],
			SubmissionDate: p.SubmissionDate,
			Disqualified:   isDisqualified(p),
		}
		if p.Team != nil {
			entry.TeamName = p.Team.Name
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *ScoringService) invalidate(ctx context.Context, hackathonID uuid.UUID) {
	dropLeaderboard(ctx, s.cache, hackathonID)
}
