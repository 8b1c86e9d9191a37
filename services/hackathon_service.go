// services/hackathon_service.go - Hackathon registry: events, judges, team registration
package services

import (
	"context"
	"errors"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/Sarthaklad1034/HackMatrix/models"
	"github.com/Sarthaklad1034/HackMatrix/utils"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxAllowedTeamSize = 10

// HackathonSearcher is the full-text backend consulted by Search when configured.
type HackathonSearcher interface {
	SearchHackathons(ctx context.Context, query string, size int) ([]uuid.UUID, error)
}

type HackathonService struct {
	db       *gorm.DB
	now      func() time.Time
	cache    LeaderboardCache
	searcher HackathonSearcher
}

func NewHackathonService(db *gorm.DB, now func() time.Time, cache LeaderboardCache) *HackathonService {
	if now == nil {
		now = time.Now
	}
	if cache == nil {
		cache = NopCache{}
	}
	return &HackathonService{db: db, now: now, cache: cache}
}

// WithSearcher enables full-text search through an external index.
func (s *HackathonService) WithSearcher(searcher HackathonSearcher) *HackathonService {
	s.searcher = searcher
	return s
}

// HackathonInput carries create/update fields; nil means "not provided".
type HackathonInput struct {
	Name                  *string         `json:"name"`
	Description           *string         `json:"description"`
	Theme                 *string         `json:"theme"`
	Challenges            *[]string       `json:"challenges"`
	Prizes                *[]models.Prize `json:"prizes"`
	Sponsors              *[]string       `json:"sponsors"`
	Tags                  *[]string       `json:"tags"`
	Location              *string         `json:"location"`
	IsVirtual             *bool           `json:"isVirtual"`
	StartDate             *time.Time      `json:"startDate"`
	EndDate               *time.Time      `json:"endDate"`
	RegistrationStartDate *time.Time      `json:"registrationStartDate"`
	RegistrationEndDate   *time.Time      `json:"registrationEndDate"`
	MaxTeamSize           *int            `json:"maxTeamSize"`
}

type HackathonFilter struct {
	Status models.HackathonStatus
	Theme  string
	Tags   []string
}

// ================== HACKATHON CRUD OPERATIONS ==================

func (s *HackathonService) Create(ctx context.Context, actor *models.User, in HackathonInput) (*models.Hackathon, error) {
	if !actor.HasRole(models.RoleOrganizer, models.RoleAdmin) {
		return nil, forbidden("Only organizers and admins can create hackathons")
	}

	var v Validation
	v.Check(in.Name != nil && strings.TrimSpace(*in.Name) != "", "name", "Hackathon name is required")
	v.Check(in.StartDate != nil, "startDate", "Start date is required")
	v.Check(in.EndDate != nil, "endDate", "End date is required")
	v.Check(in.RegistrationStartDate != nil, "registrationStartDate", "Registration start date is required")
	v.Check(in.RegistrationEndDate != nil, "registrationEndDate", "Registration end date is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	h := &models.Hackathon{OrganizerID: actor.ID, MaxTeamSize: models.DefaultMaxTeamSize}
	applyHackathonInput(h, in)
	if err := validateHackathon(h); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(h).Error; err != nil {
			return err
		}
		return recordChange(tx, models.AggregateHackathon, h.ID, models.OutboxUpsert)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🏁 Hackathon %q created by %s", h.Name, actor.Email)
	h.Organizer = actor
	h.Status = h.StatusAt(s.now())
	return h, nil
}

// List returns hackathons ordered by start date. Status is derived, so it is filtered after loading.
func (s *HackathonService) List(ctx context.Context, f HackathonFilter) ([]models.Hackathon, error) {
	q := s.db.WithContext(ctx).Preload("Organizer").Order("start_date ASC")
	if theme := strings.TrimSpace(f.Theme); theme != "" {
		q = q.Where("LOWER(theme) LIKE ?", "%"+strings.ToLower(theme)+"%")
	}

	var all []models.Hackathon
	if err := q.Find(&all).Error; err != nil {
		return nil, err
	}

	tags := utils.CleanList(f.Tags)
	now := s.now()
	out := make([]models.Hackathon, 0, len(all))
	for _, h := range all {
		h.Status = h.StatusAt(now)
		if f.Status != "" && h.Status != f.Status {
			continue
		}
		if len(tags) > 0 && !slices.ContainsFunc(tags, func(t string) bool { return slices.Contains(h.Tags, t) }) {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

func (s *HackathonService) Get(ctx context.Context, id uuid.UUID) (*models.Hackathon, error) {
	var h models.Hackathon
	err := s.db.WithContext(ctx).
		Preload("Organizer").
		Preload("Judges.Judge").
		Preload("Registrations.Team.Members").
		First(&h, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Hackathon")
	}
	if err != nil {
		return nil, err
	}
	h.Status = h.StatusAt(s.now())
	return &h, nil
}

func (s *HackathonService) Update(ctx context.Context, actor *models.User, id uuid.UUID, in HackathonInput) (*models.Hackathon, error) {
	h, err := loadHackathon(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if !canManageHackathon(actor, h) {
		return nil, forbidden("Not authorized to update this hackathon")
	}

	applyHackathonInput(h, in)
	if err := validateHackathon(h); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.MaxTeamSize != nil {
			largest, err := largestTeamSize(tx, h.ID)
			if err != nil {
				return err
			}
			if largest > h.MaxTeamSize {
				return conflict("A team already has %d members; maxTeamSize cannot go below that", largest)
			}
		}
		if err := tx.Omit("Organizer", "Judges", "Registrations").Save(h).Error; err != nil {
			return err
		}
		return recordChange(tx, models.AggregateHackathon, h.ID, models.OutboxUpsert)
	})
	if err != nil {
		return nil, err
	}

	h.Status = h.StatusAt(s.now())
	return h, nil
}

// Delete removes the hackathon and everything that belongs to it in a single transaction.
func (s *HackathonService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	h, err := loadHackathon(s.db.WithContext(ctx), id)
	if err != nil {
		return err
	}
	if !canManageHackathon(actor, h) {
		return forbidden("Not authorized to delete this hackathon")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var projectIDs []uuid.UUID
		if err := tx.Model(&models.Project{}).Where("hackathon_id = ?", id).Pluck("id", &projectIDs).Error; err != nil {
			return err
		}
		var teamIDs []uuid.UUID
		if err := tx.Model(&models.Team{}).Where("hackathon_id = ?", id).Pluck("id", &teamIDs).Error; err != nil {
			return err
		}

		steps := []struct {
			model any
			query string
			args  []any
		}{
			{&models.Score{}, "hackathon_id = ?", []any{id}},
			{&models.Project{}, "hackathon_id = ?", []any{id}},
			{&models.TeamInvitation{}, "team_id IN ?", []any{teamIDs}},
			{&models.TeamMember{}, "team_id IN ?", []any{teamIDs}},
			{&models.HackathonRegistration{}, "hackathon_id = ?", []any{id}},
			{&models.Team{}, "hackathon_id = ?", []any{id}},
			{&models.HackathonJudge{}, "hackathon_id = ?", []any{id}},
		}
		for _, step := range steps {
			if err := tx.Where(step.query, step.args...).Delete(step.model).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.Hackathon{}, "id = ?", id).Error; err != nil {
			return err
		}

		if err := recordChanges(tx, models.AggregateProject, projectIDs, models.OutboxDelete); err != nil {
			return err
		}
		return recordChange(tx, models.AggregateHackathon, id, models.OutboxDelete)
	})
	if err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		log.Printf("⚠️ leaderboard cache invalidation failed for %s: %v", id, err)
	}
	log.Printf("🗑️ Hackathon %s deleted by %s", id, actor.Email)
	return nil
}

// ================== REGISTRATION & JUDGES ==================

// RegisterTeam registers a team while the registration window is open (both ends inclusive).
func (s *HackathonService) RegisterTeam(ctx context.Context, actor *models.User, hackathonID, teamID uuid.UUID) (*models.Hackathon, error) {
	db := s.db.WithContext(ctx)
	h, err := loadHackathon(db, hackathonID)
	if err != nil {
		return nil, err
	}
	team, err := loadTeam(db, teamID)
	if err != nil {
		return nil, err
	}
	if !team.IsLeader(actor.ID) && !canManageHackathon(actor, h) {
		return nil, forbidden("Only the team leader can register the team")
	}
	if team.HackathonID != h.ID {
		return nil, newError(ErrValidation, "Team was formed for a different hackathon")
	}
	if !h.RegistrationOpenAt(s.now()) {
		return nil, newError(ErrWindowClosed, "Registration is closed")
	}

	var count int64
	if err := db.Model(&models.HackathonRegistration{}).
		Where("hackathon_id = ? AND team_id = ?", hackathonID, teamID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflict("Team already registered")
	}

	reg := &models.HackathonRegistration{HackathonID: hackathonID, TeamID: teamID, RegisteredAt: s.now().UTC()}
	if err := db.Create(reg).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict("Team already registered")
		}
		return nil, err
	}

	log.Printf("📝 Team %q registered for %q", team.Name, h.Name)
	return s.Get(ctx, hackathonID)
}

func (s *HackathonService) AddJudge(ctx context.Context, actor *models.User, hackathonID, judgeID uuid.UUID) (*models.Hackathon, error) {
	db := s.db.WithContext(ctx)
	h, err := loadHackathon(db, hackathonID)
	if err != nil {
		return nil, err
	}
	if !canManageHackathon(actor, h) {
		return nil, forbidden("Not authorized to manage judges for this hackathon")
	}

	var judge models.User
	err = db.First(&judge, "id = ?", judgeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("User")
	}
	if err != nil {
		return nil, err
	}
	if judge.Role != models.RoleJudge {
		return nil, newError(ErrValidation, "User is not a judge")
	}

	var count int64
	if err := db.Model(&models.HackathonJudge{}).
		Where("hackathon_id = ? AND judge_id = ?", hackathonID, judgeID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflict("Judge already added")
	}

	if err := db.Create(&models.HackathonJudge{HackathonID: hackathonID, JudgeID: judgeID, AddedAt: s.now().UTC()}).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict("Judge already added")
		}
		return nil, err
	}
	return s.Get(ctx, hackathonID)
}

// AssignedTo lists the hackathons a judge has been added to.
func (s *HackathonService) AssignedTo(ctx context.Context, judgeID uuid.UUID) ([]models.Hackathon, error) {
	var hackathons []models.Hackathon
	err := s.db.WithContext(ctx).
		Joins("JOIN hackathon_judges ON hackathon_judges.hackathon_id = hackathons.id").
		Where("hackathon_judges.judge_id = ?", judgeID).
		Order("hackathons.start_date ASC").
		Find(&hackathons).Error
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range hackathons {
		hackathons[i].Status = hackathons[i].StatusAt(now)
	}
	return hackathons, nil
}

// Search prefers the configured full-text index and falls back to a substring match.
func (s *HackathonService) Search(ctx context.Context, query string, limit int) ([]models.Hackathon, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx, HackathonFilter{})
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	if s.searcher != nil {
		ids, err := s.searcher.SearchHackathons(ctx, query, limit)
		if err == nil {
			return s.loadInOrder(ctx, ids)
		}
		log.Printf("⚠️ search index unavailable, falling back to database: %v", err)
	}

	pattern := "%" + strings.ToLower(query) + "%"
	var hackathons []models.Hackathon
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(theme) LIKE ?", pattern, pattern, pattern).
		Order("start_date ASC").
		Limit(limit).
		Find(&hackathons).Error
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range hackathons {
		hackathons[i].Status = hackathons[i].StatusAt(now)
	}
	return hackathons, nil
}

func (s *HackathonService) loadInOrder(ctx context.Context, ids []uuid.UUID) ([]models.Hackathon, error) {
	if len(ids) == 0 {
		return []models.Hackathon{}, nil
	}
	var found []models.Hackathon
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Hackathon, len(found))
	for _, h := range found {
		byID[h.ID] = h
	}
	now := s.now()
	out := make([]models.Hackathon, 0, len(ids))
	for _, id := range ids {
		// the index may lag behind deletes
		if h, ok := byID[id]; ok {
			h.Status = h.StatusAt(now)
			out = append(out, h)
		}
	}
	return out, nil
}

// ================== HELPERS ==================

func canManageHackathon(actor *models.User, h *models.Hackathon) bool {
	if actor == nil {
		return false
	}
	return actor.Role == models.RoleAdmin ||
		(actor.Role == models.RoleOrganizer && h.OrganizerID == actor.ID)
}

func loadHackathon(db *gorm.DB, id uuid.UUID) (*models.Hackathon, error) {
	var h models.Hackathon
	err := db.First(&h, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Hackathon")
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func largestTeamSize(db *gorm.DB, hackathonID uuid.UUID) (int, error) {
	var largest int64
	err := db.Raw(`SELECT COALESCE(MAX(cnt), 0) FROM (
		SELECT COUNT(*) AS cnt FROM team_members
		JOIN teams ON teams.id = team_members.team_id
		WHERE teams.hackathon_id = ?
		GROUP BY team_members.team_id) AS sizes`, hackathonID).Scan(&largest).Error
	return int(largest), err
}

func applyHackathonInput(h *models.Hackathon, in HackathonInput) {
	if in.Name != nil {
		h.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		h.Description = *in.Description
	}
	if in.Theme != nil {
		h.Theme = strings.TrimSpace(*in.Theme)
	}
	if in.Challenges != nil {
		h.Challenges = datatypes.JSONSlice[string](utils.CleanList(*in.Challenges))
	}
	if in.Prizes != nil {
		h.Prizes = datatypes.JSONSlice[models.Prize](*in.Prizes)
	}
	if in.Sponsors != nil {
		h.Sponsors = datatypes.JSONSlice[string](utils.CleanList(*in.Sponsors))
	}
	if in.Tags != nil {
		h.Tags = datatypes.JSONSlice[string](utils.CleanList(*in.Tags))
	}
	if in.Location != nil {
		h.Location = strings.TrimSpace(*in.Location)
	}
	if in.IsVirtual != nil {
		h.IsVirtual = *in.IsVirtual
	}
	if in.StartDate != nil {
		h.StartDate = in.StartDate.UTC()
	}
	if in.EndDate != nil {
		h.EndDate = in.EndDate.UTC()
	}
	if in.RegistrationStartDate != nil {
		h.RegistrationStartDate = in.RegistrationStartDate.UTC()
	}
	if in.RegistrationEndDate != nil {
		h.RegistrationEndDate = in.RegistrationEndDate.UTC()
	}
	if in.MaxTeamSize != nil {
		h.MaxTeamSize = *in.MaxTeamSize
	}
}

func validateHackathon(h *models.Hackathon) error {
	var v Validation
	v.Check(h.Name != "", "name", "Hackathon name is required")
	v.Check(utils.MaxLen(h.Name, 100), "name", "Name cannot be more than 100 characters")
	v.Check(h.StartDate.Before(h.EndDate), "endDate", "End date must be after start date")
	v.Check(h.RegistrationStartDate.Before(h.RegistrationEndDate), "registrationEndDate",
		"Registration end date must be after registration start date")
	v.Check(h.MaxTeamSize >= 1 && h.MaxTeamSize <= maxAllowedTeamSize, "maxTeamSize",
		"Max team size must be between 1 and 10")
	return v.Err()
}
