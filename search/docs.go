// search/docs.go
package search

import (
	"encoding/json"
	"time"

	"github.com/Sarthaklad1034/HackMatrix/models"
)

const (
	HackathonIndex = "hackathons_v1"
	ProjectIndex   = "projects_v1"
)

var indexMappings = map[string]string{
	HackathonIndex: `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
		"name":{"type":"text"},"description":{"type":"text"},"theme":{"type":"text"},
		"tags":{"type":"keyword"},"location":{"type":"text"},"is_virtual":{"type":"boolean"},
		"start_date":{"type":"date"},"end_date":{"type":"date"},"updated_at":{"type":"date"}
	}}}`,
	ProjectIndex: `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
		"title":{"type":"text"},"description":{"type":"text"},"problem_statement":{"type":"text"},
		"technologies":{"type":"keyword"},"hackathon_id":{"type":"keyword"},"team_id":{"type":"keyword"},
		"submission_status":{"type":"keyword"},"final_score":{"type":"float"},"updated_at":{"type":"date"}
	}}}`,
}

type HackathonDoc struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Theme       string    `json:"theme"`
	Tags        []string  `json:"tags"`
	Location    string    `json:"location"`
	IsVirtual   bool      `json:"is_virtual"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func BuildHackathonDoc(h *models.Hackathon) ([]byte, error) {
	return json.Marshal(HackathonDoc{
		Name:        h.Name,
		Description: h.Description,
		Theme:       h.Theme,
		Tags:        []string(h.Tags),
		Location:    h.Location,
		IsVirtual:   h.IsVirtual,
		StartDate:   h.StartDate,
		EndDate:     h.EndDate,
		UpdatedAt:   h.UpdatedAt,
	})
}

type ProjectDoc struct {
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	ProblemStatement string    `json:"problem_statement"`
	Technologies     []string  `json:"technologies"`
	HackathonID      string    `json:"hackathon_id"`
	TeamID           string    `json:"team_id"`
	SubmissionStatus string    `json:"submission_status"`
	FinalScore       float64   `json:"final_score"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func BuildProjectDoc(p *models.Project) ([]byte, error) {
	return json.Marshal(ProjectDoc{
		Title:            p.Title,
		Description:      p.Description,
		ProblemStatement: p.ProblemStatement,
		Technologies:     []string(p.Technologies),
		HackathonID:      p.HackathonID.String(),
		TeamID:           p.TeamID.String(),
		SubmissionStatus: string(p.SubmissionStatus),
		FinalScore:       p.FinalScore,
		UpdatedAt:        p.UpdatedAt,
	})
}

// IndexFor maps an outbox aggregate to its search index.
func IndexFor(aggregate string) (string, bool) {
	switch aggregate {
	case models.AggregateHackathon:
		return HackathonIndex, true
	case models.AggregateProject:
		return ProjectIndex, true
	}
	return "", false
}
