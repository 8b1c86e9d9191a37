// services/export.go - Ranking workbook for organizers
package services

import (
	"fmt"
	"time"

	"github.com/Sarthaklad1034/HackMatrix/models"
	"github.com/xuri/excelize/v2"
)

const (
	rankingSheet = "Rankings"
	scoresSheet  = "Scores"
)

var rankingHeader = []string{"Rank", "Project", "Team", "Final Score", "Judges", "Status", "Submitted At", "Repository", "Demo"}

var scoresHeader = []string{"Project", "Judge", "Total Score", "Overall Comments", "Updated At"}

// BuildRankingWorkbook writes the ranked projects (already in final order) into a workbook.
// Projects must have Team and Scores loaded.
func BuildRankingWorkbook(h *models.Hackathon, projects []models.Project) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", rankingSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(scoresSheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetCellValue(rankingSheet, "A1", h.Name); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeRow(f, rankingSheet, 2, toAny(rankingHeader)); err != nil {
		f.Close()
		return nil, err
	}

	row := 3
	for _, p := range projects {
		team := ""
		if p.Team != nil {
			team = p.Team.Name
		}
		rank := any(p.Rank)
		if p.Rank == 0 {
			rank = "DQ"
		}
		submitted := ""
		if p.SubmissionDate != nil {
			submitted = p.SubmissionDate.UTC().Format(time.RFC3339)
		}
		values := []any{rank, p.Title, team, p.FinalScore, len(p.Scores), string(p.SubmissionStatus), submitted, p.GithubRepoURL, p.DemoVideoURL}
		if err := writeRow(f, rankingSheet, row, values); err != nil {
			f.Close()
			return nil, err
		}
		row++
	}

	if err := writeRow(f, scoresSheet, 1, toAny(scoresHeader)); err != nil {
		f.Close()
		return nil, err
	}
	row = 2
	for _, p := range projects {
		for _, sc := range p.Scores {
			values := []any{p.Title, sc.JudgeID.String(), sc.TotalScore, sc.OverallComments, sc.UpdatedAt.UTC().Format(time.RFC3339)}
			if err := writeRow(f, scoresSheet, row, values); err != nil {
				f.Close()
				return nil, err
			}
			row++
		}
	}

	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
