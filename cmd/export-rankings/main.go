// export-rankings writes a hackathon's ranked projects and judge scores to an XLSX workbook.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Sarthaklad1034/HackMatrix/config"
	"github.com/Sarthaklad1034/HackMatrix/database"
	"github.com/Sarthaklad1034/HackMatrix/services"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var hackathonFlag string
	var outPath string

	flagSet := pflag.NewFlagSet("export-rankings", pflag.ContinueOnError)
	flagSet.StringVar(&hackathonFlag, "hackathon", "", "hackathon ID to export (required)")
	flagSet.StringVarP(&outPath, "out", "o", "", "output file (default: rankings-<id>.xlsx)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	hackathonID, err := uuid.Parse(hackathonFlag)
	if err != nil {
		return fmt.Errorf("--hackathon must be a hackathon ID: %w", err)
	}
	if outPath == "" {
		outPath = fmt.Sprintf("rankings-%s.xlsx", hackathonID)
	}

	_ = godotenv.Load()
	dbConfig, err := config.LoadDatabase()
	if err != nil {
		return err
	}
	db, err := database.Open(dbConfig, true)
	if err != nil {
		return err
	}
	defer database.Close(db)

	scoring := services.NewScoringService(db, nil, nil)
	hackathon, projects, err := scoring.RankedProjects(context.Background(), nil, hackathonID)
	if err != nil {
		return err
	}

	wb, err := services.BuildRankingWorkbook(hackathon, projects)
	if err != nil {
		return err
	}
	defer wb.Close()
	if err := wb.SaveAs(outPath); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	fmt.Printf("Exported %d projects of %q to %s\n", len(projects), hackathon.Name, outPath)
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `export-rankings writes a hackathon's leaderboard to an Excel workbook.

The "Rankings" sheet lists projects in rank order; the "Scores" sheet lists
every judge's score. Database settings come from the same environment
variables as the server (DB_DRIVER, DATABASE_URL, ...).

Usage:
  export-rankings --hackathon <id> [--out file.xlsx]

Flags:
%s`, flagSet.FlagUsages())
}
