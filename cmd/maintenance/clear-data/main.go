package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dutyroster/schedule-backend/internal/config"
	"github.com/dutyroster/schedule-backend/internal/database"
	"github.com/dutyroster/schedule-backend/pkg/validator"
	"github.com/joho/godotenv"
)

func main() {
	var pathFlag, before string
	var keepAssignments bool
	flag.StringVar(&pathFlag, "database-path", "", "SQLite file (overrides DATABASE_PATH)")
	flag.StringVar(&before, "before", "", "only clear records dated before YYYY-MM-DD (default: everything)")
	flag.BoolVar(&keepAssignments, "keep-assignments", false, "clear completion history only")
	flag.Parse()

	if before != "" {
		if _, err := validator.NewScheduleValidator().ValidateDate(before); err != nil {
			log.Fatalf("invalid -before: %v", err)
		}
	}

	// Try loading .env from current working directory (optional)
	_ = godotenv.Load()

	path := pathFlag
	if path == "" {
		path = os.Getenv("DATABASE_PATH")
	}
	if path == "" {
		log.Fatal("DATABASE_PATH is not set and -database-path was not provided")
	}

	db, err := database.NewConnection(config.DatabaseConfig{Path: path, MaxConnections: 1})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	scope := "all dates"
	if before != "" {
		scope = "dates before " + before
	}
	fmt.Printf("Opened %s. Clearing %s...\n", path, scope)

	steps, missions, err := database.ClearProgressBefore(ctx, db, before)
	if err != nil {
		log.Fatalf("failed to clear completion history: %v", err)
	}
	fmt.Printf("  step completions removed:    %d\n", steps)
	fmt.Printf("  mission completions removed: %d\n", missions)

	if keepAssignments {
		return
	}

	assignments, err := database.ClearAssignmentsBefore(ctx, db, before)
	if err != nil {
		log.Fatalf("failed to clear assignments: %v", err)
	}
	fmt.Printf("  assignments removed:         %d\n", assignments)
}
