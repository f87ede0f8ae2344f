package database

import (
	"context"
	"fmt"

	"github.com/dutyroster/schedule-backend/internal/models"
)

// StatsRepository computes admin dashboard aggregates
type StatsRepository struct {
	db DB
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Totals returns the number of guests, steps and step completion records
func (r *StatsRepository) Totals(ctx context.Context) (guests, steps, completions int, err error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM guests) AS guests,
			(SELECT COUNT(*) FROM steps) AS steps,
			(SELECT COUNT(*) FROM progress) AS completions
	`

	var row struct {
		Guests      int `db:"guests"`
		Steps       int `db:"steps"`
		Completions int `db:"completions"`
	}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to fetch totals: %w", err)
	}
	return row.Guests, row.Steps, row.Completions, nil
}

// UnitDistribution returns the approved member count of each unit that has members
func (r *StatsRepository) UnitDistribution(ctx context.Context) ([]models.UnitMemberCount, error) {
	counts := []models.UnitMemberCount{}
	query := `
		SELECT u.id, u.title, COUNT(g.id) AS count
		FROM guests g
		JOIN units u ON g.unit_id = u.id
		WHERE g.status = ?
		GROUP BY u.id, u.title
		ORDER BY u.id
	`
	if err := r.db.SelectContext(ctx, &counts, query, models.GuestApproved); err != nil {
		return nil, fmt.Errorf("failed to fetch unit distribution: %w", err)
	}
	return counts, nil
}
