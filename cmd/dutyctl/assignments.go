package main

import (
	"fmt"
	"strings"

	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	unitID     int64
	assignDate string
	rangeStart string
	rangeEnd   string
	assignee   int64
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Put a guest on duty for a unit and date (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		err := api.Assign(cmd.Context(), &models.AssignRequest{UnitID: unitID, GuestID: assignee, Date: assignDate})
		if err != nil {
			return fmt.Errorf("assign failed: %w", err)
		}
		color.Green("✓ Guest %d on duty for unit %d on %s", assignee, unitID, assignDate)
		return nil
	},
}

var unassignCmd = &cobra.Command{
	Use:   "unassign",
	Short: "Clear the duty assignment of a unit and date (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := api.ClearAssignment(cmd.Context(), unitID, assignDate); err != nil {
			return fmt.Errorf("unassign failed: %w", err)
		}
		color.Yellow("✗ Cleared unit %d on %s", unitID, assignDate)
		return nil
	},
}

var assignmentsCmd = &cobra.Command{
	Use:     "assignments",
	Aliases: []string{"ls"},
	Short:   "List duty assignments of a unit",
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := api.Assignments(cmd.Context(), unitID, rangeStart, rangeEnd)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Println("No assignments found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, row := range rows {
			name := strings.TrimSpace(row.FirstName + " " + row.LastName)
			fmt.Printf("%s  %-24s %s  steps %d  missions %d\n",
				row.AssignmentDate,
				name,
				faint.Sprintf("#%d", row.GuestID),
				row.CompletedSteps,
				row.CompletedMissions)
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{assignCmd, unassignCmd, assignmentsCmd} {
		cmd.Flags().Int64VarP(&unitID, "unit", "u", 0, "unit id")
		_ = cmd.MarkFlagRequired("unit")
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{assignCmd, unassignCmd} {
		cmd.Flags().StringVarP(&assignDate, "date", "d", "", "YYYY-MM-DD")
		_ = cmd.MarkFlagRequired("date")
	}
	assignCmd.Flags().Int64VarP(&assignee, "guest", "g", 0, "guest id")
	_ = assignCmd.MarkFlagRequired("guest")
	assignmentsCmd.Flags().StringVar(&rangeStart, "start", "", "first date")
	assignmentsCmd.Flags().StringVar(&rangeEnd, "end", "", "last date")
}
