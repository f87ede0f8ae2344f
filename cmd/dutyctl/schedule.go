package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/dutyroster/schedule-backend/pkg/client"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	guestID   int64
	profileID int64
	date      string
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show who is on duty today and the schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, today, err := loadChecklist(cmd.Context())
		if err != nil {
			return err
		}
		if !today.HasAssignment {
			color.Yellow("Nobody is on duty today.")
			return nil
		}
		printDuty(today)
		printChecklist(list)
		return nil
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "List the completed steps and missions of a guest",
	Long: `List the completed item ids of a guest.

  --date defaults to today; --date all lists every day.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		progress, err := api.Progress(cmd.Context(), guestID, date)
		if err != nil {
			return err
		}
		fmt.Printf("steps:    %s\n", joinIDs(progress.Steps))
		fmt.Printf("missions: %s\n", joinIDs(progress.Missions))
		return nil
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <step|mission> <id>",
	Short: "Check or uncheck a step or mission",
	Long: `Toggle a checklist item for a guest.

Toggling a mission with steps sets every step to the opposite of
"all steps complete"; a mission without steps toggles itself.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := models.ParseItemKind(args[0])
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[1])
		}

		list, _, err := loadChecklist(cmd.Context())
		if err != nil {
			return err
		}

		if kind == models.ItemStep {
			err = list.ToggleStep(cmd.Context(), id)
		} else {
			err = list.ToggleMission(cmd.Context(), id)
		}
		if err != nil {
			return fmt.Errorf("toggle failed: %w", err)
		}

		c := list.Completion()
		color.Green("✓ %s %d updated, %d/%d done (%d%%)", kind, id, c.Completed, c.Total, c.Percentage)
		return nil
	},
}

// loadChecklist builds a guest's checklist from today's schedule, or from --profile content
// when it is set, and fills it with the server's progress.
func loadChecklist(ctx context.Context) (*client.Checklist, *models.TodaySchedule, error) {
	if guestID <= 0 {
		return nil, nil, fmt.Errorf("--guest is required")
	}

	var profile *int64
	if profileID > 0 {
		profile = &profileID
	}
	today, err := api.Today(ctx, guestID, profile)
	if err != nil {
		return nil, nil, err
	}

	tree := today.Schedule
	if !today.HasAssignment && profile != nil {
		if tree, err = api.ProfileContent(ctx, profileID); err != nil {
			return nil, nil, err
		}
	}

	list := client.NewChecklist(api, guestID, date, tree)
	since := list.Version()
	progress, err := api.Progress(ctx, guestID, date)
	if err != nil {
		return nil, nil, err
	}
	list.Reconcile(progress, since)
	return list, today, nil
}

func printDuty(today *models.TodaySchedule) {
	who := today.AssignedTo.Name
	if today.IsMe {
		who += " (you)"
	}
	fmt.Printf("%s on duty %s: %s\n", color.New(color.Bold).Sprint("●"), today.Date, who)
}

func printChecklist(list *client.Checklist) {
	faint := color.New(color.Faint)
	check := func(done bool) string {
		if done {
			return color.GreenString("[x]")
		}
		return "[ ]"
	}

	for _, level := range list.Tree() {
		at := ""
		if level.TargetTime != nil {
			at = faint.Sprintf(" %s", *level.TargetTime)
		}
		fmt.Printf("%s%s\n", color.New(color.Bold).Sprint(level.Title), at)
		for _, mission := range level.Missions {
			fmt.Printf("  %s %s %s\n", check(list.MissionDone(mission.ID)), mission.Title, faint.Sprintf("#%d", mission.ID))
			for _, step := range mission.Steps {
				fmt.Printf("      %s %s %s\n", check(list.StepDone(step.ID)), step.Title, faint.Sprintf("#%d", step.ID))
			}
		}
	}

	c := list.Completion()
	fmt.Printf("\n%d/%d done (%d%%)\n", c.Completed, c.Total, c.Percentage)
}

func joinIDs(ids []int64) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}

func init() {
	for _, cmd := range []*cobra.Command{todayCmd, progressCmd, toggleCmd} {
		cmd.Flags().Int64VarP(&guestID, "guest", "g", 0, "guest id")
		_ = cmd.MarkFlagRequired("guest")
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{todayCmd, toggleCmd} {
		cmd.Flags().Int64VarP(&profileID, "profile", "p", 0, "restrict to one profile")
	}
	for _, cmd := range []*cobra.Command{progressCmd, toggleCmd} {
		cmd.Flags().StringVarP(&date, "date", "d", "", "YYYY-MM-DD (default today)")
	}
}
