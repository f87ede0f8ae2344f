package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/dutyroster/schedule-backend/pkg/client"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	reorderProfile int64
	reorderLevel   int64
	reorderMission int64
)

var reorderCmd = &cobra.Command{
	Use:   "reorder <missions|steps> <id>...",
	Short: "Set the display order of a level's missions or a mission's steps (admin)",
	Long: `Set the display order of a list. The ids must name every item of the list once.

EXAMPLES:

  dutyctl reorder missions 12 10 11 --level 3
  dutyctl reorder steps 7 5 6 --level 3 --mission 10`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int64, 0, len(args)-1)
		for _, raw := range args[1:] {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", raw)
			}
			ids = append(ids, id)
		}

		tree, err := api.ProfileContent(cmd.Context(), reorderProfile)
		if err != nil {
			return err
		}
		saver := &lastErrorReorderer{next: api}
		board := client.NewBoard(tree, saver, logger)

		switch args[0] {
		case "missions":
			err = board.ReorderMissions(reorderLevel, ids)
		case "steps":
			err = board.ReorderSteps(reorderLevel, reorderMission, ids)
		default:
			err = fmt.Errorf("unknown list %q: use missions or steps", args[0])
		}
		if err != nil {
			board.Close()
			return err
		}

		// saves now instead of after the quiet period
		board.Close()
		if saver.err != nil {
			return fmt.Errorf("save failed: %w", saver.err)
		}
		color.Green("✓ Order saved")
		return nil
	},
}

// lastErrorReorderer remembers the last save error, which the board itself only logs
type lastErrorReorderer struct {
	next client.Reorderer
	err  error
}

func (r *lastErrorReorderer) Reorder(ctx context.Context, kind models.ItemKind, updates []models.OrderUpdate) error {
	r.err = r.next.Reorder(ctx, kind, updates)
	return r.err
}

func init() {
	reorderCmd.Flags().Int64VarP(&reorderProfile, "profile", "p", 1, "profile holding the level")
	reorderCmd.Flags().Int64VarP(&reorderLevel, "level", "l", 0, "level id")
	reorderCmd.Flags().Int64VarP(&reorderMission, "mission", "m", 0, "mission id (steps only)")
	_ = reorderCmd.MarkFlagRequired("level")
	rootCmd.AddCommand(reorderCmd)
}
