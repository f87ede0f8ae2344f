package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dutyroster/schedule-backend/pkg/client"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var watchGuest int64

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a guest's duty progress, and the admin dashboard when the token allows",
	Long: `Poll the schedule and progress every 5s, and with an admin token the pending
membership requests and stats every 10s. Stop with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var mu sync.Mutex // serialises output of the two loops
		faint := color.New(color.Faint)

		var list *client.Checklist
		schedule := func(ctx context.Context) error {
			var since uint64
			mu.Lock()
			if list != nil {
				since = list.Version()
			}
			mu.Unlock()

			today, err := api.Today(ctx, watchGuest, nil)
			if err != nil {
				return err
			}
			progress, err := api.Progress(ctx, watchGuest, "")
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			if list == nil {
				list = client.NewChecklist(api, watchGuest, "", today.Schedule)
			} else {
				list.SetTree(today.Schedule)
			}
			list.Reconcile(progress, since)

			stamp := faint.Sprint(time.Now().Format("15:04:05"))
			if !today.HasAssignment {
				fmt.Printf("%s nobody on duty\n", stamp)
				return nil
			}
			c := list.Completion()
			fmt.Printf("%s %s on duty: %d/%d done (%d%%)\n", stamp, today.AssignedTo.Name, c.Completed, c.Total, c.Percentage)
			return nil
		}

		var stats client.RefreshFunc
		if token != "" {
			stats = func(ctx context.Context) error {
				s, err := api.Stats(ctx)
				if err != nil {
					return err
				}
				pending, err := api.PendingRequests(ctx)
				if err != nil {
					return err
				}

				mu.Lock()
				defer mu.Unlock()
				fmt.Printf("%s guests %d, completions %d, pending requests %d\n",
					faint.Sprint(time.Now().Format("15:04:05")), s.Guests, s.Completions, len(pending))
				return nil
			}
		}

		return client.NewPoller(schedule, stats, logger).Run(cmd.Context())
	},
}

func init() {
	watchCmd.Flags().Int64VarP(&watchGuest, "guest", "g", 0, "guest id")
	_ = watchCmd.MarkFlagRequired("guest")
	rootCmd.AddCommand(watchCmd)
}
