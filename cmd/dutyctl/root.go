package main

import (
	"os"
	"time"

	"github.com/dutyroster/schedule-backend/pkg/client"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	token     string
	timeout   time.Duration
	verbose   bool

	api    *client.Client
	logger = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "dutyctl",
	Short: "Command line client for the duty schedule API",
	Long: `dutyctl talks to a running duty schedule server.

QUICK START:

  $ dutyctl login --id admin --password ...        # prints an admin token
  $ export DUTY_TOKEN=<token>
  $ dutyctl assign --unit 1 --guest 42 --date 2024-06-01
  $ dutyctl today --guest 42                       # who is on duty, and the schedule
  $ dutyctl toggle step 7 --guest 42               # check off a step
  $ dutyctl watch --guest 42                       # live progress

The server defaults to $DUTY_SERVER or http://localhost:5000.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		}
		api = client.New(serverURL, client.WithToken(token), client.WithTimeout(timeout))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if api != nil {
			api.Close()
		}
		return nil
	},
}

func init() {
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("DUTY_SERVER", "http://localhost:5000"), "server base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("DUTY_TOKEN"), "bearer token (guest or admin)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", client.DefaultTimeout, "request timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
