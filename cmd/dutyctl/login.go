package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	loginID       string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in as admin and print the token",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := api.Login(cmd.Context(), loginID, loginPassword)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		color.Green("✓ Logged in, token valid until %s", time.Unix(resp.ExpiresAt, 0).Format(time.RFC3339))
		fmt.Println(resp.Token)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginID, "id", "admin", "admin id")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "admin password")
	_ = loginCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(loginCmd)
}
