package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/billbook/billbook/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the API",
	Long: `Issue an HS256 bearer token signed with JWT_SECRET.

Accountants (role ca) can read every record and change none. The state claim is
the issuer state used to split GST; COMPANY_STATE applies when it is omitted.`,
	Example: `  billbookctl token --user 4b1c0f0e-8a0e-4f8e-9d7a-2d7c5e1f3a10 --role admin
  billbookctl token --user 4b1c0f0e-8a0e-4f8e-9d7a-2d7c5e1f3a10 --role ca --ttl 24h`,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().String("user", "", "user id (uuid) the token is issued to")
	tokenCmd.Flags().String("role", string(auth.RoleUser), "admin, user or ca")
	tokenCmd.Flags().String("state", "", "issuer state, defaults to COMPANY_STATE")
	tokenCmd.Flags().Duration("ttl", 30*24*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
}

func runToken(cmd *cobra.Command, _ []string) error {
	userFlag, _ := cmd.Flags().GetString("user")
	roleFlag, _ := cmd.Flags().GetString("role")
	state, _ := cmd.Flags().GetString("state")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	userID, err := uuid.Parse(userFlag)
	if err != nil {
		return fmt.Errorf("parsing --user: %w", err)
	}

	role, err := auth.ParseRole(roleFlag)
	if err != nil {
		return err
	}

	if ttl <= 0 {
		return fmt.Errorf("--ttl must be positive")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if state == "" {
		state = cfg.Company.State
	}

	token, err := auth.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Company.State).
		Issue(auth.Principal{UserID: userID, Role: role, State: state}, ttl)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)

	return nil
}
