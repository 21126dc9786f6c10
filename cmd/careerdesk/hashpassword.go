package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/careerdesk/careerdesk-api/internal/config"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Hash a password for ADMIN_PASSWORD_HASH",
	Long:  `Hash a password with the configured bcrypt cost and pepper, for use as the ADMIN_PASSWORD_HASH environment variable.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHashPassword,
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("failed to create password config: %w", err)
	}

	hash, err := passwordConfig.HashPassword(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
