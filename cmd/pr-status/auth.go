package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/untibullet/pr-status-sync/internal/credential"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the GitHub token stored in the OS keyring",
}

var authSetTokenCmd = &cobra.Command{
	Use:   "set-token",
	Short: "Read a GitHub token from stdin and store it in the keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}

		store, err := credential.Open()
		if err != nil {
			return err
		}
		if err := store.SetToken(string(raw)); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "token stored in keyring")
		return nil
	},
}

var authDeleteTokenCmd = &cobra.Command{
	Use:   "delete-token",
	Short: "Remove the stored GitHub token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := credential.Open()
		if err != nil {
			return err
		}
		if err := store.Delete(credential.TokenKey); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "token removed from keyring")
		return nil
	},
}

func init() {
	authCmd.AddCommand(authSetTokenCmd, authDeleteTokenCmd)
}
