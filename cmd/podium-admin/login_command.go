package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"podium/internal/adminapi"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the admin API",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			if strings.TrimSpace(username) == "" {
				fmt.Fprint(out, "Username: ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("read username: %w", err)
				}
				username = strings.TrimSpace(line)
			}

			fmt.Fprint(out, "Password: ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			password := strings.TrimRight(line, "\r\n")

			client, err := ctx.anonymousClient()
			if err != nil {
				return err
			}
			result, err := client.Login(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}

			store, err := ctx.tokenStore()
			if err != nil {
				return err
			}
			if err := adminapi.SaveToken(store, result.Token, result.Username); err != nil {
				return err
			}
			fmt.Fprintf(out, "Logged in as %s.\n", result.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "Admin username")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored admin session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.tokenStore()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
