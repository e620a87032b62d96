package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage registered users",
	}

	usersCmd.AddCommand(newUsersListCommand(ctx))
	usersCmd.AddCommand(newUsersChatCommand(ctx))
	usersCmd.AddCommand(newUsersDeleteCommand(ctx))

	return usersCmd
}

func newUsersListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered users",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.adminClient()
			if err != nil {
				return err
			}
			users, err := client.Users(cmd.Context())
			if err != nil {
				return ctx.describeAuthError(err)
			}
			if len(users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No users.")
				return nil
			}

			rows := make([][]string, 0, len(users))
			for _, user := range users {
				rows = append(rows, []string{
					strconv.FormatInt(user.ID, 10),
					user.Name,
					user.Email,
					user.Phone,
					user.RegisteredAt,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Email", "Phone", "Registered"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newUsersChatCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <user-id>",
		Short: "Show a user's chat history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.adminClient()
			if err != nil {
				return err
			}
			messages, err := client.UserChat(cmd.Context(), id)
			if err != nil {
				return ctx.describeAuthError(err)
			}
			if len(messages) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No chat history.")
				return nil
			}

			out := cmd.OutOrStdout()
			for _, message := range messages {
				fmt.Fprintf(out, "[%s] %s: %s\n", message.Timestamp, message.Role, message.Message)
			}
			return nil
		},
	}
}

func newUsersDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a user and their chat history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.adminClient()
			if err != nil {
				return err
			}
			if err := client.DeleteUser(cmd.Context(), id); err != nil {
				return ctx.describeAuthError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %d.\n", id)
			return nil
		},
	}
}
