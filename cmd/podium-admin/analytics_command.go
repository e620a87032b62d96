package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newAnalyticsCommand(ctx *commandContext) *cobra.Command {
	analyticsCmd := &cobra.Command{
		Use:   "analytics",
		Short: "Usage analytics",
	}

	analyticsCmd.AddCommand(newAnalyticsSummaryCommand(ctx))
	analyticsCmd.AddCommand(newAnalyticsRecentCommand(ctx))

	return analyticsCmd
}

func newAnalyticsSummaryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show aggregate usage numbers",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.adminClient()
			if err != nil {
				return err
			}
			summary, err := client.AnalyticsSummary(cmd.Context())
			if err != nil {
				return ctx.describeAuthError(err)
			}

			rows := [][]string{
				{"Total users", strconv.Itoa(summary.TotalUsers)},
				{"Total chats", strconv.Itoa(summary.TotalChats)},
				{"Users today", strconv.Itoa(summary.UsersToday)},
				{"Chats today", strconv.Itoa(summary.ChatsToday)},
				{"Presentation starts", strconv.Itoa(summary.PresentationStarts)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Metric", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))

			if len(summary.DailyActivity) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Daily activity:")
				for _, day := range summary.DailyActivity {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s  %d\n", day.Date, day.Count)
				}
			}
			return nil
		},
	}
}

func newAnalyticsRecentCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "Show recent activity events",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.adminClient()
			if err != nil {
				return err
			}
			events, err := client.RecentActivity(cmd.Context())
			if err != nil {
				return ctx.describeAuthError(err)
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recent activity.")
				return nil
			}

			rows := make([][]string, 0, len(events))
			for _, event := range events {
				rows = append(rows, []string{event.Timestamp, event.EventType, event.UserName, event.Data})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Time", "Event", "User", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
