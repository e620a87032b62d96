package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/spf13/cobra"

	"podium/internal/adminapi"
)

func newProductsCommand(ctx *commandContext) *cobra.Command {
	productsCmd := &cobra.Command{
		Use:   "products",
		Short: "Manage products",
	}

	productsCmd.AddCommand(newProductsListCommand(ctx))
	productsCmd.AddCommand(newProductsShowCommand(ctx))
	productsCmd.AddCommand(newProductsCreateCommand(ctx))
	productsCmd.AddCommand(newProductsDeleteCommand(ctx))
	productsCmd.AddCommand(newProductsUploadCommand(ctx))
	productsCmd.AddCommand(newProductsProcessCommand(ctx))
	productsCmd.AddCommand(newProductsStatusCommand(ctx))
	productsCmd.AddCommand(newProductsInfoCommand(ctx))

	return productsCmd
}

func newProductsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List products",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.adminClient()
			if err != nil {
				return err
			}
			products, err := client.Products(cmd.Context())
			if err != nil {
				return ctx.describeAuthError(err)
			}
			if len(products) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No products.")
				return nil
			}

			rows := make([][]string, 0, len(products))
			for _, product := range products {
				rows = append(rows, []string{
					strconv.FormatInt(product.ID, 10),
					product.Name,
					product.Slug,
					product.Status,
					product.UpdatedAt,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Slug", "Status", "Updated"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newProductsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single product",
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
			product, err := client.Product(cmd.Context(), id)
			if err != nil {
				return ctx.describeAuthError(err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID: %d\n", product.ID)
			fmt.Fprintf(out, "Name: %s\n", product.Name)
			fmt.Fprintf(out, "Slug: %s\n", product.Slug)
			if product.Description != "" {
				fmt.Fprintf(out, "Description: %s\n", product.Description)
			}
			fmt.Fprintf(out, "Status: %s\n", product.Status)
			fmt.Fprintf(out, "Created: %s\n", product.CreatedAt)
			fmt.Fprintf(out, "Updated: %s\n", product.UpdatedAt)
			return nil
		},
	}
}

func newProductsCreateCommand(ctx *commandContext) *cobra.Command {
	var slug, description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.adminClient()
			if err != nil {
				return err
			}
			result, err := client.CreateProduct(cmd.Context(), args[0], slug, description)
			if err != nil {
				return ctx.describeAuthError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created product %d.\n", result.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&slug, "slug", "", "URL slug (derived from name when empty)")
	cmd.Flags().StringVar(&description, "description", "", "Product description")
	return cmd
}

func newProductsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
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
			if err := client.DeleteProduct(cmd.Context(), id); err != nil {
				return ctx.describeAuthError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted product %d.\n", id)
			return nil
		},
	}
}

func newProductsUploadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <id> <pdf>",
		Short: "Upload a product's source PDF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.adminClient()
			if err != nil {
				return err
			}
			if err := client.UploadPDF(cmd.Context(), id, args[1]); err != nil {
				return ctx.describeAuthError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s to product %d.\n", args[1], id)
			return nil
		},
	}
}

func newProductsProcessCommand(ctx *commandContext) *cobra.Command {
	var noWait bool

	cmd := &cobra.Command{
		Use:   "process <id>",
		Short: "Process a product's PDF into a presentation",
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
			if err := client.StartProcessing(cmd.Context(), id); err != nil {
				return ctx.describeAuthError(err)
			}
			if noWait {
				fmt.Fprintf(cmd.OutOrStdout(), "Processing started for product %d.\n", id)
				return nil
			}
			return watchProcessing(cmd, ctx, id)
		},
	}

	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Start processing without watching progress")
	return cmd
}

// watchProcessing polls the status endpoint and renders a progress bar
// until the run reaches a terminal stage.
func watchProcessing(cmd *cobra.Command, ctx *commandContext, id int64) error {
	client, err := ctx.adminClient()
	if err != nil {
		return err
	}

	pw := progress.NewWriter()
	pw.SetOutputWriter(cmd.OutOrStdout())
	pw.SetUpdateFrequency(250 * time.Millisecond)
	pw.SetTrackerLength(30)
	pw.Style().Visibility.ETA = false
	go pw.Render()
	defer pw.Stop()

	tracker := &progress.Tracker{Message: "processing", Total: 100}
	pw.AppendTracker(tracker)

	final, err := adminapi.WatchProcessing(
		cmd.Context(),
		adminapi.DefaultPollInterval,
		func(pollCtx context.Context) (*adminapi.ProcessingStatus, error) {
			return client.ProcessingStatus(pollCtx, id)
		},
		func(status adminapi.ProcessingStatus) {
			tracker.SetValue(int64(status.Progress))
			if status.Message != "" {
				tracker.UpdateMessage(status.Message)
			}
		},
	)
	if err != nil {
		tracker.MarkAsErrored()
		return ctx.describeAuthError(err)
	}

	if final.Stage == adminapi.StageError {
		tracker.MarkAsErrored()
		if final.Message != "" {
			return fmt.Errorf("processing failed: %s", final.Message)
		}
		return fmt.Errorf("processing failed")
	}
	tracker.MarkAsDone()
	fmt.Fprintf(cmd.OutOrStdout(), "\nProcessing complete for product %d.\n", id)
	return nil
}

func newProductsStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id>",
		Short: "Show PDF processing status",
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
			status, err := client.ProcessingStatus(cmd.Context(), id)
			if err != nil {
				return ctx.describeAuthError(err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Stage: %s\n", status.Stage)
			if status.TotalPages > 0 {
				fmt.Fprintf(out, "Pages: %d/%d\n", status.CurrentPage, status.TotalPages)
			}
			fmt.Fprintf(out, "Progress: %.0f%%\n", status.Progress)
			if status.Message != "" {
				fmt.Fprintf(out, "Message: %s\n", status.Message)
			}
			return nil
		},
	}
}

func newProductsInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info <id>",
		Short: "Show a product's uploaded PDF details",
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
			info, err := client.PDFInfo(cmd.Context(), id)
			if err != nil {
				return ctx.describeAuthError(err)
			}
			out := cmd.OutOrStdout()
			if !info.Exists {
				fmt.Fprintln(out, "No PDF uploaded.")
				return nil
			}
			fmt.Fprintf(out, "File: %s\n", info.Filename)
			fmt.Fprintf(out, "Size: %d bytes\n", info.Size)
			return nil
		},
	}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
