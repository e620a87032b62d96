package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImagesCommand(ctx *commandContext) *cobra.Command {
	imagesCmd := &cobra.Command{
		Use:   "images",
		Short: "Manage extracted product images",
	}

	imagesCmd.AddCommand(newImagesListCommand(ctx))
	imagesCmd.AddCommand(newImagesDeleteCommand(ctx))
	imagesCmd.AddCommand(newImagesRestoreCommand(ctx))

	return imagesCmd
}

func newImagesListCommand(ctx *commandContext) *cobra.Command {
	var showDeleted bool

	cmd := &cobra.Command{
		Use:   "list <product-id>",
		Short: "List a product's extracted images",
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
			images, err := client.Images(cmd.Context(), id, showDeleted)
			if err != nil {
				return ctx.describeAuthError(err)
			}
			if len(images) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No images.")
				return nil
			}

			rows := make([][]string, 0, len(images))
			for _, image := range images {
				state := ""
				if image.IsDeleted {
					state = "deleted"
				}
				rows = append(rows, []string{image.Filename, image.Path, state})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"File", "Path", "State"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showDeleted, "deleted", false, "Include soft-deleted images")
	return cmd
}

func newImagesDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path>",
		Short: "Soft-delete an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.adminClient()
			if err != nil {
				return err
			}
			if err := client.DeleteImage(cmd.Context(), args[0]); err != nil {
				return ctx.describeAuthError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", args[0])
			return nil
		},
	}
}

func newImagesRestoreCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <path>",
		Short: "Restore a soft-deleted image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.adminClient()
			if err != nil {
				return err
			}
			if err := client.RestoreImage(cmd.Context(), args[0]); err != nil {
				return ctx.describeAuthError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s.\n", args[0])
			return nil
		},
	}
}
