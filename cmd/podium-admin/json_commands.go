package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newJSONCommand(ctx *commandContext) *cobra.Command {
	jsonCmd := &cobra.Command{
		Use:   "json",
		Short: "Read or replace generated product content",
	}

	jsonCmd.AddCommand(newJSONGetCommand(ctx))
	jsonCmd.AddCommand(newJSONPutCommand(ctx))

	return jsonCmd
}

func newJSONGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id> <presentation|analysis>",
		Short: "Print a product's generated JSON",
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
			content, err := client.JSONContent(cmd.Context(), id, args[1])
			if err != nil {
				return ctx.describeAuthError(err)
			}

			var pretty bytes.Buffer
			if err := json.Indent(&pretty, content, "", "  "); err != nil {
				// Not valid JSON; emit as stored.
				fmt.Fprintln(cmd.OutOrStdout(), string(content))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
			return nil
		},
	}
}

func newJSONPutCommand(ctx *commandContext) *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "put <id> <presentation|analysis>",
		Short: "Replace a product's generated JSON",
		Long:  "Reads the replacement document from --file, or from stdin when no file is given.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var content []byte
			if filePath != "" {
				content, err = os.ReadFile(filePath)
				if err != nil {
					return fmt.Errorf("read %s: %w", filePath, err)
				}
			} else {
				content, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			}
			if !json.Valid(content) {
				return fmt.Errorf("replacement document is not valid JSON")
			}

			client, err := ctx.adminClient()
			if err != nil {
				return err
			}
			if err := client.UpdateJSONContent(cmd.Context(), id, args[1], content); err != nil {
				return ctx.describeAuthError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s content for product %d.\n", args[1], id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Read the replacement document from this file")
	return cmd
}
