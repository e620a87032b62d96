package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"podium/internal/adminapi"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change server settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.adminClient()
			if err != nil {
				return err
			}
			settings, err := client.Settings(cmd.Context())
			if err != nil {
				return ctx.describeAuthError(err)
			}

			keys := make([]string, 0, len(settings))
			for key := range settings {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				rows = append(rows, []string{key, settings[key]})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Setting", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}

	settingsCmd.AddCommand(newSettingsSetCommand(ctx))
	return settingsCmd
}

func newSettingsSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <tts_voice|tts_enabled|presentation_speed|section_delay> <value>",
		Short: "Update one server setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			var update adminapi.SettingsUpdate
			switch key {
			case "tts_voice":
				update.TTSVoice = &value
			case "tts_enabled":
				update.TTSEnabled = &value
			case "presentation_speed":
				update.PresentationSpeed = &value
			case "section_delay":
				update.SectionDelay = &value
			default:
				return fmt.Errorf("unknown setting %q", key)
			}

			client, err := ctx.adminClient()
			if err != nil {
				return err
			}
			if err := client.UpdateSettings(cmd.Context(), update); err != nil {
				return ctx.describeAuthError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s.\n", key)
			return nil
		},
	}
}
