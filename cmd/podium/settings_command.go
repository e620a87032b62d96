package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"podium/internal/localstate"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change playback settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			settings, err := client.Settings(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch settings: %w", err)
			}

			theme := "auto"
			if cfg, err := ctx.ensureConfig(); err == nil {
				if store, err := localstate.Open(cfg.Paths.StateDir); err == nil {
					if saved, ok, err := store.Preference(cmd.Context(), localstate.PrefTheme); err == nil && ok {
						theme = saved
					}
					store.Close()
				}
			}

			rows := [][]string{
				{"voice", settings.TTSVoice},
				{"tts", strconv.FormatBool(settings.TTSEnabled)},
				{"speed", strconv.FormatFloat(settings.PresentationSpeed, 'f', -1, 64)},
				{"section-delay", strconv.FormatFloat(settings.SectionDelay, 'f', -1, 64)},
				{"theme", theme},
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
		Use:   "set <voice|tts|speed|section-delay|theme> <value>",
		Short: "Update one playback setting",
		Long: "voice, tts, speed, and section-delay are published to the server; " +
			"theme (auto or plain) is stored locally.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			if key == "theme" {
				if value != "auto" && value != "plain" {
					return fmt.Errorf("theme must be auto or plain, got %q", value)
				}
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				store, err := localstate.Open(cfg.Paths.StateDir)
				if err != nil {
					return fmt.Errorf("open state store: %w", err)
				}
				defer store.Close()
				if err := store.SetPreference(cmd.Context(), localstate.PrefTheme, value); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Updated theme.")
				return nil
			}

			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			settings, err := client.Settings(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch settings: %w", err)
			}

			switch key {
			case "voice":
				settings.TTSVoice = value
			case "tts":
				enabled, err := strconv.ParseBool(value)
				if err != nil {
					return fmt.Errorf("parse %q as bool: %w", value, err)
				}
				settings.TTSEnabled = enabled
			case "speed":
				speed, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return fmt.Errorf("parse %q as number: %w", value, err)
				}
				settings.PresentationSpeed = speed
			case "section-delay":
				delay, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return fmt.Errorf("parse %q as number: %w", value, err)
				}
				settings.SectionDelay = delay
			default:
				return fmt.Errorf("unknown setting %q", key)
			}

			if err := client.UpdateSettings(cmd.Context(), *settings); err != nil {
				return fmt.Errorf("update settings: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s.\n", key)
			return nil
		},
	}
}
