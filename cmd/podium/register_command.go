package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"podium/internal/localstate"
	"podium/internal/player"
)

func newRegisterCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register as a viewer",
		Long:  "Walks through the sign-up conversation and stores the resulting identity locally.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			store, err := localstate.Open(cfg.Paths.StateDir)
			if err != nil {
				return fmt.Errorf("open state store: %w", err)
			}
			defer store.Close()

			if existing, err := store.Identity(cmd.Context()); err == nil && existing != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Already registered as %s (user %d).\n", existing.Name, existing.UserID)
				return nil
			}

			renderer := player.NewRenderer(cmd.OutOrStdout())
			registration := player.NewRegistration(client, renderer, cmd.InOrStdin(), ctx.ensureLogger())
			result, err := registration.Run(cmd.Context())
			if err != nil {
				return err
			}

			if err := store.SaveIdentity(cmd.Context(), localstate.Identity{
				UserID: result.UserID,
				Name:   result.Name,
				Email:  result.Email,
				Phone:  result.Phone,
			}); err != nil {
				return err
			}
			if err := store.SetPreference(cmd.Context(), localstate.PrefSelectedProduct, strconv.FormatInt(result.Product.ID, 10)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered as %s; selected product %q.\n", result.Name, result.Product.Name)
			return nil
		},
	}
}
