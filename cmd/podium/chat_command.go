package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"podium/internal/localstate"
	"podium/internal/player"
)

func newChatCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <question>",
		Short: "Ask a question about the selected product",
		Args:  cobra.MinimumNArgs(1),
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

			identity, err := store.Identity(cmd.Context())
			if err != nil {
				return err
			}
			if identity == nil {
				return errors.New("not registered; run `podium register` first")
			}

			question := strings.Join(args, " ")
			resp, err := client.Chat(cmd.Context(), question, identity.UserID)
			if err != nil {
				return fmt.Errorf("chat: %w", err)
			}

			renderer := player.NewRenderer(cmd.OutOrStdout())
			renderer.ChatQuestion(question)
			renderer.ChatAnswer(resp.Response)
			renderer.References(resp.References)
			return nil
		},
	}
}
