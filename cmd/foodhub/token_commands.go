package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"foodhub/internal/api"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue, serve, and clear stall tokens",
	}

	tokenCmd.AddCommand(newTokenIssueCommand(ctx))
	tokenCmd.AddCommand(newTokenServeCommand(ctx))
	tokenCmd.AddCommand(newTokenClearCommand(ctx))

	return tokenCmd
}

func newTokenIssueCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "issue <stall>",
		Short: "Issue the next token for a stall",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(nil, false, func(svc *api.Service) error {
				resp, err := svc.Issue(cmd.Context(), args[0])
				if errors.Is(err, api.ErrUnknownStall) {
					return unknownStallError(args[0])
				}
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				color := shouldColorize(out)
				fmt.Fprintf(out, "Your token for %s is %s\n", resp.StallName, paint(resp.Token, ansiYellow, color))
				fmt.Fprintln(out, "Check the board to see when it's served.")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newTokenServeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "serve <stall>",
		Short: "Serve the next waiting token for a stall",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(nil, false, func(svc *api.Service) error {
				view, err := svc.Serve(cmd.Context(), args[0])
				if errors.Is(err, api.ErrUnknownStall) {
					printUnknownStall(cmd, args[0])
					return nil
				}
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, api.StallResponse{Stall: view})
				}
				out := cmd.OutOrStdout()
				if view.Current == "" {
					fmt.Fprintf(out, "%s has no waiting tokens\n", view.Name)
					return nil
				}
				fmt.Fprintf(out, "%s now serving %s (%d waiting)\n",
					view.Name, paint(view.NowServing, ansiGreen, shouldColorize(out)), view.WaitingCount)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newTokenClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <stall>",
		Short: "Empty a stall's queue without resetting its numbering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(nil, false, func(svc *api.Service) error {
				view, err := svc.Clear(cmd.Context(), args[0])
				if errors.Is(err, api.ErrUnknownStall) {
					printUnknownStall(cmd, args[0])
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s queue; numbering continues at %s-%03d\n", view.Name, view.Code, view.Next)
				return nil
			})
		},
	}
}

func unknownStallError(key string) error {
	return fmt.Errorf("unknown stall %q (run `foodhub stalls` to list stalls)", key)
}

func printUnknownStall(cmd *cobra.Command, key string) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Unknown stall %q; nothing changed\n", key)
}
