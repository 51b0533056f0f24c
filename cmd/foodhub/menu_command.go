package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"foodhub/internal/api"
	"foodhub/internal/menu"
	"foodhub/internal/stall"
)

func newMenuCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "menu <stall>",
		Short:       "Show a stall's menu card",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := menu.Default()
			if err != nil {
				return err
			}
			found, ok := catalog.For(stall.Parse(args[0]))
			if !ok {
				return unknownStallError(args[0])
			}
			card := api.FromMenuCard(found)
			if jsonOutput {
				return writeJSON(cmd, card)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", card.Name, card.Tagline)
			rows := make([][]string, 0, len(card.Items))
			for _, item := range card.Items {
				rows = append(rows, []string{item.Name, "₹" + strconv.Itoa(item.Price)})
			}
			fmt.Fprintln(out, renderTable([]string{"Item", "Price"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newStallsCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "stalls",
		Short:       "List known stalls",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			stalls := api.Stalls()
			if jsonOutput {
				return writeJSON(cmd, stalls)
			}
			rows := make([][]string, 0, len(stalls))
			for _, s := range stalls {
				rows = append(rows, []string{s.Key, s.Code, s.Name})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Key", "Code", "Name"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
