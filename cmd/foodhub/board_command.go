package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"foodhub/internal/api"
)

func newBoardCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show now-serving and waiting tokens for every stall",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(nil, false, func(svc *api.Service) error {
				board, err := svc.Board(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, board)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderBoard(board, shouldColorize(out)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func renderBoard(board api.Board, color bool) string {
	headers := []string{"Stall", "Code", "Now Serving", "Waiting", "Queue"}
	rows := make([][]string, 0, len(board.Stalls))
	for _, view := range board.Stalls {
		queue := paint("No waiting tokens", ansiDim, color)
		if len(view.Waiting) > 0 {
			queue = strings.Join(view.Waiting, " ")
		}
		serving := view.NowServing
		if view.Current != "" {
			serving = paint(serving, ansiGreen, color)
		}
		rows = append(rows, []string{
			view.Name,
			view.Code,
			serving,
			strconv.Itoa(view.WaitingCount),
			queue,
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft})
}
