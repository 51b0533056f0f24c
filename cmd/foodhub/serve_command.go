package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"foodhub/internal/api"
	"foodhub/internal/metrics"
	"foodhub/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the staff HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			address := cfg.Server.Bind
			if strings.TrimSpace(bind) != "" {
				address = bind
			}

			reg := prom.NewRegistry()
			recorder := metrics.NewPrometheusRecorder(reg)

			runCtx, stop := signal.NotifyContext(commandBaseContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return ctx.withService(recorder, true, func(svc *api.Service) error {
				srv, err := server.New(address, svc, recorder, reg, ctx.logger)
				if err != nil {
					return err
				}
				if err := srv.Start(runCtx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "foodhub API listening on http://%s (storage: %s)\n", srv.Addr(), cfg.Storage.Backend)
				<-runCtx.Done()
				srv.Stop()
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override server.bind")
	return cmd
}

func commandBaseContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
