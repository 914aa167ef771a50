package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/payment-frontend/internal/server"
	"github.com/vango-dev/payment-frontend/pkg/middleware"
	"github.com/vango-dev/payment-frontend/pkg/page"
)

func serveCmd(flags *globalFlags, build builderFunc) *cobra.Command {
	var (
		addr        string
		dev         bool
		showConnect bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the front end",
		Long: `Serve the front end over HTTP.

Every page load gets its own connection store. The canister id comes
from canister.id, CANISTER_ID_PAYMENT_BACKEND or CANISTER_ID, in that
order.

Examples:
  payment-frontend serve
  payment-frontend serve --addr=:3000 --show-connect
  payment-frontend serve -c payfront.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("dev") {
				cfg.Server.Dev = dev
			}
			if cmd.Flags().Changed("show-connect") {
				cfg.Page.ShowConnect = showConnect
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := cfg.Log.NewLogger(cmd.OutOrStdout())

			tmpl, err := page.LoadTemplate(cfg.Page.Shell)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			metrics := middleware.NewMetrics(middleware.WithRegistry(reg))

			builder, err := build(cfg, logger, metrics)
			if err != nil {
				return err
			}

			srv := server.New(server.Config{
				Addr:        cfg.Server.Addr,
				SessionTTL:  cfg.Server.SessionTTL,
				Dev:         cfg.Server.Dev,
				ShowConnect: cfg.Page.ShowConnect,
			}, tmpl,
				builder,
				server.WithLogger(logger),
				server.WithMetrics(metrics, reg),
			)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("serving",
				"addr", cfg.Server.Addr,
				"canister", cfg.CanisterID(),
				"replica", cfg.Canister.Host,
				"config", cfg.Path(),
			)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().BoolVar(&dev, "dev", false, "Accept WebSocket connections from any origin")
	cmd.Flags().BoolVar(&showConnect, "show-connect", false, "Render the connect button")

	return cmd
}
