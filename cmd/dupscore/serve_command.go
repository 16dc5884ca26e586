package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"dupscore/internal/api"
	"dupscore/internal/classifier"
	"dupscore/internal/logging"
	"dupscore/internal/metrics"
	"dupscore/internal/records"
	"dupscore/internal/scorer"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the classification HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx, strings.TrimSpace(bind))
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Override api.bind (host:port)")
	return cmd
}

func runServe(cmdCtx context.Context, ctx *commandContext, bind string) error {
	if cmdCtx == nil {
		cmdCtx = context.Background()
	}
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if bind != "" {
		cfg.API.Bind = bind
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logging.NewComponentLogger(logger, "serve")

	model, err := classifier.Load(cfg)
	if err != nil {
		logger.Error("model load failed", logging.Error(err))
		return err
	}

	store, err := records.Open(signalCtx, cfg)
	if err != nil {
		logger.Error("open record store", logging.Error(err))
		return err
	}
	defer store.Close()

	svc, err := scorer.NewService(store, model, logger)
	if err != nil {
		return err
	}

	reg := metrics.New()
	reg.SetBuildInfo(version, model.Name(), store.Name())

	server, err := api.New(cfg, svc, reg, logger)
	if err != nil {
		return err
	}

	logger.Info("dupscore starting",
		logging.String("version", version),
		logging.String("model", model.Name()),
		logging.String("store", store.Name()),
		logging.String("bind", cfg.API.Bind),
	)

	if err := server.Run(signalCtx); err != nil {
		logger.Error("server stopped with error", logging.Error(err))
		return err
	}
	logger.Info("dupscore stopped")
	return nil
}
