package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fwojciec/frame/goldmark"
	framehttp "github.com/fwojciec/frame/http"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the project and accept commands on POST /collaborate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), v, cmd)
		},
	}
	cmd.Flags().String("addr", framehttp.DefaultAddr, "Listen address")
	return cmd
}

func runServe(ctx context.Context, v *viper.Viper, cmd *cobra.Command) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ctx = logger.WithContext(ctx)

	provider, err := resolveProvider(ctx, cfg.Provider, cfg.APIKey, cfg.BaseURL, cfg.Keys)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, provider, goldmark.NewHTML(), logger)
	if err != nil {
		return err
	}
	defer a.Close()

	handler := framehttp.NewHandler(a.loop, cfg.Root, framehttp.WithLogger(logger))
	srv := framehttp.NewServer(v.GetString("addr"), handler)
	if err := srv.Open(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr()).Msg("collaborative frame running")
		return srv.Serve()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		logger.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return a.store.Persist(context.WithoutCancel(ctx))
}
