package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	grpcapi "github.com/LeonardoBeccarini/farmassist/internal/services/gateway/grpc"
	"github.com/LeonardoBeccarini/farmassist/internal/services/navigation"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway, the gRPC control service and the MQTT bridge",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	// la home è la pagina iniziale
	if err := a.nav.Navigate(navigation.PathHome); err != nil {
		return err
	}

	var lis net.Listener
	if cfg.GRPC.Enabled {
		if lis, err = net.Listen("tcp", cfg.GRPC.Addr); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           a.gateway.Handler(),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}
	g.Go(func() error {
		logger.WithField("addr", cfg.HTTP.Addr).Info("http gateway listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if lis != nil {
		gs := grpcapi.NewServer(grpcapi.ServerConfig{
			RateLimit:      cfg.HTTP.RateLimit,
			RateLimitBurst: cfg.HTTP.RateLimitBurst,
		}, a.gateway, a.metrics, logger)
		g.Go(func() error {
			logger.WithField("addr", cfg.GRPC.Addr).Info("grpc control service listening")
			return gs.Serve(lis)
		})
		g.Go(func() error {
			<-gctx.Done()
			gs.GracefulStop()
			return nil
		})
	}

	if a.consumer != nil {
		g.Go(func() error { return a.consumer.ConsumeMessage(gctx) })
	}
	if a.aggregator != nil {
		g.Go(func() error { return a.aggregator.Start(gctx) })
	}

	err = g.Wait()
	logger.Info("shutting down")
	return err
}
