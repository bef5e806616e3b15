package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/xtding233/dmgcalc/internal/build"
	"github.com/xtding233/dmgcalc/internal/config"
	"github.com/xtding233/dmgcalc/internal/rpc"
	"github.com/xtding233/dmgcalc/internal/service"
)

const defaultConfigPath = "config/server.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to server config (default "+defaultConfigPath+", or $DMGCALC_CONFIG)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadService(config.Path(*configPath, defaultConfigPath))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	})))
	slog.Info("dmgcalc server starting",
		"http_addr", cfg.HTTPAddr,
		"grpc_addr", cfg.GRPCAddr,
		"profile_dir", cfg.ProfileDir,
		"log_level", cfg.LogLevel)

	loader := build.NewLoader(cfg.ProfileDir)
	if profiles, err := loader.List(); err != nil {
		slog.Warn("profile directory not readable", "dir", cfg.ProfileDir, "err", err)
	} else {
		slog.Info("profiles found", "count", len(profiles))
	}
	svc := service.New(loader, cfg)

	var lis net.Listener
	if cfg.GRPCAddr != "" {
		if lis, err = net.Listen("tcp", cfg.GRPCAddr); err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newMux(svc),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if lis != nil {
		grpcSrv := grpc.NewServer()
		rpc.Register(grpcSrv, rpc.NewServer(svc))
		hs := health.NewServer()
		healthpb.RegisterHealthServer(grpcSrv, hs)
		hs.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)

		g.Go(func() error {
			slog.Info("grpc listening", "addr", cfg.GRPCAddr)
			if err := grpcSrv.Serve(lis); err != nil {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			hs.Shutdown()
			grpcSrv.GracefulStop()
			return nil
		})
	}

	if cfg.WatchInterval > 0 {
		w := build.WatchLoader(loader, cfg.WatchInterval, func(path string) {
			slog.Info("profile changed, cache invalidated", "path", path)
		})
		g.Go(func() error { return w.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("dmgcalc server stopped")
	return nil
}
