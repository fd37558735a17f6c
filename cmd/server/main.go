package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/xtding233/arcade-backend/internal/config"
	"github.com/xtding233/arcade-backend/internal/server"
	"github.com/xtding233/arcade-backend/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	configDir := getEnv("CONFIG_DIR", "./config")
	profile := os.Getenv("CONFIG_PROFILE")
	loader := config.NewLoader(configDir)
	settings, err := loader.Load(profile)
	if err != nil {
		log.Fatal().Err(err).Str("dir", configDir).Str("profile", profile).Msg("load config")
	}

	st, err := store.Open(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer st.Close()

	arcade := server.NewArcade(settings, st)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	httpAddr := getEnv("HTTP_ADDR", ":8080")
	httpSrv := &http.Server{Addr: httpAddr, Handler: server.NewRouter(arcade), ReadHeaderTimeout: 5 * time.Second}
	g.Go(func() error {
		log.Info().Str("addr", httpAddr).Str("version", settings.Version).Msg("http listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	grpcAddr := getEnv("GRPC_ADDR", ":9090")
	grpcSrv := server.NewGRPC(arcade)
	g.Go(func() error {
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return err
		}
		log.Info().Str("addr", grpcAddr).Msg("grpc listening")
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})

	if every, err := time.ParseDuration(getEnv("RELOAD_INTERVAL", "5s")); err == nil && every > 0 {
		w := config.NewFileWatcher(loader.Paths().Watched(profile), every, func(path string) {
			loader.Invalidate()
			next, err := loader.Load(profile)
			if err != nil {
				log.Error().Err(err).Str("path", path).Msg("config reload rejected, keeping previous settings")
				return
			}
			arcade.Reload(next)
		})
		g.Go(func() error { return w.Run(ctx) })
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		grpcSrv.GracefulStop()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
