package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"edutechai/internal/util"
	"edutechai/pkg/ai"
	"edutechai/pkg/auth"
	"edutechai/services/edutech/internal/app"
	"edutechai/services/edutech/internal/config"
	"edutechai/services/edutech/internal/server"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionTTL, _ := cfg.SessionDuration()
	scheme, _ := auth.ParseScheme(cfg.PasswordScheme)
	trusted, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		log.Fatalf("failed to parse trusted proxies: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer redisClient.Close()
	}

	appCfg := app.Config{
		DatabaseURL:    cfg.DatabaseURL,
		DatabaseName:   cfg.DatabaseName,
		StorageBackend: cfg.StorageBackend,
		StorageDir:     cfg.StorageDir,
		MinioEndpoint:  cfg.MinioEndpoint,
		MinioAccessKey: cfg.MinioAccessKey,
		MinioSecretKey: cfg.MinioSecretKey,
		MinioBucket:    cfg.MinioBucket,
		MinioUseSSL:    cfg.MinioUseSSL,
		Generation: ai.Config{
			Provider: cfg.GenerationProvider,
			Model:    cfg.GenerationModel,
			BaseURL:  cfg.GenerationBaseURL,
			APIKey:   cfg.GenerationKey(),
		},
		SessionMode:    cfg.SessionMode,
		SessionTTL:     sessionTTL,
		JWTSecret:      cfg.JWTSecret,
		PasswordScheme: scheme,
	}
	srvCfg := server.Config{
		CORSOrigins:                cfg.CORSOrigins,
		TrustedProxies:             trusted,
		MaxUploadBytes:             cfg.MaxUploadBytes,
		RegisterRateLimitPerMinute: cfg.RegisterRateLimitPerMinute,
		LoginRateLimitPerMinute:    cfg.LoginRateLimitPerMinute,
	}
	if redisClient != nil {
		appCfg.Redis = redisClient
		srvCfg.Redis = redisClient
	}

	appCore, err := app.New(ctx, appCfg)
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}
	srvCfg.App = appCore

	httpServer, err := server.New(srvCfg)
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 200 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("edutech server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := appCore.Close(closeCtx); err != nil {
		logger.Warn("close store", "err", err)
	}
	slog.Info("edutech server stopped")
}
