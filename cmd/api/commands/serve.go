package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/climate-finance-tracker/cft-backend/internal/api/http/middleware"
	"github.com/climate-finance-tracker/cft-backend/internal/auth"
	"github.com/climate-finance-tracker/cft-backend/internal/bootstrap"
	"github.com/climate-finance-tracker/cft-backend/internal/uploads"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	bootstrap.SetGinMode(cfg)

	db, err := bootstrap.OpenDB(ctx, &cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	var verifier auth.TokenVerifier
	if cfg.Firebase.CredentialsPath != "" {
		verifier, err = auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			return fmt.Errorf("init firebase: %w", err)
		}
	} else {
		logger.Warn("FIREBASE_CREDENTIALS_PATH not set, admin routes are unauthenticated")
	}

	store, err := uploads.NewStore(cfg.Server.UploadDir, int64(cfg.Server.MaxUploadMB)<<20)
	if err != nil {
		return err
	}

	var limiter middleware.Limiter
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		limiter = middleware.NewRedisRateLimiter(client, cfg.Submissions.RatePerMinute, cfg.Submissions.Burst)
		logger.Info("submission rate limit shared through redis")
	}

	if cfg.Server.UploadSweepSchedule != "" {
		sweeper := uploads.NewSweeper(store, uploads.NewSQLReferences(db), cfg.Server.UploadSweepGrace, logger)
		scheduler, err := sweeper.Schedule(cfg.Server.UploadSweepSchedule)
		if err != nil {
			return err
		}
		defer scheduler.Stop()
		logger.Info("upload sweep scheduled", "schedule", cfg.Server.UploadSweepSchedule)
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		DB:       db,
		Logger:   logger,
		Config:   cfg,
		Verifier: verifier,
		Uploads:  store,
		Limiter:  limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "env", cfg.App.Environment, "upload_dir", store.Dir())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
