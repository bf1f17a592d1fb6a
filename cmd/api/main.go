package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-jobly/internal/auth"
	"github.com/ovaphlow/pitchfork/service-jobly/internal/company"
	"github.com/ovaphlow/pitchfork/service-jobly/internal/config"
	"github.com/ovaphlow/pitchfork/service-jobly/internal/job"
	"github.com/ovaphlow/pitchfork/service-jobly/internal/router"
	"github.com/ovaphlow/pitchfork/service-jobly/internal/user"
	"github.com/ovaphlow/pitchfork/service-jobly/pkg/database"
	"github.com/ovaphlow/pitchfork/service-jobly/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	lg, err := utilities.Init(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Infow("starting jobly", "addr", cfg.Server.Addr, "driver", cfg.Database.Driver, "empty_result", cfg.EmptyPolicy)

	if cfg.Database.Migrate {
		if err := database.Migrate(cfg.Database); err != nil {
			sugar.Fatalf("db migrate: %v", err)
		}
		sugar.Info("migrations applied")
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.Seed {
		if err := database.Seed(ctx, db); err != nil {
			sugar.Fatalf("db seed: %v", err)
		}
		sugar.Info("seed data loaded")
	}

	ids, err := utilities.NewIDGenerator(cfg.SnowflakeNode)
	if err != nil {
		sugar.Fatalf("id generator: %v", err)
	}

	var throttle *auth.Throttle
	if cfg.Throttle.RedisURL != "" {
		rdb, err := auth.NewRedisClient(ctx, cfg.Throttle.RedisURL)
		if err != nil {
			sugar.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		throttle = auth.NewThrottle(rdb, cfg.Throttle.MaxFailed, cfg.Throttle.Window)
	}

	tokens := auth.NewTokenService(cfg.Auth.SecretKey, cfg.Auth.TokenTTL)
	users := user.NewUserService(db, nil, user.BcryptHasher{Cost: cfg.Auth.BcryptCost})

	handler := router.RegisterRoutes(router.Deps{
		Logger:         sugar,
		Companies:      company.NewHandler(company.NewService(db, nil, cfg.EmptyPolicy), sugar),
		Jobs:           job.NewHandler(job.NewService(db, nil, ids, cfg.EmptyPolicy), sugar),
		Users:          user.NewHandler(users, tokens, sugar),
		Auth:           auth.NewHandler(users, tokens, throttle, sugar),
		Tokens:         tokens,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Ping:           db.PingContext,
	})
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Info("service is running; press Ctrl+C to stop")

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
