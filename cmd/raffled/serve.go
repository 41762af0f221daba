package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/KirkDiggler/raffled/internal/common/clock"
	"github.com/KirkDiggler/raffled/internal/common/uuid"
	"github.com/KirkDiggler/raffled/internal/config"
	"github.com/KirkDiggler/raffled/internal/handlers/rest"
	engine "github.com/KirkDiggler/raffled/internal/raffle"
	"github.com/KirkDiggler/raffled/internal/random"
	"github.com/KirkDiggler/raffled/internal/repositories/events"
	raffleRepo "github.com/KirkDiggler/raffled/internal/repositories/raffle"
	raffleService "github.com/KirkDiggler/raffled/internal/services/raffle"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the raffle HTTP host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}

			cfg, err := config.Load(files...)
			if err != nil {
				return err
			}

			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "path to a .env file (default ./.env if present)")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	defer logger.Init("raffled", cfg.Verbose, false, io.Discard).Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	eventRepo, err := events.NewRedis(&events.Config{
		RedisClient: redisClient,
		MaxLen:      cfg.EventStreamMaxLen,
	})
	if err != nil {
		return fmt.Errorf("failed to create event repository: %w", err)
	}

	raffles, closeStore, err := openRaffleRepo(cfg, redisClient)
	if err != nil {
		return err
	}
	defer closeStore()

	rules := engine.DefaultRules()
	rules.CountdownMinimum = cfg.Countdown
	rules.RequireCountdown = cfg.RequireCountdown

	svc, err := raffleService.New(&raffleService.Config{
		Rules:         rules,
		RaffleRepo:    raffles,
		EventRepo:     eventRepo,
		Clock:         &clock.DefaultClock{},
		Random:        newRandomSource(cfg),
		UUIDGenerator: uuid.New(),
	})
	if err != nil {
		return fmt.Errorf("failed to create raffle service: %w", err)
	}

	handler, err := rest.New(&rest.Config{RaffleService: svc})
	if err != nil {
		return fmt.Errorf("failed to create HTTP handler: %w", err)
	}

	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Verbose {
		router.Use(gin.Logger())
	}
	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("raffled %s listening on %s (store=%s, random=%s)", version, cfg.HTTPAddr, cfg.Store, cfg.Random)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	return nil
}

// openRaffleRepo builds the configured raffle store and a func releasing it
func openRaffleRepo(cfg *config.Config, redisClient *redis.Client) (raffleRepo.Repository, func(), error) {
	switch cfg.Store {
	case config.StoreSQLite:
		db, err := raffleRepo.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}

		repo, err := raffleRepo.NewSQLite(&raffleRepo.SQLiteConfig{DB: db})
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to create raffle repository: %w", err)
		}

		return repo, func() { db.Close() }, nil
	default:
		repo, err := raffleRepo.NewRedis(&raffleRepo.Config{RedisClient: redisClient})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create raffle repository: %w", err)
		}

		return repo, func() {}, nil
	}
}

func newRandomSource(cfg *config.Config) random.Source {
	if cfg.Random == config.RandomCrypto {
		return random.NewCrypto()
	}

	return random.New(&random.Config{Seed: cfg.SeedBytes()})
}
