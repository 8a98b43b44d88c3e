package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/veriscope/modelaudit/internal/adapters/store"
	"github.com/veriscope/modelaudit/internal/auth"
	redisclient "github.com/veriscope/modelaudit/internal/infrastructure/clients/redis"
	"github.com/veriscope/modelaudit/internal/infrastructure/observability"
	"github.com/veriscope/modelaudit/internal/seed"
	"github.com/veriscope/modelaudit/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger("modelaudit-seed", cfg.Server.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	redisClient, err := redisclient.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer redisClient.Close()

	criterionStore := store.NewCriterionStore(redisClient)
	adminUserStore := store.NewAdminUserStore(redisClient)

	if err := seed.Run(ctx, criterionStore); err != nil {
		log.Fatal().Err(err).Msg("failed to seed criteria catalog")
	}

	authService := auth.NewService(adminUserStore, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err := authService.EnsureAdminUser(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure admin user")
	}

	log.Info().Msg("seeding complete")
}
