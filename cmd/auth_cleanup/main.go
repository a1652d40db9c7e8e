// Command auth_cleanup revokes auth tokens, forcing the affected users to
// log in again. Use --username for one account or --all for everyone.
package main

import (
	"context"
	"flag"

	"nexus/internal/config"
	"nexus/internal/database"
	"nexus/internal/pkg/logger"
	"nexus/internal/repository"
)

func main() {
	username := flag.String("username", "", "revoke the token of this user")
	all := flag.Bool("all", false, "revoke every token")
	flag.Parse()

	if (*username == "") == !*all {
		logger.Fatal().Msg("exactly one of --username or --all is required")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("db connect failed")
	}

	ctx := context.Background()
	tokens := repository.NewTokenRepository(db)

	if *all {
		n, err := tokens.DeleteAll(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("revoke tokens failed")
		}
		logger.Info().Int64("auth_tokens", n).Msg("all tokens revoked")
		return
	}

	u, err := repository.NewUserRepository(db).GetByUsername(ctx, *username)
	if err != nil {
		logger.Fatal().Err(err).Str("username", *username).Msg("user lookup failed")
	}
	if err := tokens.DeleteByUser(ctx, u.ID); err != nil {
		logger.Fatal().Err(err).Msg("revoke token failed")
	}
	logger.Info().Str("username", u.Username).Msg("token revoked")
}
